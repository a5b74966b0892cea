package main

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"github.com/pivolan/stay_dashboard/pipeline"
	"github.com/pivolan/stay_dashboard/plot"
)

func (b *telegramBot) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	// Получаем команду без слеша
	fullCommand := message.Command()
	args := message.CommandArguments()

	graphPrefix := "graph_"

	switch {
	case strings.HasPrefix(fullCommand, graphPrefix):
		name := strings.TrimPrefix(fullCommand, graphPrefix)
		if name != "stay" && name != "admission" {
			b.reply(chatID, "Unknown chart. Use /graph_stay or /graph_admission")
			return
		}
		b.handleGraph(chatID, name, args)
	case fullCommand == "summary":
		b.handleSummary(chatID, args)
	case fullCommand == "export":
		b.handleExport(chatID, args)
	case fullCommand == "groups":
		b.handleGroups(chatID)
	case fullCommand == "start" || fullCommand == "help":
		b.reply(chatID, welcomeText)
	default:
		b.reply(chatID, "Unknown command. Send /start for the list of commands.")
	}
}

// build runs a dashboard pass and reports failures and empty views to the
// chat. It returns nil when there is nothing more to send.
func (b *telegramBot) build(chatID int64, args string) *DashboardState {
	st, err := b.dash.Build(parseBotArgs(args))
	if err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("dashboard pass failed")
		_, msg := describeError(err)
		b.reply(chatID, msg)
		return nil
	}
	if st.Notice != "" {
		b.reply(chatID, st.Notice)
		return nil
	}
	return st
}

func (b *telegramBot) handleSummary(chatID int64, args string) {
	st := b.build(chatID, args)
	if st == nil {
		return
	}
	text := fmt.Sprintf("Length of stay %s to %s, age groups: %s\n\n%s\n\n%s",
		pipeline.FormatStay(st.Criteria.MinStay),
		pipeline.FormatStay(st.Criteria.MaxStay),
		strings.Join(st.Criteria.AgeGroups, ", "),
		GenerateMetricsTable(st.Metrics),
		GenerateGroupsTable(st.Groups))
	msg := tgbotapi.NewMessage(chatID, "<pre>\n"+html.EscapeString(text)+"\n</pre>")
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send summary")
		return
	}
	b.sendStayGraph(chatID, st)
	b.sendAdmissionGraph(chatID, st)
}

func (b *telegramBot) handleGraph(chatID int64, name, args string) {
	st := b.build(chatID, args)
	if st == nil {
		return
	}
	if name == "stay" {
		b.sendStayGraph(chatID, st)
		return
	}
	b.sendAdmissionGraph(chatID, st)
}

func (b *telegramBot) sendStayGraph(chatID int64, st *DashboardState) {
	graph, err := plot.DrawStayHistogram(st.Dist, plot.ParseColor(b.cfg.ThemeColor))
	if err != nil {
		b.log.Error().Err(err).Msg("draw stay histogram")
		b.reply(chatID, "Error generating chart")
		return
	}
	b.sendGraphVisualization(graph, "histogram", chatID, st)
}

func (b *telegramBot) sendAdmissionGraph(chatID int64, st *DashboardState) {
	graph, err := plot.DrawAdmissionBar(st.Groups, plot.ParseColor(b.cfg.ThemeColor))
	if err != nil {
		b.log.Error().Err(err).Msg("draw admission bar")
		b.reply(chatID, "Error generating chart")
		return
	}
	b.sendGraphVisualization(graph, "admission", chatID, st)
}

func (b *telegramBot) handleExport(chatID int64, args string) {
	st := b.build(chatID, args)
	if st == nil {
		return
	}
	var buf bytes.Buffer
	if err := pipeline.WriteCSV(&buf, st.View, st.Columns); err != nil {
		b.log.Error().Err(err).Msg("export csv")
		b.reply(chatID, "Error exporting data")
		return
	}
	data := tgbotapi.FileBytes{Name: b.cfg.ExportName + time.Now().Format("20060102-150405") + ".csv", Bytes: buf.Bytes()}
	doc := tgbotapi.NewDocumentUpload(chatID, data)
	doc.Caption = fmt.Sprintf("%d records", len(st.View))
	if _, err := b.api.Send(doc); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send export")
	}
}

func (b *telegramBot) handleGroups(chatID int64) {
	st, err := b.dash.Build(DashboardRequest{AllAgeGroups: true})
	if err != nil {
		_, msg := describeError(err)
		b.reply(chatID, msg)
		return
	}
	b.reply(chatID, fmt.Sprintf("Age groups:\n%s\n\nLength of stay: %s to %s (%d records)",
		strings.Join(st.AllAgeGroups, "\n"),
		pipeline.FormatStay(st.MinBound),
		pipeline.FormatStay(st.MaxBound),
		st.Dataset.Len()))
}
