package main

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/rs/zerolog"

	"github.com/pivolan/stay_dashboard/config"
	"github.com/pivolan/stay_dashboard/pipeline"
)

// botAPI is the part of *tgbotapi.BotAPI the bot talks to.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type telegramBot struct {
	api    botAPI
	dash   *Dashboard
	cache  *pipeline.Cache
	cfg    *config.Config
	log    zerolog.Logger
	client *http.Client
}

func newTelegramBot(api botAPI, dash *Dashboard, cache *pipeline.Cache, cfg *config.Config, log zerolog.Logger) *telegramBot {
	return &telegramBot{
		api:    api,
		dash:   dash,
		cache:  cache,
		cfg:    cfg,
		log:    log.With().Str("component", "telegram").Logger(),
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

const welcomeText = `Hi! I answer questions about the patient discharge data.

Commands:
/summary [min-max] [age group, age group] - metrics and charts for a selection
/export [min-max] [age group, ...] - filtered CSV with the default columns
/graph_stay [min-max] [age groups] - stay distribution chart
/graph_admission [min-max] [age groups] - mean stay per admission type
/groups - age groups and the stay range of the current file

Examples:
/summary 1-10 0 to 17, 70 or Older
/export 5-30

Send a CSV file (or .gz, .lz4, .zip) to replace the data.`

// Run reads updates until ctx is done.
func (b *telegramBot) Run(ctx context.Context, api *tgbotapi.BotAPI) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("get updates: %w", err)
	}
	b.log.Info().Str("account", api.Self.UserName).Msg("bot authorized")

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(update.Message)
		}
	}
}

func (b *telegramBot) handleMessage(message *tgbotapi.Message) {
	switch {
	case message.Document != nil:
		b.handleDocument(message)
	case message.IsCommand():
		b.handleCommand(message)
	case message.Text != "":
		b.reply(message.Chat.ID, fmt.Sprintf("Open the dashboard: %s\nor send /start for the list of commands.", b.cfg.PublicURL))
	}
}

// handleDocument downloads an attached file and makes it the active source.
func (b *telegramBot) handleDocument(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	fileURL, err := b.api.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		b.log.Error().Err(err).Msg("get file url")
		b.reply(chatID, fmt.Sprintf("Error on upload file, if the file is too big upload it here: %s", b.cfg.PublicURL))
		return
	}

	resp, err := b.client.Get(fileURL)
	if err != nil {
		b.log.Error().Err(err).Msg("download file")
		b.reply(chatID, "Error downloading file")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b.log.Error().Int("status", resp.StatusCode).Msg("download file")
		b.reply(chatID, "Error downloading file")
		return
	}

	opts := pipeline.Options{Separator: b.cfg.Separator}
	ds, err := storeUpload(b.cfg.UploadDir, message.Document.FileName, resp.Body, opts, b.cache, b.log)
	if err != nil {
		_, msg := describeError(err)
		b.reply(chatID, msg)
		return
	}
	b.reply(chatID, fmt.Sprintf("Loaded %d records from %s (%d rows without a numeric length of stay were skipped).",
		ds.Len(), message.Document.FileName, ds.Dropped))
}

func (b *telegramBot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send message")
	}
}

var stayRangeRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)-(\d+(?:\.\d+)?)$`)

// parseBotArgs reads "[min-max] [group, group]". Without groups every age
// group is selected.
func parseBotArgs(args string) DashboardRequest {
	req := DashboardRequest{AllAgeGroups: true}
	args = strings.TrimSpace(args)
	if args == "" {
		return req
	}

	first, rest, _ := strings.Cut(args, " ")
	if m := stayRangeRe.FindStringSubmatch(first); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		req.MinStay, req.MaxStay = &lo, &hi
		args = strings.TrimSpace(rest)
	}
	for _, g := range strings.Split(args, ",") {
		if g = strings.TrimSpace(g); g != "" {
			req.AgeGroups = append(req.AgeGroups, g)
		}
	}
	req.AllAgeGroups = len(req.AgeGroups) == 0
	return req
}
