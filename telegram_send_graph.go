package main

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"github.com/pivolan/stay_dashboard/pipeline"
)

// Telegram сжимает фото; большие графики отправляем документом.
const maxSizePhoto = 150000

// sendGraphVisualization отправляет график в чат с подписью.
func (b *telegramBot) sendGraphVisualization(graph []byte, visualType string, chatID int64, st *DashboardState) {
	pngFile := tgbotapi.FileBytes{
		Name:  fmt.Sprintf("%s_%s.png", visualType, time.Now().Format("20060102-150405")),
		Bytes: graph,
	}
	caption := generateVizualDescription(visualType, st)

	var msg tgbotapi.Chattable
	if len(graph) < maxSizePhoto {
		photo := tgbotapi.NewPhotoUpload(chatID, pngFile)
		photo.Caption = caption
		msg = photo
	} else {
		doc := tgbotapi.NewDocumentUpload(chatID, pngFile)
		doc.Caption = caption
		msg = doc
	}

	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Str("visual", visualType).Msg("send visualization")
		b.reply(chatID, fmt.Sprintf("Could not send the %s chart. Error: %v", visualType, err))
	}
}

func generateVizualDescription(visualType string, st *DashboardState) string {
	switch visualType {
	case "histogram":
		box := st.Dist.Box
		return fmt.Sprintf("Stay distribution of %d records\nmin %s, q1 %s, median %s, q3 %s, max %s",
			len(st.View),
			pipeline.FormatStay(box.Min), pipeline.FormatStay(box.Q1), pipeline.FormatStay(box.Median),
			pipeline.FormatStay(box.Q3), pipeline.FormatStay(box.Max))
	case "admission":
		return fmt.Sprintf("Mean length of stay by type of admission, %d records", len(st.View))
	default:
		return fmt.Sprintf("Chart: %s", visualType)
	}
}
