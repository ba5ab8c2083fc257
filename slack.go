package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

const (
	actionLabelNegative    = "mood_label_negative"
	actionLabelNotNegative = "mood_label_not_negative"

	labelNegativePrefix    = "label_negative:"
	labelNotNegativePrefix = "label_not_negative:"
)

func StartSlackBot(cfg Config, db *sql.DB, api *slack.Client, clf Classifier) error {
	client := socketmode.New(api)

	go func() {
		for evt := range client.Events {
			switch evt.Type {
			case socketmode.EventTypeEventsAPI:
				client.Ack(*evt.Request)
				eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				go handleEventsAPI(api, db, cfg, clf, eventsAPIEvent)
			case socketmode.EventTypeInteractive:
				client.Ack(*evt.Request)
				callback, ok := evt.Data.(slack.InteractionCallback)
				if !ok {
					continue
				}
				go handleInteraction(api, db, cfg, callback)
			}
		}
	}()

	log.Println("Slack bot connected via Socket Mode")
	return client.Run()
}

func handleEventsAPI(api *slack.Client, db *sql.DB, cfg Config, clf Classifier, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		handleMessageEvent(api, db, cfg, clf, ev)
	}
}

// handleMessageEvent runs one watched-channel message through the pipeline:
// classify, persist, and alert when the verdict is negative enough. Bot
// messages and edits/deletes (anything with a subtype) are ignored.
func handleMessageEvent(api *slack.Client, db *sql.DB, cfg Config, clf Classifier, ev *slackevents.MessageEvent) {
	if ev.Channel != cfg.WatchChannelID {
		return
	}
	if ev.BotID != "" || ev.SubType != "" {
		return
	}
	if strings.TrimSpace(ev.Text) == "" {
		return
	}

	sentiment, score, text := ClassifyMessage(context.Background(), clf, cfg.SentimentLabels, ev.Text)

	now := time.Now().In(cfg.Location)
	id, err := InsertSentimentRecord(db, text, sentiment, score, now)
	if err != nil {
		log.Printf("sentiment insert error channel=%s user=%s: %v", ev.Channel, ev.User, err)
		return
	}
	log.Printf("message classified id=%s sentiment=%s score=%.2f", id, sentiment, score)

	if shouldAlert(sentiment, score, cfg.AlertThreshold) {
		sendNegativeAlert(api, cfg, id, text, formatSource(ev.User), score)
	}
}

// shouldAlert is strict: a score exactly at the threshold does not alert.
func shouldAlert(sentiment Sentiment, score, threshold float64) bool {
	return sentiment == SentimentNegative && score > threshold
}

func sendNegativeAlert(api *slack.Client, cfg Config, recordID, text, source string, score float64) {
	alertText := fmt.Sprintf("⚠️ Negative message detected (%.2f%% negative):\n\n%s\n\nFrom: %s", score*100, text, source)

	negativeBtn := slack.NewButtonBlockElement(
		actionLabelNegative,
		labelNegativePrefix+recordID,
		slack.NewTextBlockObject(slack.PlainTextType, "Negative", false, false),
	)
	notNegativeBtn := slack.NewButtonBlockElement(
		actionLabelNotNegative,
		labelNotNegativePrefix+recordID,
		slack.NewTextBlockObject(slack.PlainTextType, "Not Negative", false, false),
	)
	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, alertText, false, false),
			nil, nil,
		),
		slack.NewActionBlock("mood_review_actions", negativeBtn, notNegativeBtn),
	}

	_, _, err := api.PostMessage(cfg.ReviewChannelID, slack.MsgOptionBlocks(blocks...))
	if err != nil {
		log.Printf("alert post error record=%s (non-fatal): %v", recordID, err)
		return
	}
	log.Printf("negative alert sent record=%s score=%.2f", recordID, score)
}

func formatSource(userID string) string {
	if userID == "" {
		return "unknown"
	}
	return "<@" + userID + ">"
}

func handleInteraction(api *slack.Client, db *sql.DB, cfg Config, cb slack.InteractionCallback) {
	switch cb.Type {
	case slack.InteractionTypeBlockActions:
		handleBlockActions(api, db, cfg, cb)
	}
}

func handleBlockActions(api *slack.Client, db *sql.DB, cfg Config, cb slack.InteractionCallback) {
	if len(cb.ActionCallback.BlockActions) == 0 {
		return
	}
	act := cb.ActionCallback.BlockActions[0]
	channelID := cb.Channel.ID
	if channelID == "" {
		channelID = cb.Container.ChannelID
	}
	userID := cb.User.ID

	switch act.ActionID {
	case actionLabelNegative, actionLabelNotNegative:
		label, recordID, err := parseFeedbackValue(act.Value)
		if err != nil {
			log.Printf("feedback value error user=%s: %v", userID, err)
			postEphemeralTo(api, channelID, userID, "Sorry, this action could not be processed.")
			return
		}
		applyFeedback(api, db, channelID, userID, cb.Container.MessageTs, recordID, label)
	}
}

func parseFeedbackValue(value string) (label, recordID string, err error) {
	value = strings.TrimSpace(value)
	switch {
	case strings.HasPrefix(value, labelNegativePrefix):
		label, recordID = LabelNegative, strings.TrimPrefix(value, labelNegativePrefix)
	case strings.HasPrefix(value, labelNotNegativePrefix):
		label, recordID = LabelNotNegative, strings.TrimPrefix(value, labelNotNegativePrefix)
	default:
		return "", "", fmt.Errorf("unrecognized action value %q", value)
	}
	if recordID == "" {
		return "", "", fmt.Errorf("missing record id in action value %q", value)
	}
	return label, recordID, nil
}

// applyFeedback stores the reviewer's verdict and always acknowledges the
// click. Duplicate clicks and clicks for vanished records are no-ops worth
// only a log line; a storage failure means the correction is lost, since the
// alert's buttons are retracted either way.
func applyFeedback(api *slack.Client, db *sql.DB, channelID, userID, messageTS, recordID, label string) {
	err := UpdateRecordLabel(db, recordID, label)
	switch {
	case err == nil:
		log.Printf("feedback recorded record=%s label=%s by=%s", recordID, label, userID)
	case errors.Is(err, ErrLabelAlreadySet):
		log.Printf("feedback duplicate record=%s label=%s by=%s", recordID, label, userID)
	case errors.Is(err, ErrRecordNotFound):
		log.Printf("feedback for unknown record=%s by=%s", recordID, userID)
	default:
		log.Printf("feedback update error record=%s (correction lost): %v", recordID, err)
	}

	postEphemeralTo(api, channelID, userID, "Feedback recorded! Thank you.")
	retractAlertButtons(api, channelID, messageTS, label)
}

// retractAlertButtons replaces the alert's blocks so the buttons disappear
// once someone has reviewed the message.
func retractAlertButtons(api *slack.Client, channelID, messageTS, label string) {
	if messageTS == "" {
		return
	}
	resolved := "✅ Reviewed: not negative."
	if label == LabelNegative {
		resolved = "✅ Reviewed: negative."
	}
	_, _, _, err := api.UpdateMessage(channelID, messageTS,
		slack.MsgOptionBlocks(slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, resolved, false, false),
			nil, nil,
		)),
	)
	if err != nil {
		log.Printf("alert retract error ts=%s (non-fatal): %v", messageTS, err)
	}
}

func postEphemeralTo(api *slack.Client, channelID, userID, text string) {
	_, err := api.PostEphemeral(channelID, userID, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("Error posting ephemeral: %v", err)
	}
}
