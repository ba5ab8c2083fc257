package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// reportCronParser accepts standard 5-field cron expressions
// (minute hour day-of-month month day-of-week).
var reportCronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// StartMoodReportScheduler posts yesterday's mood summary once at startup,
// then again on every tick of the configured cron schedule.
func StartMoodReportScheduler(cfg Config, db *sql.DB, api *slack.Client) {
	sched, err := reportCronParser.Parse(cfg.ReportSchedule)
	if err != nil {
		log.Printf("Invalid report_schedule '%s': %v — mood reports disabled", cfg.ReportSchedule, err)
		return
	}
	log.Printf("Mood report scheduled (cron: %s)", cfg.ReportSchedule)

	go func() {
		for {
			runDailyMoodReport(cfg, db, api, time.Now().In(cfg.Location))

			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next mood report at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)
		}
	}()
}

// runDailyMoodReport summarizes the calendar day before `now`. The chart is
// best effort: when it cannot be built or uploaded, the text summary still
// goes out.
func runDailyMoodReport(cfg Config, db *sql.DB, api *slack.Client, now time.Time) {
	yesterday := now.AddDate(0, 0, -1)
	day := yesterday.Format("2006-01-02")

	counts, err := CountsForDay(db, yesterday)
	if err != nil {
		log.Printf("mood report query error day=%s: %v", day, err)
		return
	}

	if counts.Total() == 0 {
		postSummaryText(api, cfg, fmt.Sprintf("No data for %s.", day))
		log.Printf("mood report day=%s no data", day)
		return
	}

	summary := formatMoodSummary(day, counts)

	chartPath, err := writeMoodChart(cfg, db)
	if err != nil {
		log.Printf("mood chart error day=%s (non-fatal): %v", day, err)
		postSummaryText(api, cfg, summary)
		return
	}

	fi, err := os.Stat(chartPath)
	if err != nil || fi.Size() <= 0 {
		log.Printf("mood chart unusable path=%s (non-fatal): %v", chartPath, err)
		postSummaryText(api, cfg, summary)
		return
	}

	_, err = api.UploadFileV2(slack.UploadFileV2Parameters{
		File:           chartPath,
		FileSize:       int(fi.Size()),
		Filename:       filepath.Base(chartPath),
		Channel:        cfg.ReviewChannelID,
		Title:          "Mood Trends Over Time",
		InitialComment: summary,
	})
	if err != nil {
		log.Printf("mood chart upload error day=%s (non-fatal): %v", day, err)
		postSummaryText(api, cfg, summary)
		return
	}
	log.Printf("mood report sent day=%s positive=%d neutral=%d negative=%d",
		day, counts.Positive, counts.Neutral, counts.Negative)
}

func formatMoodSummary(day string, counts MoodCounts) string {
	return fmt.Sprintf("📊 Mood Summary for %s:\nPositive: %d\nNeutral: %d\nNegative: %d",
		day, counts.Positive, counts.Neutral, counts.Negative)
}

// writeMoodChart renders the full cumulative trend chart into the configured
// output directory and returns the file path.
func writeMoodChart(cfg Config, db *sql.DB) (string, error) {
	history, err := MoodHistory(db, cfg.Location)
	if err != nil {
		return "", err
	}
	if len(history) == 0 {
		return "", fmt.Errorf("no mood history to chart")
	}

	if err := os.MkdirAll(cfg.ChartOutputDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(cfg.ChartOutputDir,
		fmt.Sprintf("mood-trends-%s.png", time.Now().In(cfg.Location).Format("2006-01-02")))
	if err := RenderMoodTrendChart(history, path, cfg.ChartFontPath); err != nil {
		return "", err
	}
	return path, nil
}

func postSummaryText(api *slack.Client, cfg Config, text string) {
	_, _, err := api.PostMessage(cfg.ReviewChannelID, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("mood summary post error: %v", err)
	}
}
