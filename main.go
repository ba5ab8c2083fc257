package main

import (
	"log"
	"os"
	"time"

	"github.com/slack-go/slack"
)

func main() {
	cfg := LoadConfig()

	externalHTTPClient.Timeout = time.Duration(cfg.ExternalHTTPTimeoutSeconds) * time.Second

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	os.MkdirAll(cfg.ChartOutputDir, 0755)

	api := slack.New(
		cfg.SlackBotToken,
		slack.OptionAppLevelToken(cfg.SlackAppToken),
	)

	clf := NewClassifier(cfg)

	StartMoodReportScheduler(cfg, db, api)

	log.Println("Starting MoodBot...")
	if err := StartSlackBot(cfg, db, api, clf); err != nil {
		log.Fatalf("Slack bot error: %v", err)
	}
}
