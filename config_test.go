package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func setMinimalValidConfigEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_APP_TOKEN", "xapp-test")
	t.Setenv("WATCH_CHANNEL_ID", "C_WATCH")
	t.Setenv("REVIEW_CHANNEL_ID", "C_REVIEW")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TIMEZONE", "UTC")
}

func TestLoadConfigFromEnvWithDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	setMinimalValidConfigEnv(t)

	cfg := LoadConfig()

	if cfg.SlackBotToken != "xoxb-test" {
		t.Fatalf("unexpected slack bot token: %q", cfg.SlackBotToken)
	}
	if cfg.WatchChannelID != "C_WATCH" {
		t.Fatalf("unexpected watch channel: %q", cfg.WatchChannelID)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("unexpected provider: %q", cfg.LLMProvider)
	}
	if cfg.LLMModel != defaultOpenAIModel {
		t.Fatalf("unexpected model default: %q", cfg.LLMModel)
	}
	if cfg.AlertThreshold != 0.6 {
		t.Fatalf("unexpected alert threshold default: %f", cfg.AlertThreshold)
	}
	if cfg.DBPath != "./moodbot.db" {
		t.Fatalf("unexpected db path default: %q", cfg.DBPath)
	}
	if cfg.ChartOutputDir != "./charts" {
		t.Fatalf("unexpected chart output dir default: %q", cfg.ChartOutputDir)
	}
	if cfg.ReportSchedule != "0 0 * * *" {
		t.Fatalf("unexpected report schedule default: %q", cfg.ReportSchedule)
	}
	if cfg.ExternalHTTPTimeoutSeconds != int(defaultExternalHTTPTimeout/time.Second) {
		t.Fatalf("unexpected external HTTP timeout default: %d", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if len(cfg.SentimentLabels) != 2 {
		t.Fatalf("expected 2 default sentiment labels, got %d", len(cfg.SentimentLabels))
	}
	if cfg.SentimentLabels["HAPPY"] != SentimentPositive || cfg.SentimentLabels["SAD"] != SentimentNegative {
		t.Fatalf("unexpected default sentiment labels: %v", cfg.SentimentLabels)
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
slack_bot_token: "yaml-bot"
slack_app_token: "yaml-app"
watch_channel_id: "C_YAML_WATCH"
review_channel_id: "C_YAML_REVIEW"
llm_provider: "anthropic"
anthropic_api_key: "yaml-anthropic"
alert_threshold: 0.8
label_map:
  happy: positive
  sad: negative
  angry: " negative "
timezone: "Asia/Tehran"
db_path: "/tmp/yaml.db"
chart_output_dir: "/tmp/yaml-charts"
report_schedule: "30 18 * * *"
external_http_timeout_seconds: 75
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("ALERT_THRESHOLD", "0.9")
	t.Setenv("DB_PATH", "/tmp/env.db")
	t.Setenv("EXTERNAL_HTTP_TIMEOUT_SECONDS", "120")

	cfg := LoadConfig()

	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected provider from env override, got %q", cfg.LLMProvider)
	}
	if cfg.OpenAIAPIKey != "sk-env" {
		t.Fatalf("expected openai key from env override")
	}
	if cfg.AlertThreshold != 0.9 {
		t.Fatalf("expected alert threshold from env override, got %f", cfg.AlertThreshold)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("expected db path from env override, got %q", cfg.DBPath)
	}
	if cfg.ChartOutputDir != "/tmp/yaml-charts" {
		t.Fatalf("expected chart output dir from yaml, got %q", cfg.ChartOutputDir)
	}
	if cfg.ReportSchedule != "30 18 * * *" {
		t.Fatalf("expected report schedule from yaml, got %q", cfg.ReportSchedule)
	}
	if cfg.ExternalHTTPTimeoutSeconds != 120 {
		t.Fatalf("expected external HTTP timeout from env override, got %d", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.Location == nil || cfg.Location.String() != "Asia/Tehran" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if len(cfg.SentimentLabels) != 3 {
		t.Fatalf("expected 3 sentiment labels, got %d", len(cfg.SentimentLabels))
	}
	if cfg.SentimentLabels["ANGRY"] != SentimentNegative {
		t.Fatalf("label_map entries must be normalized, got %v", cfg.SentimentLabels)
	}
	if cfg.SentimentLabels["HAPPY"] != SentimentPositive {
		t.Fatalf("unexpected mapping for happy: %v", cfg.SentimentLabels)
	}
}

func TestEnvOverrideHelpers(t *testing.T) {
	s := "initial"
	t.Setenv("MB_TEST_STR", "value")
	envOverride(&s, "MB_TEST_STR")
	if s != "value" {
		t.Fatalf("envOverride failed, got %q", s)
	}

	i := 1
	t.Setenv("MB_TEST_INT", "42")
	envOverrideInt(&i, "MB_TEST_INT")
	if i != 42 {
		t.Fatalf("envOverrideInt failed, got %d", i)
	}

	f := 0.1
	t.Setenv("MB_TEST_FLOAT", "0.75")
	envOverrideFloat(&f, "MB_TEST_FLOAT")
	if f != 0.75 {
		t.Fatalf("envOverrideFloat failed, got %f", f)
	}
}

func TestLoadConfigInvalidTimezoneFatal(t *testing.T) {
	if os.Getenv("TEST_INVALID_TZ_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
		_ = os.Setenv("SLACK_APP_TOKEN", "xapp-test")
		_ = os.Setenv("WATCH_CHANNEL_ID", "C_WATCH")
		_ = os.Setenv("REVIEW_CHANNEL_ID", "C_REVIEW")
		_ = os.Setenv("LLM_PROVIDER", "openai")
		_ = os.Setenv("OPENAI_API_KEY", "sk-test")
		_ = os.Setenv("TIMEZONE", "Mars/Colony")
		LoadConfig()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestLoadConfigInvalidTimezoneFatal")
	cmd.Env = append(os.Environ(), "TEST_INVALID_TZ_FATAL=1")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected subprocess to exit with failure")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got: %v", err)
	}
}

func TestLoadConfigInvalidLabelMapFatal(t *testing.T) {
	if os.Getenv("TEST_INVALID_LABEL_MAP_FATAL") == "1" {
		_ = os.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
		_ = os.Setenv("SLACK_APP_TOKEN", "xapp-test")
		_ = os.Setenv("WATCH_CHANNEL_ID", "C_WATCH")
		_ = os.Setenv("REVIEW_CHANNEL_ID", "C_REVIEW")
		_ = os.Setenv("LLM_PROVIDER", "openai")
		_ = os.Setenv("OPENAI_API_KEY", "sk-test")
		_ = os.Setenv("TIMEZONE", "UTC")
		LoadConfig()
		return
	}

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "label_map:\n  HAPPY: \"ERROR\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestLoadConfigInvalidLabelMapFatal")
	cmd.Env = append(os.Environ(), "TEST_INVALID_LABEL_MAP_FATAL=1", "CONFIG_PATH="+cfgPath)
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected subprocess to exit with failure")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got: %v", err)
	}
}
