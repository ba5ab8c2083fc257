package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

type Config struct {
	SlackBotToken   string `yaml:"slack_bot_token"`
	SlackAppToken   string `yaml:"slack_app_token"`
	WatchChannelID  string `yaml:"watch_channel_id"`
	ReviewChannelID string `yaml:"review_channel_id"`

	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	AlertThreshold float64           `yaml:"alert_threshold"`
	LabelMap       map[string]string `yaml:"label_map"`

	DBPath         string `yaml:"db_path"`
	ChartOutputDir string `yaml:"chart_output_dir"`
	ChartFontPath  string `yaml:"chart_font_path"`

	ReportSchedule             string `yaml:"report_schedule"`
	Timezone                   string `yaml:"timezone"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`

	Location        *time.Location       `yaml:"-"` // computed from Timezone, not from YAML
	SentimentLabels map[string]Sentiment `yaml:"-"` // computed from LabelMap
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackAppToken, "SLACK_APP_TOKEN")
	envOverride(&cfg.WatchChannelID, "WATCH_CHANNEL_ID")
	envOverride(&cfg.ReviewChannelID, "REVIEW_CHANNEL_ID")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverrideFloat(&cfg.AlertThreshold, "ALERT_THRESHOLD")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ChartOutputDir, "CHART_OUTPUT_DIR")
	envOverride(&cfg.ChartFontPath, "CHART_FONT_PATH")
	envOverride(&cfg.ReportSchedule, "REPORT_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")

	// Defaults
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "anthropic"
	}
	if cfg.LLMModel == "" {
		if cfg.LLMProvider == "openai" {
			cfg.LLMModel = defaultOpenAIModel
		} else {
			cfg.LLMModel = defaultAnthropicModel
		}
	}
	if cfg.AlertThreshold == 0 {
		cfg.AlertThreshold = 0.6
	}
	if len(cfg.LabelMap) == 0 {
		cfg.LabelMap = map[string]string{
			"HAPPY": string(SentimentPositive),
			"SAD":   string(SentimentNegative),
		}
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./moodbot.db"
	}
	if cfg.ChartOutputDir == "" {
		cfg.ChartOutputDir = "./charts"
	}
	if cfg.ReportSchedule == "" {
		cfg.ReportSchedule = "0 0 * * *"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}

	// Validate required fields
	required := map[string]string{
		"slack_bot_token":   cfg.SlackBotToken,
		"slack_app_token":   cfg.SlackAppToken,
		"watch_channel_id":  cfg.WatchChannelID,
		"review_channel_id": cfg.ReviewChannelID,
	}
	for name, val := range required {
		if val == "" {
			log.Fatalf("Required config '%s' is not set (via config.yaml or env var)", name)
		}
	}

	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("openai_api_key is required when llm_provider=openai")
		}
	default:
		log.Fatalf("llm_provider must be 'anthropic' or 'openai', got '%s'", cfg.LLMProvider)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if cfg.AlertThreshold < 0 || cfg.AlertThreshold > 1 {
		log.Fatalf("invalid alert_threshold '%f': must be between 0 and 1", cfg.AlertThreshold)
	}

	cfg.SentimentLabels = make(map[string]Sentiment, len(cfg.LabelMap))
	for raw, mapped := range cfg.LabelMap {
		s := Sentiment(strings.ToUpper(strings.TrimSpace(mapped)))
		if !s.Valid() || s == SentimentError {
			log.Fatalf("invalid label_map entry '%s: %s': must map to POSITIVE, NEUTRAL or NEGATIVE", raw, mapped)
		}
		cfg.SentimentLabels[strings.ToUpper(strings.TrimSpace(raw))] = s
	}

	if _, err := reportCronParser.Parse(cfg.ReportSchedule); err != nil {
		log.Fatalf("invalid report_schedule '%s': %v", cfg.ReportSchedule, err)
	}
	if cfg.ExternalHTTPTimeoutSeconds < 5 {
		log.Fatalf("invalid external_http_timeout_seconds '%d': must be >= 5", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.ChartFontPath != "" {
		if _, err := os.Stat(cfg.ChartFontPath); err != nil {
			log.Fatalf("invalid chart_font_path '%s': %v", cfg.ChartFontPath, err)
		}
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
