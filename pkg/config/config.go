// Package config loads fixprep tool configuration with a fallback chain:
// local .fixprep file, then the global config, then embedded defaults.
package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

//go:embed defaults/config
var defaultsFS embed.FS

// Config holds tool configuration values. Fields ending in *Set track
// whether the key was explicitly present, so a local config can override
// the global one with false/zero values.
type Config struct {
	PythonCommand string
	ProgressFile  string

	NotifyChannels      []string
	NotifyWebhookURLs   []string
	NotifyTelegramToken string
	NotifyTelegramChat  string
	NotifySlackToken    string
	NotifySlackChannel  string
	NotifyOnError       bool
	NotifyOnErrorSet    bool
	NotifyOnComplete    bool
	NotifyOnCompleteSet bool
	NotifyTimeoutMs     int
	NotifyTimeoutMsSet  bool
}

// Load loads configuration from the default locations: the embedded
// defaults, ~/.config/fixprep/config, then .fixprep in the current
// directory, later sources winning per key. localDir overrides where the
// local file is looked up, empty uses the current directory.
func Load(localDir string) (*Config, error) {
	if localDir == "" {
		localDir = "."
	}

	globalPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		globalPath = filepath.Join(home, ".config", "fixprep", "config")
	}

	return load(filepath.Join(localDir, ".fixprep"), globalPath)
}

func load(localPath, globalPath string) (*Config, error) {
	embedded, err := parseEmbedded()
	if err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}

	global, err := parseFile(globalPath)
	if err != nil {
		return nil, fmt.Errorf("parse global config: %w", err)
	}

	local, err := parseFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("parse local config: %w", err)
	}

	result := embedded
	result.mergeFrom(&global)
	result.mergeFrom(&local)
	return &result, nil
}

func parseEmbedded() (Config, error) {
	data, err := defaultsFS.ReadFile("defaults/config")
	if err != nil {
		return Config{}, fmt.Errorf("read embedded defaults: %w", err)
	}
	return parseBytes(data)
}

// parseFile reads a config file, returning empty Config (not error) when
// the file doesn't exist so the fallback chain keeps working.
func parseFile(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return parseBytes(data)
}

func parseBytes(data []byte) (Config, error) {
	// ignoreInlineComment: true prevents # from being treated as inline comment marker
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	var cfg Config
	section := f.Section("") // default section (no section header)

	if key, err := section.GetKey("python_command"); err == nil {
		cfg.PythonCommand = key.String()
	}
	if key, err := section.GetKey("progress_file"); err == nil {
		cfg.ProgressFile = key.String()
	}

	if key, err := section.GetKey("notify_channels"); err == nil {
		cfg.NotifyChannels = splitList(key.String())
	}
	if key, err := section.GetKey("notify_webhook_urls"); err == nil {
		cfg.NotifyWebhookURLs = splitList(key.String())
	}
	if key, err := section.GetKey("notify_telegram_token"); err == nil {
		cfg.NotifyTelegramToken = key.String()
	}
	if key, err := section.GetKey("notify_telegram_chat"); err == nil {
		cfg.NotifyTelegramChat = key.String()
	}
	if key, err := section.GetKey("notify_slack_token"); err == nil {
		cfg.NotifySlackToken = key.String()
	}
	if key, err := section.GetKey("notify_slack_channel"); err == nil {
		cfg.NotifySlackChannel = key.String()
	}

	if key, err := section.GetKey("notify_on_error"); err == nil {
		val, boolErr := key.Bool()
		if boolErr != nil {
			return Config{}, fmt.Errorf("invalid notify_on_error: %w", boolErr)
		}
		cfg.NotifyOnError = val
		cfg.NotifyOnErrorSet = true
	}
	if key, err := section.GetKey("notify_on_complete"); err == nil {
		val, boolErr := key.Bool()
		if boolErr != nil {
			return Config{}, fmt.Errorf("invalid notify_on_complete: %w", boolErr)
		}
		cfg.NotifyOnComplete = val
		cfg.NotifyOnCompleteSet = true
	}
	if key, err := section.GetKey("notify_timeout_ms"); err == nil {
		val, intErr := key.Int()
		if intErr != nil {
			return Config{}, fmt.Errorf("invalid notify_timeout_ms: %w", intErr)
		}
		if val < 0 {
			return Config{}, fmt.Errorf("invalid notify_timeout_ms: must be non-negative, got %d", val)
		}
		cfg.NotifyTimeoutMs = val
		cfg.NotifyTimeoutMsSet = true
	}

	return cfg, nil
}

func splitList(val string) []string {
	var out []string
	for _, p := range strings.Split(val, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// mergeFrom merges non-empty values from src into dst.
func (dst *Config) mergeFrom(src *Config) {
	if src.PythonCommand != "" {
		dst.PythonCommand = src.PythonCommand
	}
	if src.ProgressFile != "" {
		dst.ProgressFile = src.ProgressFile
	}
	if len(src.NotifyChannels) > 0 {
		dst.NotifyChannels = src.NotifyChannels
	}
	if len(src.NotifyWebhookURLs) > 0 {
		dst.NotifyWebhookURLs = src.NotifyWebhookURLs
	}
	if src.NotifyTelegramToken != "" {
		dst.NotifyTelegramToken = src.NotifyTelegramToken
	}
	if src.NotifyTelegramChat != "" {
		dst.NotifyTelegramChat = src.NotifyTelegramChat
	}
	if src.NotifySlackToken != "" {
		dst.NotifySlackToken = src.NotifySlackToken
	}
	if src.NotifySlackChannel != "" {
		dst.NotifySlackChannel = src.NotifySlackChannel
	}
	if src.NotifyOnErrorSet {
		dst.NotifyOnError = src.NotifyOnError
		dst.NotifyOnErrorSet = true
	}
	if src.NotifyOnCompleteSet {
		dst.NotifyOnComplete = src.NotifyOnComplete
		dst.NotifyOnCompleteSet = true
	}
	if src.NotifyTimeoutMsSet {
		dst.NotifyTimeoutMs = src.NotifyTimeoutMs
		dst.NotifyTimeoutMsSet = true
	}
}
