// Package notify sends best-effort notifications about fixture
// preparation results.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	ntfy "github.com/go-pkgz/notify"
)

// Params holds configuration for creating a notification Service.
type Params struct {
	Channels      []string
	OnError       bool
	OnComplete    bool
	TimeoutMs     int
	WebhookURLs   []string
	TelegramToken string
	TelegramChat  string
	SlackToken    string
	SlackChannel  string
}

// Service sends preparation results through configured channels.
type Service struct {
	channels   []channel // paired notifier + destination
	onError    bool
	onComplete bool
	timeoutMs  int
	hostname   string // resolved once at creation via os.Hostname()
	log        logger
}

// channel pairs a notifier with its destination URI.
type channel struct {
	notifier   ntfy.Notifier
	dest       string
	htmlEscape bool // true for channels using HTML parse mode (telegram)
}

// logger interface for dependency injection.
type logger interface {
	Print(format string, args ...any)
	Warn(format string, args ...any)
}

// Result holds completion data for notifications.
type Result struct {
	Status     string // "success" or "failure"
	ConfigFile string
	Mode       string
	ModelName  string
	Duration   string
	Error      string
}

// New creates a notification Service from the given Params. Returns
// nil, nil when no channels are configured; Send is nil-safe so callers
// skip nil checks.
func New(p Params, log logger) (*Service, error) {
	if len(p.Channels) == 0 {
		return nil, nil //nolint:nilnil // nil,nil signals "no channels configured", Send is nil-safe
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	svc := &Service{
		onError:    p.OnError,
		onComplete: p.OnComplete,
		timeoutMs:  p.TimeoutMs,
		hostname:   hostname,
		log:        log,
	}
	if svc.timeoutMs <= 0 {
		svc.timeoutMs = 10000
	}

	for _, ch := range p.Channels {
		switch strings.TrimSpace(strings.ToLower(ch)) {
		case "webhook":
			chs, cErr := makeWebhookChannels(p)
			if cErr != nil {
				return nil, fmt.Errorf("webhook channel: %w", cErr)
			}
			svc.channels = append(svc.channels, chs...)
		case "telegram":
			c, cErr := telegramChannelMaker(p)
			if cErr != nil {
				// telegram init makes a live API call to verify the bot token;
				// if the network is unavailable, skip the channel instead of
				// blocking startup. redact the token from the error.
				errMsg := strings.ReplaceAll(cErr.Error(), p.TelegramToken, "[REDACTED]")
				log.Warn("telegram channel disabled: %s", errMsg)
				continue
			}
			svc.channels = append(svc.channels, c)
		case "slack":
			c, cErr := makeSlackChannel(p)
			if cErr != nil {
				return nil, fmt.Errorf("slack channel: %w", cErr)
			}
			svc.channels = append(svc.channels, c)
		default:
			return nil, fmt.Errorf("unknown notification channel: %q", ch)
		}
	}

	if len(svc.channels) == 0 {
		log.Warn("all notification channels were disabled due to initialization errors")
	}

	return svc, nil
}

// Send sends a notification for the given result. nil-safe on receiver.
// Errors are logged but never returned, notifications are best-effort.
func (s *Service) Send(ctx context.Context, r Result) {
	if s == nil {
		return
	}

	if r.Status == "success" && !s.onComplete {
		return
	}
	if r.Status == "failure" && !s.onError {
		return
	}

	msg := s.formatMessage(r)

	timeout := time.Duration(s.timeoutMs) * time.Millisecond
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for _, ch := range s.channels {
		text := msg
		if ch.htmlEscape {
			text = html.EscapeString(msg)
		}
		if err := ch.notifier.Send(sendCtx, ch.dest, text); err != nil {
			s.log.Warn("notification failed for %s: %v", ch.notifier, err)
		}
	}
}

// formatMessage creates a plain text notification message from the result.
func (s *Service) formatMessage(r Result) string {
	var b strings.Builder

	if r.Status == "success" {
		fmt.Fprintf(&b, "fixprep completed on %s\n", s.hostname)
	} else {
		fmt.Fprintf(&b, "fixprep failed on %s\n", s.hostname)
	}

	b.WriteString("\n")

	if r.ConfigFile != "" {
		fmt.Fprintf(&b, "config:   %s\n", r.ConfigFile)
	}
	if r.Mode != "" {
		fmt.Fprintf(&b, "mode:     %s\n", r.Mode)
	}
	if r.ModelName != "" {
		fmt.Fprintf(&b, "model:    %s\n", r.ModelName)
	}
	if r.Duration != "" {
		fmt.Fprintf(&b, "duration: %s\n", r.Duration)
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "error:    %s\n", r.Error)
	}

	return b.String()
}

// telegramChannelMaker creates a telegram notifier and destination.
// overridden in tests to avoid live API calls.
var telegramChannelMaker = makeTelegramChannel

func makeTelegramChannel(p Params) (channel, error) {
	if p.TelegramToken == "" {
		return channel{}, errors.New("notify_telegram_token is required")
	}
	if p.TelegramChat == "" {
		return channel{}, errors.New("notify_telegram_chat is required")
	}

	tg, err := ntfy.NewTelegram(ntfy.TelegramParams{Token: p.TelegramToken})
	if err != nil {
		return channel{}, fmt.Errorf("create telegram notifier: %w", err)
	}

	dest := fmt.Sprintf("telegram:%s?parseMode=HTML", p.TelegramChat)
	return channel{notifier: tg, dest: dest, htmlEscape: true}, nil
}

func makeSlackChannel(p Params) (channel, error) {
	if p.SlackToken == "" {
		return channel{}, errors.New("notify_slack_token is required")
	}
	if p.SlackChannel == "" {
		return channel{}, errors.New("notify_slack_channel is required")
	}

	sl := ntfy.NewSlack(p.SlackToken)
	return channel{notifier: sl, dest: "slack:" + p.SlackChannel}, nil
}

func makeWebhookChannels(p Params) ([]channel, error) {
	if len(p.WebhookURLs) == 0 {
		return nil, errors.New("notify_webhook_urls is required")
	}

	wh := ntfy.NewWebhook(ntfy.WebhookParams{})
	var channels []channel
	for _, u := range p.WebhookURLs {
		channels = append(channels, channel{notifier: wh, dest: u})
	}
	return channels, nil
}
