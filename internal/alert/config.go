/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package alert

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"
)

// Config declares the delivery channels, loaded from a YAML file mounted
// into the operator pod. Sections left empty leave that channel
// unconfigured.
type Config struct {
	// MaxAlertsPerHour caps deliveries per rule. Zero disables the cap.
	MaxAlertsPerHour int `yaml:"maxAlertsPerHour"`

	Email *struct {
		Host     string   `yaml:"host"`
		Port     int      `yaml:"port"`
		From     string   `yaml:"from"`
		To       []string `yaml:"to"`
		Username string   `yaml:"username"`
		Password string   `yaml:"password"`
	} `yaml:"email"`

	Slack *struct {
		WebhookURL string `yaml:"webhookURL"`
		Channel    string `yaml:"channel"`
	} `yaml:"slack"`

	Telegram *struct {
		BotToken string `yaml:"botToken"`
		ChatID   string `yaml:"chatID"`
	} `yaml:"telegram"`

	Webhook *struct {
		URL     string            `yaml:"url"`
		Headers map[string]string `yaml:"headers"`
	} `yaml:"webhook"`
}

// LoadConfig reads a channel configuration file. An empty path yields an
// empty config, which leaves only the log channel available.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read alert config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse alert config: %w", err)
	}
	return cfg, nil
}

// BuildChannels constructs the channel map from a config. The log channel
// is always present.
func BuildChannels(cfg Config, log logr.Logger) map[string]Channel {
	channels := map[string]Channel{
		"log": NewLogChannel(log),
	}
	if cfg.Email != nil && cfg.Email.Host != "" {
		channels["email"] = NewEmailChannel(
			cfg.Email.Host, cfg.Email.Port, cfg.Email.From,
			cfg.Email.To, cfg.Email.Username, cfg.Email.Password,
		)
	}
	if cfg.Slack != nil && cfg.Slack.WebhookURL != "" {
		channels["slack"] = NewSlackChannel(cfg.Slack.WebhookURL, cfg.Slack.Channel)
	}
	if cfg.Telegram != nil && cfg.Telegram.BotToken != "" {
		channels["telegram"] = NewTelegramChannel(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}
	if cfg.Webhook != nil && cfg.Webhook.URL != "" {
		channels["webhook"] = NewWebhookChannel(cfg.Webhook.URL, cfg.Webhook.Headers)
	}
	return channels
}
