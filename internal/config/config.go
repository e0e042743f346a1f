// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

// Package config loads elmterm's optional preferences file with
// spf13/viper, the way bingwumeihuo-car-gateway loads its gateway config —
// a single explicit config path, read once at startup, absence treated as
// "use built-in defaults" rather than an error.
package config

import (
	"errors"
	"os"

	"github.com/spf13/viper"
)

// Config holds the subset of preferences spec.md §6 says the config file
// may carry. CLI flags win over these; these win over Defaults().
type Config struct {
	Theme        string
	HistoryPath  string
	HistoryDepth int
	Forward      ForwardConfig
}

// ForwardConfig configures the optional annotation-forwarding sinks (see
// SPEC_FULL.md §4.9). Both sub-configs are optional; a nil pointer means
// that sink is disabled.
type ForwardConfig struct {
	Kafka *KafkaConfig
	AMQP  *AMQPConfig
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

// Defaults returns the built-in defaults, the lowest-precedence tier.
func Defaults() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Theme:        "light",
		HistoryPath:  home + "/.elmterm.history",
		HistoryDepth: 500,
	}
}

// Load reads the config file at path (JSON or YAML, viper auto-detects by
// extension) and overlays it onto Defaults(). A missing file is not an
// error — it just means "no overrides".
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if v.IsSet("theme") {
		cfg.Theme = v.GetString("theme")
	}
	if v.IsSet("historyPath") {
		cfg.HistoryPath = v.GetString("historyPath")
	}
	if v.IsSet("historyDepth") {
		cfg.HistoryDepth = v.GetInt("historyDepth")
	}

	if v.IsSet("forward.kafka.brokers") {
		cfg.Forward.Kafka = &KafkaConfig{
			Brokers: v.GetStringSlice("forward.kafka.brokers"),
			Topic:   v.GetString("forward.kafka.topic"),
		}
	}
	if v.IsSet("forward.amqp.url") {
		cfg.Forward.AMQP = &AMQPConfig{
			URL:      v.GetString("forward.amqp.url"),
			Exchange: v.GetString("forward.amqp.exchange"),
		}
	}

	return cfg, nil
}
