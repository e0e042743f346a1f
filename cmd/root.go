// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/kazwalker/elmterm/internal/config"
	"github.com/kazwalker/elmterm/internal/forward"
	"github.com/kazwalker/elmterm/internal/history"
	"github.com/kazwalker/elmterm/internal/logging"
	"github.com/kazwalker/elmterm/internal/palette"
	"github.com/kazwalker/elmterm/internal/terminal"
	"github.com/kazwalker/elmterm/internal/transport"
)

var (
	flagTimeout      float64
	flagPrompt       string
	flagTerminator   string
	flagHistory      string
	flagHistoryDepth int
	flagConfig       string
	flagTheme        string
	flagHexdump      bool
	flagPlain        bool
	flagTimestamps   bool
	flagLogFile      string
	flagLogLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "elmterm <connection-url>",
	Short: "Interactive diagnostic terminal for ELM327/STN OBD-II adapters",
	Long: `elmterm is an interactive terminal for automotive OBD-II adapters that speak
the ELM327/STN AT command dialect over a byte-oriented transport.

It decodes every outgoing command and every incoming frame in real time:
classifying OBD-II vs UDS/KWP service requests, reassembling multi-frame
ISO-TP messages, decoding negative-response codes, and extracting
structured payloads such as the VIN — while you keep typing.

Connection URL schemes:
  tty://<device-path>[?baud=<rate>]   serial adapter
  tcp://<host>:<port>                 network-bridged adapter
  ws://<host>/<path>                  WebSocket-relayed adapter (wss:// is rejected)`,
	Version: "1.0.0",
	Args:    cobra.ExactArgs(1),
	RunE:    runElmterm,
}

func init() {
	rootCmd.Flags().Float64VarP(&flagTimeout, "timeout", "t", 12, "Connect timeout, in seconds")
	rootCmd.Flags().StringVarP(&flagPrompt, "prompt", "p", "> ", "REPL prompt")
	rootCmd.Flags().StringVar(&flagTerminator, "terminator", "cr", "Bytes appended on send (cr|lf|crlf|none|hex:<HEX>|literal)")
	rootCmd.Flags().StringVar(&flagHistory, "history", "", "History file (default ~/.elmterm.history)")
	rootCmd.Flags().IntVar(&flagHistoryDepth, "history-depth", 500, "Max retained history entries")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "JSON/YAML preferences file (default ~/.elmterm.json)")
	rootCmd.Flags().StringVar(&flagTheme, "theme", "", "Color palette: light|dark")
	rootCmd.Flags().BoolVar(&flagHexdump, "hexdump", false, "Also print hex+ASCII dumps")
	rootCmd.Flags().BoolVar(&flagPlain, "plain", false, "Disable the protocol analyzer")
	rootCmd.Flags().BoolVar(&flagTimestamps, "timestamps", false, "Prefix each incoming line with an ISO-8601 timestamp")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write structured logs to this file instead of stderr")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug|info|warn|error")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runElmterm(cmd *cobra.Command, args []string) error {
	logger := logging.New(logging.Options{File: flagLogFile, Level: flagLogLevel})
	defer logger.Sync()

	cfgPath := flagConfig
	if cfgPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfgPath = home + "/.elmterm.json"
		}
	}
	fileCfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("elmterm: loading config: %w", err)
	}

	theme := fileCfg.Theme
	if flagTheme != "" {
		theme = flagTheme
	}
	historyPath := fileCfg.HistoryPath
	if flagHistory != "" {
		historyPath = flagHistory
	}
	historyDepth := fileCfg.HistoryDepth
	if cmd.Flags().Changed("history-depth") {
		historyDepth = flagHistoryDepth
	}

	terminator, err := terminal.ParseTerminator(flagTerminator)
	if err != nil {
		return fmt.Errorf("elmterm: invalid --terminator: %w", err)
	}

	timeout := time.Duration(flagTimeout * float64(time.Second))
	dialCtx, dialCancel := context.WithTimeout(context.Background(), timeout)
	defer dialCancel()

	conn, desc, err := transport.Dial(dialCtx, args[0], timeout, logger)
	if err != nil {
		return fmt.Errorf("elmterm: connecting to %s: %w", args[0], err)
	}
	defer conn.Close()
	logger.Infow("connected", "description", desc)

	hist := history.New(historyPath, historyDepth)
	if err := hist.Load(); err != nil {
		logger.Warnw("failed to load history", "path", historyPath, "error", err)
	}

	pal := palette.ForName(theme)
	if flagPlain {
		pal = palette.Plain()
	}

	// Engine.Run closes sink on shutdown; no defer needed here.
	sink := buildForwardSink(fileCfg.Forward, logger)

	stdinState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("elmterm: entering raw terminal mode: %w", err)
	}
	defer term.Restore(int(os.Stdin.Fd()), stdinState)

	engine := terminal.New(terminal.Config{
		Conn:       conn,
		In:         os.Stdin,
		Out:        os.Stdout,
		Prompt:     flagPrompt,
		Terminator: terminator,
		Hexdump:    flagHexdump,
		Timestamps: flagTimestamps,
		History:    hist,
		Palette:    pal,
		AnalyzerOn: !flagPlain,
		Sink:       sink,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return engine.Run(ctx)
}

func buildForwardSink(cfg config.ForwardConfig, logger *zap.SugaredLogger) forward.Sink {
	var sinks []forward.Sink
	if cfg.Kafka != nil {
		sinks = append(sinks, forward.NewKafkaSink(forward.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, logger))
	}
	if cfg.AMQP != nil {
		sinks = append(sinks, forward.NewAMQPSink(forward.AMQPConfig{
			URL:      cfg.AMQP.URL,
			Exchange: cfg.AMQP.Exchange,
		}, logger))
	}
	if len(sinks) == 0 {
		return forward.NullSink{}
	}
	return forward.NewMultiSink(sinks...)
}
