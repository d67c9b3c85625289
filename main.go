// discord-extractor exports Discord message history to JSON/CSV and
// appends newly observed messages to per-day JSON logs. Channels and
// authors can be filtered from the command line or picked interactively.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"discord-extractor/bot"
	"discord-extractor/config"
	"discord-extractor/logging"

	"github.com/spf13/pflag"
)

func main() {
	fs := pflag.NewFlagSet("discord-extractor", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)

	if err := bot.Run(cfg); err != nil {
		slog.Error("run failed", slog.Any("err", err))
		os.Exit(1)
	}
}
