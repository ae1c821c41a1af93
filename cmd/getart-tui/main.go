package main

import (
	"fmt"
	"io"
	"os"

	"github.com/handiism/getart/internal/config"
	"github.com/handiism/getart/internal/logging"
	"github.com/handiism/getart/internal/tui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	configFlag := pflag.StringP("config", "c", "", "Path to config file (JSON, YAML or TOML)")
	saveFlag := pflag.Bool("save-config", false, "Write the effective settings back to --config and exit")
	logFileFlag := pflag.String("log-file", "", "Append diagnostic logs (at the configured log_level) to this file")
	pflag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *saveFlag {
		if *configFlag == "" {
			fmt.Fprintln(os.Stderr, "Error: --save-config requires --config")
			os.Exit(1)
		}
		if err := settings.Save(*configFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved settings to %s\n", *configFlag)
		return
	}

	log, closeLog, err := openLogger(settings.LogLevel, *logFileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := tui.Run(settings, log); err != nil {
		closeLog()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openLogger returns a logger at level writing to path. The terminal
// belongs to the UI, so without a path logs are discarded.
func openLogger(level, path string) (*logrus.Logger, func() error, error) {
	if path == "" {
		return logging.New(level, io.Discard), func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return logging.New(level, f), f.Close, nil
}
