package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/handiism/getart/internal/applemusic"
	"github.com/handiism/getart/internal/config"
	"github.com/handiism/getart/internal/download"
	"github.com/handiism/getart/internal/logging"
	"github.com/spf13/pflag"
)

// Exit codes
const (
	exitOK          = 0
	exitUsage       = 1
	exitFailure     = 2
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("getart", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		timeoutFlag    = fs.Float64("timeout", config.DefaultSettings().Timeout.Seconds(), "Network timeout in seconds")
		outputFlag     = fs.StringP("output-dir", "o", ".", "Directory to save downloaded files")
		noDownloadFlag = fs.Bool("no-download", false, "Do not download files, only print URLs")
		printOnlyFlag  = fs.Bool("print-only", false, "Alias for --no-download")
		openFlag       = fs.Bool("open", false, "Open downloaded files with the default application")
		configFlag     = fs.StringP("config", "c", "", "Path to config file (JSON, YAML or TOML)")
		maxFetchesFlag = fs.Int("max-manifest-fetches", applemusic.DefaultMaxManifestFetches, "Upper bound on playlist fetches per video (0 = unlimited)")
		verboseFlag    = fs.BoolP("verbose", "v", false, "Show verbose output and debug logs")
	)

	fs.Usage = func() {
		printUsage(stdout, fs)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if fs.NArg() == 0 {
		printUsage(stdout, fs)
		return exitOK
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "Error: expected one URL, got %d arguments\n", fs.NArg())
		return exitUsage
	}
	pageURL := fs.Arg(0)

	// Load config
	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitUsage
	}

	// Apply flags
	if fs.Changed("timeout") {
		if *timeoutFlag <= 0 {
			fmt.Fprintln(stderr, "Error: --timeout must be positive")
			return exitUsage
		}
		settings.Timeout = time.Duration(*timeoutFlag * float64(time.Second))
	}
	if fs.Changed("output-dir") {
		settings.OutputDir = *outputFlag
	}
	if *noDownloadFlag || *printOnlyFlag {
		settings.Download = false
	}
	if *openFlag {
		settings.OpenAfterDownload = true
	}
	if fs.Changed("max-manifest-fetches") {
		settings.MaxManifestFetches = *maxFetchesFlag
	}
	if *verboseFlag {
		settings.LogLevel = "debug"
	}

	log := logging.New(settings.LogLevel, stderr)

	manager := download.NewManager(settings, func(event download.ProgressEvent) {
		switch event.Level {
		case download.LevelVerbose:
			if *verboseFlag {
				fmt.Fprintln(stderr, event.Message)
			}
		case download.LevelWarning, download.LevelError:
			fmt.Fprintln(stderr, event.Message)
		default:
			fmt.Fprintln(stdout, event.Message)
		}
	}, download.WithLogger(log))
	defer manager.Close()

	if _, err := manager.Run(ctx, pageURL); err != nil {
		switch {
		case errors.Is(err, applemusic.ErrInvalidURL):
			fmt.Fprintln(stderr, err)
			return exitUsage
		case ctx.Err() != nil:
			fmt.Fprintln(stderr, "Interrupted.")
			return exitInterrupted
		default:
			fmt.Fprintln(stderr, err)
			return exitFailure
		}
	}

	return exitOK
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "getart - Fetch high-quality Apple Music artwork and motion artwork")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  getart [options] <album URL>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "For interactive mode, use: getart-tui")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Settings can also be given as GETART_* environment variables, e.g. GETART_OUTPUT_DIR.")
}
