package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/callqa/internal/callcheck"
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		timeout = flag.Duration("timeout", callcheck.DefaultTimeout, "HTTP request timeout")
		asJSON  = flag.Bool("json", false, "Print the raw result JSON instead of the scorecard")
		logFile = flag.String("log", "", "Also write log output to this file")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help || flag.NArg() != 1 {
		callcheck.ShowHelp()
		if !*help {
			os.Exit(2)
		}
		return
	}

	if err := callcheck.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config := &callcheck.Config{
		BaseURL:   *baseURL,
		AudioFile: flag.Arg(0),
		Timeout:   *timeout,
		LogFile:   *logFile,
		JSON:      *asJSON,
		Verbose:   *verbose,
	}

	if _, err := callcheck.Run(ctx, config, os.Stdout); err != nil {
		os.Stderr.WriteString("Evaluation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
