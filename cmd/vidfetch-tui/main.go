// vidfetch TUI - terminal client for a vidfetch server.
// Without a terminal, or with -url, it runs in plain mode and prints the
// formats (or downloads one with -format) instead of starting the UI.
package main

import (
	"context"
	"flag"
	"os"

	"golang.org/x/term"

	"github.com/iconidentify/vidfetch/cmd/vidfetch-tui/internal/config"
	"github.com/iconidentify/vidfetch/cmd/vidfetch-tui/internal/ui"
	"github.com/iconidentify/vidfetch/pkg/client"
)

func main() {
	url := flag.String("url", "", "Analyze this URL and print formats instead of starting the UI")
	formatID := flag.String("format", "", "With -url, download this format id into the save directory")
	flag.Parse()

	cfg := config.Load()

	if *url != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		if *url == "" {
			errorColor.Fprintln(os.Stderr, "Error: stdout is not a terminal; pass -url to run in plain mode")
			os.Exit(2)
		}
		c := client.NewClient(cfg.Server, cfg.Timeout)
		if err := runPlain(context.Background(), c, cfg, os.Stdout, *url, *formatID); err != nil {
			errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	app, err := ui.NewApp(cfg)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error initializing TUI: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		errorColor.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
