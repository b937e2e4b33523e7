package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/iconidentify/vidfetch/cmd/vidfetch-tui/internal/config"
	"github.com/iconidentify/vidfetch/pkg/client"
)

var (
	titleColor = color.New(color.FgHiWhite, color.Bold)
	savedColor = color.New(color.FgHiGreen)
	errorColor = color.New(color.FgHiRed, color.Bold)
)

// runPlain analyzes url and prints a format table, or downloads formatID
// when it is set.
func runPlain(ctx context.Context, c *client.Client, cfg *config.Config, out io.Writer, url, formatID string) error {
	if formatID != "" {
		d, err := c.Download(ctx, url, formatID)
		if err != nil {
			return fmt.Errorf("download: %w", err)
		}
		path, n, err := c.Save(ctx, d, cfg.SaveDir)
		if err != nil {
			return fmt.Errorf("save: %w", err)
		}
		savedColor.Fprintf(out, "Saved %q to %s (%s)\n", d.Title, path, humanize.Bytes(uint64(n)))
		return nil
	}

	info, err := c.Analyze(ctx, url)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	titleColor.Fprintln(out, info.Title)
	fmt.Fprintf(out, "Uploader: %s\n\n", info.Uploader)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tQUALITY\tFORMAT\tSIZE")
	for _, f := range info.Formats {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.FormatID, f.Quality, f.Container, f.Size)
	}
	return tw.Flush()
}
