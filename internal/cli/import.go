package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/readinglist/internal/catalogue"
	"github.com/mrlokans/readinglist/internal/config"
	"github.com/mrlokans/readinglist/internal/gutendex"
)

// ImportCommand merges the remote catalogue into the local reading list.
type ImportCommand struct {
	DatabasePath string
	BaseURL      string
	Timeout      time.Duration

	Out io.Writer
}

// NewImportCommand creates a new ImportCommand
func NewImportCommand() *ImportCommand {
	return &ImportCommand{Out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the reading list database")
	fs.StringVar(&cmd.BaseURL, "url", config.DefaultImportURL, "Base URL of the Gutendex-compatible catalogue")
	fs.DurationVar(&cmd.Timeout, "timeout", gutendex.DefaultTimeout, "HTTP timeout for the catalogue request")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch books from the remote catalogue and add those whose title\n")
		fmt.Fprintf(os.Stderr, "is not already on the reading list.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the import command
func (cmd *ImportCommand) Run() error {
	ctx := context.Background()
	out := stdoutIfNil(cmd.Out)

	client := gutendex.NewClient(
		gutendex.WithBaseURL(cmd.BaseURL),
		gutendex.WithTimeout(cmd.Timeout),
	)

	svc, db, err := openCatalogue(ctx, cmd.DatabasePath, client)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(out, "Importing from %s\n", cmd.BaseURL)

	result, err := svc.Import(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", catalogue.UserMessage(err), err)
	}

	fmt.Fprintf(out, "Fetched: %d\nAdded:   %d\nSkipped: %d\n", result.Fetched, result.Added, result.Skipped)
	fmt.Fprintf(out, "Reading list now has %d books\n", len(svc.Books()))
	return nil
}
