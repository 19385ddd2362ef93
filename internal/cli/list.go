package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mrlokans/readinglist/internal/config"
	"github.com/mrlokans/readinglist/internal/entities"
)

// ListCommand prints the reading list, optionally filtered.
type ListCommand struct {
	DatabasePath string
	Query        string
	Status       string

	Out io.Writer
}

// NewListCommand creates a new ListCommand
func NewListCommand() *ListCommand {
	return &ListCommand{Out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *ListCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the reading list database")
	fs.StringVar(&cmd.Query, "q", "", "Only show books whose title or author contains this text")
	fs.StringVar(&cmd.Status, "status", "", "Only show books with this status (planning, reading, done)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s list [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the reading list, newest first.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Status != "" {
		if _, err := entities.ParseStatus(cmd.Status); err != nil {
			return err
		}
	}

	return nil
}

// Run executes the list command
func (cmd *ListCommand) Run() error {
	ctx := context.Background()
	out := stdoutIfNil(cmd.Out)

	svc, db, err := openCatalogue(ctx, cmd.DatabasePath, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	books := svc.Books()
	if cmd.Query != "" || cmd.Status != "" {
		var status entities.Status
		if cmd.Status != "" {
			status, _ = entities.ParseStatus(cmd.Status)
		}
		books, err = svc.Search(ctx, cmd.Query, status)
		if err != nil {
			return fmt.Errorf("failed to search books: %w", err)
		}
	}

	if len(books) == 0 {
		fmt.Fprintln(out, "No books found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tSTATUS")
	for _, b := range books {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.ID, b.Title, b.DisplayAuthor(), b.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d books\n", len(books))
	return nil
}
