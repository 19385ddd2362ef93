package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/readinglist/internal/catalogue"
	"github.com/mrlokans/readinglist/internal/config"
)

// AddCommand adds a single book to the reading list.
type AddCommand struct {
	DatabasePath string
	Title        string
	Author       string

	Out io.Writer
}

// NewAddCommand creates a new AddCommand
func NewAddCommand() *AddCommand {
	return &AddCommand{Out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *AddCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the reading list database")
	fs.StringVar(&cmd.Title, "title", "", "Book title (required)")
	fs.StringVar(&cmd.Author, "author", "", "Book author")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s add -title <title> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Add a book to the reading list with status planning.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s add -title \"Dune\" -author \"Frank Herbert\"\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(cmd.Title) == "" {
		return fmt.Errorf("-title is required")
	}

	return nil
}

// Run executes the add command
func (cmd *AddCommand) Run() error {
	ctx := context.Background()
	out := stdoutIfNil(cmd.Out)

	svc, db, err := openCatalogue(ctx, cmd.DatabasePath, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := svc.Add(ctx, cmd.Title, cmd.Author)
	if err != nil {
		return fmt.Errorf("%s: %w", catalogue.UserMessage(err), err)
	}

	book, _ := svc.Find(id)
	fmt.Fprintf(out, "Added #%d %q by %s\n", id, book.Title, book.DisplayAuthor())
	return nil
}
