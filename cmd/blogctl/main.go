package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/blogicum/blogicum/internal/db"
	"github.com/blogicum/blogicum/internal/manage"
	"github.com/blogicum/blogicum/pkg/config"
	"github.com/blogicum/blogicum/pkg/logging"
)

const usage = `Usage: blogctl <command> [flags]

Commands:
  migrate                                   create or update the schema
  category add --title T --slug S [--description D] [--hidden]
  category publish SLUG
  category hide SLUG
  category list
  location add --name N [--hidden]
  location list
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()
	logger := logging.GetLogger()

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, manage.New(database), os.Args[1:]); err != nil {
		logger.Error("Command failed", zap.Strings("args", os.Args[1:]), zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, m *manage.Manager, args []string) error {
	switch {
	case args[0] == "migrate":
		return m.Migrate(ctx)
	case len(args) >= 2 && args[0] == "category":
		return runCategory(ctx, m, args[1], args[2:])
	case len(args) >= 2 && args[0] == "location":
		return runLocation(ctx, m, args[1], args[2:])
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
}

func runCategory(ctx context.Context, m *manage.Manager, sub string, args []string) error {
	switch sub {
	case "add":
		flags := pflag.NewFlagSet("category add", pflag.ContinueOnError)
		title := flags.String("title", "", "category title")
		slug := flags.String("slug", "", "unique slug used in /category/<slug>/")
		description := flags.String("description", "", "category description")
		hidden := flags.Bool("hidden", false, "create the category unpublished")
		if err := flags.Parse(args); err != nil {
			return err
		}
		category, err := m.AddCategory(ctx, *title, *slug, *description, !*hidden)
		if err != nil {
			return err
		}
		fmt.Printf("created category %d %s\n", category.ID, category.Slug)
		return nil

	case "publish", "hide":
		if len(args) != 1 {
			return fmt.Errorf("category %s takes exactly one slug", sub)
		}
		return m.SetCategoryPublished(ctx, args[0], sub == "publish")

	case "list":
		categories, err := m.Categories(ctx)
		if err != nil {
			return err
		}
		for _, c := range categories {
			fmt.Printf("%d\t%s\t%s\tpublished=%t\n", c.ID, c.Slug, c.Title, c.IsPublished)
		}
		return nil

	default:
		return fmt.Errorf("unknown category command %q", sub)
	}
}

func runLocation(ctx context.Context, m *manage.Manager, sub string, args []string) error {
	switch sub {
	case "add":
		flags := pflag.NewFlagSet("location add", pflag.ContinueOnError)
		name := flags.String("name", "", "location name")
		hidden := flags.Bool("hidden", false, "create the location unpublished")
		if err := flags.Parse(args); err != nil {
			return err
		}
		location, err := m.AddLocation(ctx, *name, !*hidden)
		if err != nil {
			return err
		}
		fmt.Printf("created location %d %s\n", location.ID, location.Name)
		return nil

	case "list":
		locations, err := m.Locations(ctx)
		if err != nil {
			return err
		}
		for _, l := range locations {
			fmt.Printf("%d\t%s\tpublished=%t\n", l.ID, l.Name, l.IsPublished)
		}
		return nil

	default:
		return fmt.Errorf("unknown location command %q", sub)
	}
}
