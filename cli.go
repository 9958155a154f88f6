// apps/go-server/cli.go
//
// Cobra commands.
//
//	sortlab serve [--port 5175] [--lessons catalog.yaml]
//	sortlab lessons list [--q text] [--category name] [--format text|json]
//	sortlab lessons validate <catalog.yaml>
//	sortlab lessons daily [--date YYYY-MM-DD] [--days N]
//
// Configuration comes from the environment (and .env); flags only
// override the port and the catalog file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/sortlab/apps/go-server/internal/config"
	"github.com/robalobadob/sortlab/apps/go-server/internal/httpserver"
	"github.com/robalobadob/sortlab/apps/go-server/internal/lessons"
	"github.com/robalobadob/sortlab/apps/go-server/internal/store"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	lessonsFile string
	format      string // text | json
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "sortlab",
		Short:         "Sorting-game lesson server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "text" && opts.format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", opts.format)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.lessonsFile, "lessons", "", "lesson catalog YAML (default: LESSONS_FILE or embedded)")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "output format (text|json)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newLessonsCommand(opts))
	return cmd
}

// loadConfig reads config and applies the shared flag overrides.
func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if opts.lessonsFile != "" {
		cfg.LessonsFile = opts.lessonsFile
	}
	return cfg, nil
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// openCatalog loads the configured catalog file into a fresh index.
func openCatalog(ctx context.Context, cfg config.Config) (*lessons.SQLIndex, error) {
	entries, err := lessons.LoadFile(cfg.LessonsFile)
	if err != nil {
		return nil, err
	}
	return lessons.NewIndex(ctx, entries)
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			setupLogging(cfg)
			if cfg.SessionSecret == config.DevSessionSecret {
				log.Warn().Msg("SESSION_SECRET not set; using development secret")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			idx, err := openCatalog(ctx, cfg)
			if err != nil {
				return fmt.Errorf("load lessons: %w", err)
			}
			defer idx.Close()

			srv := httpserver.New(cfg, store.NewMemoryStore(), idx)
			log.Info().Str("port", cfg.Port).Msg("starting go-server")
			return srv.Start(ctx, cfg.Addr())
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default: PORT or 5175)")
	return cmd
}

func newLessonsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lessons",
		Short: "Inspect lesson catalogs",
	}
	cmd.AddCommand(newLessonsListCommand(opts))
	cmd.AddCommand(newLessonsValidateCommand(opts))
	cmd.AddCommand(newLessonsDailyCommand(opts))
	return cmd
}

func newLessonsListCommand(opts *rootOptions) *cobra.Command {
	var q lessons.Query
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List lessons in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			idx, err := openCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer idx.Close()

			list, err := idx.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printSummaries(cmd.OutOrStdout(), opts.format, list)
		},
	}
	cmd.Flags().StringVar(&q.Text, "q", "", "search title and description")
	cmd.Flags().StringVar(&q.Category, "category", "", "exact category")
	return cmd
}

func newLessonsValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog.yaml>",
		Short: "Check that every lesson in a catalog file is playable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := lessons.LoadFile(args[0])
			if err != nil {
				return err
			}
			if opts.format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"valid": true, "lessons": len(entries)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d lessons\n", len(entries))
			return nil
		},
	}
}

func newLessonsDailyCommand(opts *rootOptions) *cobra.Command {
	var (
		date string
		days int
	)
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show the lesson of the day (or the next few days)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			from := time.Now().UTC()
			if date != "" {
				if from, err = time.Parse(lessons.DayLayout, date); err != nil {
					return fmt.Errorf("--date: %w", err)
				}
			}
			idx, err := openCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer idx.Close()

			picks, err := lessons.Schedule(cmd.Context(), idx, from, days, cfg.DailySalt)
			if err != nil {
				return err
			}
			if opts.format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(picks)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tID\tTITLE")
			for _, p := range picks {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Date, p.Lesson.ID, p.Lesson.Title)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "first day (YYYY-MM-DD, default today UTC)")
	cmd.Flags().IntVar(&days, "days", 1, "number of days to show")
	return cmd
}

func printSummaries(w io.Writer, format string, list []lessons.Summary) error {
	if format == "json" {
		if list == nil {
			list = []lessons.Summary{}
		}
		return json.NewEncoder(w).Encode(list)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tITEMS\tTITLE")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.Category, s.ItemCount, s.Title)
	}
	return tw.Flush()
}
