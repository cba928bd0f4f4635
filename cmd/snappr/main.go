package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/DaanHessen/snappr/internal/catalog"
	"github.com/DaanHessen/snappr/internal/engine"
	"github.com/DaanHessen/snappr/internal/store"
	"github.com/DaanHessen/snappr/internal/ui"
	"github.com/DaanHessen/snappr/internal/util"
)

var version = "0.1.0-alpha"

func main() {
	cfg, err := util.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:     "snappr",
		Short:   "Narrative puzzle sequence in the terminal",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Normalize()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return play(cmd.Context(), cfg)
		},
		SilenceUsage: true,
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Backend, "backend", cfg.Backend, "state backend: memory|bolt|sqlite|postgres")
	flags.StringVar(&cfg.Path, "path", cfg.Path, "database file for bolt and sqlite")
	flags.StringVar(&cfg.DSN, "dsn", cfg.DSN, "PostgreSQL DSN")
	flags.StringVar(&cfg.SessionID, "session", cfg.SessionID, "session id (random if empty)")
	flags.BoolVar(&cfg.Compress, "compress", cfg.Compress, "zstd-compress stored records")
	flags.Float64Var(&cfg.TimeScale, "time-scale", cfg.TimeScale, "multiplier for every narrative delay")
	flags.StringVar(&cfg.Theme, "theme", cfg.Theme, "dark|light")
	flags.StringVar(&cfg.SeedText, "seed", cfg.SeedText, "board seed (defaults to the session id)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "play",
		Short: "Open the hub and play",
		RunE: func(cmd *cobra.Command, args []string) error {
			return play(cmd.Context(), cfg)
		},
	})
	rootCmd.AddCommand(statusCmd(&cfg))
	rootCmd.AddCommand(resetCmd(&cfg))
	rootCmd.AddCommand(migrateCmd(&cfg))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("snappr", version)
		},
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openLog sends logs to the configured file while the TUI owns the terminal.
func openLog(path string) (*log.Logger, func()) {
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return log.New(io.Discard, "", 0), func() {}
	}
	return log.New(f, "snappr ", log.LstdFlags), func() { _ = f.Close() }
}

func play(ctx context.Context, cfg util.Config) error {
	logger, closeLog := openLog(cfg.LogFile)
	defer closeLog()

	cat, err := catalog.Load(cfg.TimeScale)
	if err != nil {
		return err
	}
	rs, err := store.OpenRecordStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer rs.Close()

	sess, err := engine.NewSession(rs, engine.NewScheduler(time.Now()), cat, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Printf("session %s on %s", cfg.SessionID, cfg.Backend)
	if err := ui.Run(ctx, sess, cfg, logger); err != nil {
		return err
	}
	fmt.Println(sessionLine(cfg))
	return nil
}

// sessionLine names the session, with a resume hint only when the record
// outlives the process.
func sessionLine(cfg util.Config) string {
	if !cfg.Durable() {
		return fmt.Sprintf("Session: %s (memory backend, progress is not kept)", cfg.SessionID)
	}
	return fmt.Sprintf("Session: %s (resume with --backend %s --session %s)", cfg.SessionID, cfg.Backend, cfg.SessionID)
}

func statusCmd(cfg *util.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show progression for a session",
		Long:  "Show progression for a session. Needs a durable backend (bolt, sqlite or postgres); the memory backend starts empty.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rs, err := store.OpenRecordStore(ctx, *cfg, log.New(os.Stderr, "", 0))
			if err != nil {
				return err
			}
			defer rs.Close()
			rec, ok := rs.Load(ctx)
			fmt.Printf("Session: %s (%s)\n", cfg.SessionID, cfg.Backend)
			if !ok {
				fmt.Println(color.New(color.FgYellow).Sprint("(no saved progress)"))
				return nil
			}
			fmt.Printf("Narrative stage: %d\n", rec.NarrativeStage)
			fmt.Printf("Active view: %s\n", rec.Active)
			fmt.Println()
			for _, id := range engine.AllPuzzles {
				mark := color.New(color.FgYellow).Sprint("·")
				if rec.Completed[id] {
					mark = color.New(color.FgGreen).Sprint("✓")
				}
				fmt.Printf("  %s %s\n", mark, id)
			}
			if sigs := rec.PendingSignals(); len(sigs) > 0 {
				fmt.Printf("\nPending signals: %v\n", sigs)
			}
			if n := len(rec.Outbox); n > 0 {
				fmt.Printf("Messages in flight: %d\n", n)
			}
			if nav := rec.PendingNav; nav != nil {
				fmt.Printf("Pending route: %s → %s\n", nav.From, nav.To)
			}
			return nil
		},
	}
}

func resetCmd(cfg *util.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved record for a session",
		Long:  "Delete the saved record for a session. Needs a durable backend (bolt, sqlite or postgres).",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rs, err := store.OpenRecordStore(ctx, *cfg, log.New(os.Stderr, "", 0))
			if err != nil {
				return err
			}
			defer rs.Close()
			if err := rs.Clear(ctx); err != nil {
				return err
			}
			fmt.Printf("Session %s reset %s\n", cfg.SessionID, color.New(color.FgGreen).Sprint("OK"))
			return nil
		},
	}
}

func migrateCmd(cfg *util.Config) *cobra.Command {
	run := func(up bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if cfg.DSN == "" {
				return fmt.Errorf("migrate needs DATABASE_URL or --dsn")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			migrator, err := store.NewMigrator(cfg.DSN)
			if err != nil {
				return err
			}
			if up {
				err = migrator.Up(ctx)
			} else {
				err = migrator.Down(ctx)
			}
			if err != nil && err != store.ErrNoChange {
				return err
			}
			if up {
				fmt.Println("Migrations applied")
			} else {
				fmt.Println("Migrations rolled back")
			}
			return nil
		}
	}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the postgres schema",
	}
	cmd.AddCommand(&cobra.Command{Use: "up", Short: "Apply migrations", RunE: run(true)})
	cmd.AddCommand(&cobra.Command{Use: "down", Short: "Roll back migrations", RunE: run(false)})
	return cmd
}
