// Package main provides the HTTP server and maintenance commands of keystroke-engine.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/keystroke-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/keystroke-engine/internal/adapters/wordlist"
	"github.com/comitanigiacomo/keystroke-engine/internal/config"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/textgen"
)

var (
	flagPort    string
	flagStorage string

	genWords    int
	genMinLen   int
	genMaxLen   int
	genWordlist string
	genLang     string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "keystroke-engine",
		Short:        "Typing practice statistics and adaptive text service",
		SilenceUsage: true,
		RunE:         runServeCmd,
	}

	addServeFlags(rootCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	addServeFlags(serveCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newGenerateCmd())

	return rootCmd
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagPort, "port", "", "listen port (overrides PORT)")
	cmd.Flags().StringVar(&flagStorage, "storage", "", "storage backend: postgres or memory (overrides STORAGE)")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringFlag(cmd, "port", &cfg.Port, flagPort)
	applyStringFlag(cmd, "storage", &cfg.Storage, flagStorage)
	return cfg, nil
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	return serve(cfg)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := sqlx.Connect("pgx", cfg.Database.DSN())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := repository.Migrate(ctx, db); err != nil {
				return err
			}
			log.Println("Schema is up to date.")
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a uniformly sampled practice text from the word list",
		Args:  cobra.NoArgs,
		RunE:  runGenerateCmd,
	}

	cmd.Flags().IntVar(&genWords, "words", 0, "words per text (default from config)")
	cmd.Flags().IntVar(&genMinLen, "min-len", 0, "minimum word length (default from config)")
	cmd.Flags().IntVar(&genMaxLen, "max-len", 0, "maximum word length (default from config)")
	cmd.Flags().StringVar(&genWordlist, "wordlist", "", "word list file, one word per line")
	cmd.Flags().StringVar(&genLang, "lang", "", "word list language")

	return cmd
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyIntFlag(cmd, "words", &cfg.Practice.WordLimit, genWords)
	applyIntFlag(cmd, "min-len", &cfg.Practice.MinLen, genMinLen)
	applyIntFlag(cmd, "max-len", &cfg.Practice.MaxLen, genMaxLen)
	applyStringFlag(cmd, "wordlist", &cfg.Practice.WordlistPath, genWordlist)
	applyStringFlag(cmd, "lang", &cfg.Practice.Lang, genLang)

	words, err := wordlist.NewCorpus(cfg.Practice.WordlistPath, cfg.Practice.Lang).Words()
	if err != nil {
		return err
	}

	text, err := textgen.New().Generate(words, nil, textgen.Options{
		WordLimit: cfg.Practice.WordLimit,
		MinLen:    cfg.Practice.MinLen,
		MaxLen:    cfg.Practice.MaxLen,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

func applyStringFlag(cmd *cobra.Command, name string, dst *string, value string) {
	if cmd.Flags().Changed(name) {
		*dst = value
	}
}

func applyIntFlag(cmd *cobra.Command, name string, dst *int, value int) {
	if cmd.Flags().Changed(name) {
		*dst = value
	}
}
