package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/skilltest/internal/exam"
	"github.com/pavelanni/skilltest/internal/handler"
	appI18n "github.com/pavelanni/skilltest/internal/i18n"
	"github.com/pavelanni/skilltest/internal/pool"
	"github.com/pavelanni/skilltest/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "skilltest",
		Short: "Skill assessment test service",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `skilltest --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP test server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":5000", "HTTP listen address")
	f.String("store", "memory", "Session store backend (memory, sqlite)")
	f.String("db", "skilltest.db", "SQLite database path (store=sqlite)")
	f.StringP("questions", "q", "", "Path to a JSON question catalog (default: built-in catalog)")
	f.StringP("lang", "l", "en", "Default language for prompts and messages (en, ru)")
	f.StringSlice("cors-origins", []string{"*"}, "Allowed cross-origin callers (repeatable)")
	f.Int("code-length", exam.DefaultCodeLength, "Length of generated test codes")
	f.Float64("pass-threshold", exam.DefaultPassThreshold, "Minimum score ratio for a Pass")
	f.Bool("redact-answers", false, "Hide correct answers from the candidate-facing test endpoint")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored tests and submissions as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "skilltest.db", "SQLite database path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("SKILLTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("skilltest")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/skilltest")
	v.AddConfigPath("/etc/skilltest")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// backend is a store that holds both sessions and submissions.
type backend interface {
	store.SessionStore
	store.SubmissionLog
}

// openBackend returns the configured store and a func that releases it.
func openBackend(kind, dbPath string) (backend, func() error, error) {
	switch strings.ToLower(kind) {
	case "", "memory":
		return store.NewMemory(), func() error { return nil }, nil
	case "sqlite":
		s, err := store.New(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (want memory or sqlite)", kind)
	}
}

func loadPool(path string) (pool.Provider, error) {
	if path == "" {
		return pool.Default(), nil
	}
	c, err := pool.LoadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded question catalog", "path", path, "count", c.Size())
	return c, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, closeDB, err := openBackend(v.GetString("store"), v.GetString("db"))
	if err != nil {
		return err
	}
	defer closeDB()

	questions, err := loadPool(v.GetString("questions"))
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	svc := exam.NewService(db, db, questions, exam.Config{
		CodeLength:    v.GetInt("code-length"),
		PassThreshold: v.GetFloat64("pass-threshold"),
	})
	h := handler.New(svc, handler.Config{
		RedactAnswers: v.GetBool("redact-answers"),
	})
	origins := v.GetStringSlice("cors-origins")

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"store", v.GetString("store"),
		"lang", lang,
		"pool_size", questions.Size(),
		"cors_origins", origins,
		"redact_answers", v.GetBool("redact-answers"),
	)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler.NewRouter(h, lang, origins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	export, err := store.Export(db, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	slog.Info("exported results", "sessions", len(export.Sessions), "submissions", len(export.Submissions))
	return nil
}
