package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/sharedctx/internal/config"
	"github.com/user/sharedctx/internal/state"
	"github.com/user/sharedctx/internal/types"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "sharedctx",
	Short:         "Inspect and edit shared collaboration sessions",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	setupLogging(cfg)
	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openStore builds the session store described by the loaded config.
func openStore() (*state.SessionStore, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	var opts []state.Option
	if cfg.Locking {
		opts = append(opts, state.WithLocking())
	}
	return state.NewSessionStore(state.NewFileStorage(cfg.ContextDir), opts...), cfg, nil
}

// parsePayload decodes raw as JSON, falling back to the literal string.
func parsePayload(raw string) any {
	if raw == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func parseMetadata(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("metadata must be a JSON object: %w", err)
	}
	return m, nil
}

func parseActor(raw string) (types.Actor, error) {
	a := types.Actor(strings.ToLower(raw))
	if !a.Valid() {
		return "", fmt.Errorf("unknown actor %q (want claude, codex or user)", raw)
	}
	return a, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

const timeLayout = "2006-01-02 15:04:05"
