package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matze/zk-spaced/internal/cards"
	"github.com/matze/zk-spaced/internal/config"
	"github.com/matze/zk-spaced/internal/logging"
	"github.com/matze/zk-spaced/internal/spacedrep"
	"github.com/matze/zk-spaced/internal/store"
)

// env is what every command needs: settings, a logger and the backend.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	backend store.Backend
}

func (e *env) Close() {
	_ = e.backend.Close()
	_ = e.log.Sync()
}

// setup loads configuration, applies flag overrides and opens the backend.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve state path: %w", err)
	}
	backend, err := store.OpenBackend(cfg.Storage.Backend, dbPath)
	if err != nil {
		return nil, err
	}
	log.Debug("backend opened",
		zap.String("command", cmd.Name()),
		zap.String("backend", cfg.Storage.Backend),
		zap.String("location", backend.Location()),
	)

	return &env{cfg: cfg, log: log, backend: backend}, nil
}

// loadConfig reads the config file and environment, then lets flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"backend", &cfg.Storage.Backend},
		{"log-file", &cfg.Log.File},
		{"log-level", &cfg.Log.Level},
		{"notes", &cfg.Input.Notes},
		{"pattern", &cfg.Input.Pattern},
		{"format", &cfg.Input.Format},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.dst, _ = cmd.Flags().GetString(o.flag)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDBPath returns the snapshot path using --db (highest priority),
// then the configured path (which ZKSPACED_DB feeds), then the XDG default.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path, store.EnsureDir(cfg.Storage.Path)
	}
	return store.DefaultPath(cfg.Storage.Backend)
}

// readItems loads the cards: from a notes directory when one is configured,
// else from the --input card list.
func readItems(cmd *cobra.Command, cfg *config.Config) ([]spacedrep.Item, error) {
	if cfg.Input.Notes != "" {
		return cards.ScanDir(cfg.Input.Notes, cfg.Input.Pattern)
	}

	input, _ := cmd.Flags().GetString("input")
	format, err := inputFormat(cmd, cfg, input)
	if err != nil {
		return nil, err
	}

	if input == "-" || input == "" {
		return cards.Decode(cmd.InOrStdin(), "stdin", format)
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, &cards.MalformedError{Source: input, Err: err}
	}
	defer f.Close()
	return cards.Decode(f, input, format)
}

// inputFormat prefers --format, then a .yaml/.yml extension, then config.
func inputFormat(cmd *cobra.Command, cfg *config.Config, input string) (cards.Format, error) {
	if !cmd.Flags().Changed("format") {
		switch strings.ToLower(filepath.Ext(input)) {
		case ".yaml", ".yml":
			return cards.FormatYAML, nil
		}
	}
	return cards.ParseFormat(cfg.Input.Format)
}

// openStore reads the cards and opens the state store over them at now.
func (e *env) openStore(ctx context.Context, cmd *cobra.Command, now time.Time) (*spacedrep.Store, error) {
	items, err := readItems(cmd, e.cfg)
	if err != nil {
		return nil, err
	}
	e.log.Debug("cards read", zap.Int("count", len(items)))
	return spacedrep.Open(ctx, e.backend, now, items)
}

// readsStdin reports whether the card list comes from stdin.
func readsStdin(cmd *cobra.Command, cfg *config.Config) bool {
	if cfg.Input.Notes != "" {
		return false
	}
	input, _ := cmd.Flags().GetString("input")
	return input == "-" || input == ""
}

func printf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}
