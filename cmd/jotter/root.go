package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
	"github.com/aretw0/jotter/internal/config"
	"github.com/aretw0/jotter/internal/platform"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	adapter    string
	data       string
	key        string
	remoteURL  string
	verbose    bool
	ephemeral  bool

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "jotter",
		Short: "A small notes store with write-through persistence",
		Long: `jotter keeps a list of notes, writes every change through to a storage
adapter (fs, sqlite, redis, s3 or memory) and can pull sample notes from a
remote JSON endpoint.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if g.verbose {
				level = slog.LevelDebug
			}
			g.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(g.logger)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Config file (default: jotter.yaml at the project root)")
	pf.StringVar(&g.adapter, "adapter", "", "Storage adapter: fs, sqlite, redis, s3, memory")
	pf.StringVar(&g.data, "data", "", "Adapter location: directory, database file, redis URL or bucket")
	pf.StringVar(&g.key, "key", "", "Storage key holding the notes snapshot")
	pf.StringVar(&g.remoteURL, "remote-url", "", "Endpoint used by refresh")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&g.ephemeral, "ephemeral", false, "Keep notes in memory only")

	rootCmd.AddCommand(
		newAddCmd(g),
		newListCmd(g),
		newShowCmd(g),
		newEditCmd(g),
		newRmCmd(g),
		newRefreshCmd(g),
		newClearCmd(g),
		newWatchCmd(g),
		newStateCmd(g),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig resolves the effective configuration for cmd.
func (g *globals) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	src := config.Source{File: g.configPath, Required: g.configPath != "", EnvFile: ".env"}
	if src.File == "" {
		root := wd
		if found, err := jotter.FindRoot(wd); err == nil {
			root = found
		}
		src.File = filepath.Join(root, platform.ConfigFileName)
		src.EnvFile = filepath.Join(root, ".env")
	}

	cfg, err := config.Load(src)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("adapter") {
		cfg.Adapter = g.adapter
	}
	if flags.Changed("data") {
		cfg.Data = g.data
	}
	if flags.Changed("key") {
		cfg.Key = g.key
	}
	if flags.Changed("remote-url") {
		cfg.Remote.URL = g.remoteURL
	}
	if g.ephemeral {
		cfg.Adapter = jotter.AdapterMemory
	}

	if cfg.Data == "" {
		switch cfg.Adapter {
		case jotter.AdapterFS:
			cfg.Data = jotter.DefaultDataPath(wd)
		case jotter.AdapterSQLite:
			cfg.Data = filepath.Join(jotter.DefaultDataPath(wd), "jotter.db")
		case jotter.AdapterRedis:
			cfg.Data = "redis://localhost:6379/0"
		}
	}
	return cfg, nil
}

// open builds the notebook for a command.
func (g *globals) open(cmd *cobra.Command) (*jotter.Notebook, error) {
	cfg, err := g.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	nb, err := jotter.New(cmd.Context(), cfg.Data, cfg.Options(g.logger)...)
	if err != nil {
		return nil, fmt.Errorf("failed to open notebook: %w", err)
	}
	return nb, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid note id %q", arg)
	}
	return id, nil
}
