package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/netspec"
	"github.com/aretw0/netspec/internal/cli"
	"github.com/aretw0/netspec/internal/config"
	"github.com/aretw0/netspec/internal/logging"
	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/observability"
	"github.com/aretw0/netspec/pkg/registry"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app bundles what a command needs once flags and environment are resolved.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	catalog *netspec.Catalog
	close   func() error
}

// loadSettings reads NETSPEC_* variables, then applies the flags that were set.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"store":      &cfg.Store,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level, cfg.LogFormat), nil
}

// loadRegistry returns the stock registry, extended from a YAML file if path is set.
func loadRegistry(path string) (*registry.Registry, error) {
	r := registry.Default()
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	if err := r.LoadYAML(data); err != nil {
		return nil, fmt.Errorf("load registry %s: %w", path, err)
	}
	return r, nil
}

// openApp resolves settings and builds a Catalog. Commands that only work on
// files pass useStore=false and get an in-memory store.
func openApp(cmd *cobra.Command, useStore bool, metrics *observability.Metrics) (*app, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	regPath, _ := cmd.Flags().GetString("registry")
	reg, err := loadRegistry(regPath)
	if err != nil {
		return nil, err
	}

	uri := "mem://"
	if useStore {
		uri = cfg.Store
	}
	store, closeFn, err := cli.OpenStore(uri, cli.StoreOptions{
		Redis:    cfg.Redis,
		Logger:   logger,
		Metrics:  metrics,
		Validate: cfg.ValidateOnSave,
		Registry: reg,
	})
	if err != nil {
		return nil, err
	}

	opts := []netspec.Option{
		netspec.WithStore(store),
		netspec.WithRegistry(reg),
		netspec.WithLogger(logger),
		netspec.WithMetrics(metrics),
	}
	if selfLinks, _ := cmd.Flags().GetBool("allow-self-links"); selfLinks {
		opts = append(opts, netspec.WithSelfLinks())
	}
	cat, err := netspec.New("", opts...)
	if err != nil {
		closeFn()
		return nil, err
	}
	logger.Debug("catalog ready", "store", uri)
	return &app{cfg: cfg, logger: logger, catalog: cat, close: closeFn}, nil
}

// inputFormat picks the format from the flag, then the file extension.
// Standard input defaults to YAML.
func inputFormat(path, name string) (codec.Format, error) {
	if name != "" {
		return codec.ParseFormat(name)
	}
	if path == "-" {
		return codec.YAML, nil
	}
	return codec.FormatFromPath(path)
}

// readInput reads a file, or in when path is "-".
func readInput(in io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(path)
}

func readMessage(in io.Reader, path, format string, m spec.Message) error {
	f, err := inputFormat(path, format)
	if err != nil {
		return err
	}
	data, err := readInput(in, path)
	if err != nil {
		return err
	}
	return codec.Unmarshal(f, data, m)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
