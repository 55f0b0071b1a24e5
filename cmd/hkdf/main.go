package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type Config struct {
	LogLevel  string   `toml:"log_level"`
	LogFormat string   `toml:"log_format"`
	Encoding  string   `toml:"encoding"`
	Vectors   []string `toml:"vectors"`
}

func (c *Config) merge(o Config) {
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.Encoding != "" {
		c.Encoding = o.Encoding
	}
	if len(o.Vectors) > 0 {
		c.Vectors = o.Vectors
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hkdf",
		Short:         "hkdf derives keys with HKDF-SHA256 (RFC 5869)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var flags globalFlags
	cmd.PersistentFlags().StringVar(&flags.file, "config", "", "config file to load")
	cmd.PersistentFlags().StringVar(&flags.cfg.LogLevel, "log-level", "", "log level to use")
	cmd.PersistentFlags().StringVar(&flags.cfg.LogFormat, "log-format", "", "log formatter to use")

	cmd.AddCommand(deriveCmd(&flags))
	cmd.AddCommand(verifyCmd(&flags))
	cmd.AddCommand(benchCmd(&flags))

	return cmd
}

type globalFlags struct {
	file string
	cfg  Config
}

// load reads the config file, then applies flag overrides.
func (g *globalFlags) load(overrides Config) (Config, *slog.Logger, error) {
	cfg, err := loadConfig(g.file)
	if err != nil {
		return cfg, nil, err
	}
	cfg.merge(g.cfg)
	cfg.merge(overrides)

	logger, err := logger(cfg)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

func loadConfig(file string) (Config, error) {
	var cfg Config
	if file == "" {
		return cfg, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return cfg, errors.Wrap(err, "opening config")
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec = dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "decoding config %s", file)
	}
	return cfg, nil
}

func logger(cfg Config) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	case "info", "":
		logLevel = slog.LevelInfo
	default:
		return nil, errors.Errorf("'%s' is not a valid log level (one of debug|info|warn|error)", cfg.LogLevel)
	}

	switch cfg.LogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		})), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		})), nil
	default:
		return nil, errors.Errorf("'%s' is not a valid log format (one of json|text)", cfg.LogFormat)
	}
}
