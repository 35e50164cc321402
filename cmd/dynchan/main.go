package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rmacdonaldsmith/dynchan-go/internal/config"
	"github.com/rmacdonaldsmith/dynchan-go/internal/logging"
	"github.com/rmacdonaldsmith/dynchan-go/internal/node"
)

const (
	// Application info
	appName    = "dynchan"
	appVersion = "0.1.0"
)

type options struct {
	configPath  string
	nodeID      string
	grpcListen  string
	httpListen  string
	logLevel    string
	checkConfig bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Dynamic channel daemon",
		Long: `dynchan runs the dynamic channel facade over an in-process link layer and
exposes it on a gRPC control surface and, when enabled, an HTTP API.

Configuration is read from --config, $DYNCHAN_CONFIG or dynchan.yaml, and
every key can be overridden by a DYNCHAN_ prefixed environment variable.`,
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), out, opts)
		},
	}
	cmd.SetOut(out)
	cmd.SetVersionTemplate(fmt.Sprintf("%s v{{.Version}}\n", appName))

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to the YAML config file")
	flags.StringVar(&opts.nodeID, "node-id", "", "Override the node identifier")
	flags.StringVar(&opts.grpcListen, "grpc-listen", "", "Override the gRPC listen address")
	flags.StringVar(&opts.httpListen, "http-listen", "", "Override the HTTP listen address and enable the HTTP API")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
	flags.BoolVar(&opts.checkConfig, "check-config", false, "Validate the configuration, print a summary and exit")

	return cmd
}

func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.nodeID != "" {
		cfg.NodeID = opts.nodeID
	}
	if opts.grpcListen != "" {
		cfg.GRPC.Listen = opts.grpcListen
	}
	if opts.httpListen != "" {
		cfg.HTTP.Enabled = true
		cfg.HTTP.Listen = opts.httpListen
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, out io.Writer, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.checkConfig {
		printSummary(out, cfg)
		return nil
	}

	logger, level, err := logging.SetupLevel(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if path := configFile(opts); path != "" {
		w, err := config.NewWatcher(path, func(next *config.Config) {
			reloadLogLevel(logger, level, opts, next)
		}, logger)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			logger.Warn("config reload disabled", zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	logger.Info("starting",
		zap.String("app", appName),
		zap.String("version", appVersion),
		zap.String("node_id", cfg.NodeID),
		zap.String("address", cfg.Address),
		zap.String("grpc", cfg.GRPC.Listen),
		zap.Bool("http", cfg.HTTP.Enabled),
	)

	n, err := node.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create node: %w", err)
	}
	defer func() {
		if err := n.Close(); err != nil {
			logger.Warn("error closing node", zap.Error(err))
		}
	}()

	if err := n.Run(ctx); err != nil {
		return err
	}
	logger.Info("stopped", zap.String("node_id", cfg.NodeID))
	return nil
}

// configFile is the explicitly chosen config file, if any
func configFile(opts options) string {
	if opts.configPath != "" {
		return opts.configPath
	}
	return os.Getenv(config.EnvPrefix + "_CONFIG")
}

// reloadLogLevel applies a changed log level from the config file unless
// --log-level pinned it
func reloadLogLevel(logger *zap.Logger, level zap.AtomicLevel, opts options, next *config.Config) {
	if opts.logLevel != "" {
		return
	}
	parsed, err := logging.ParseLevel(next.Log.Level)
	if err != nil || parsed.Level() == level.Level() {
		return
	}
	logger.Info("log level changed",
		zap.Stringer("from", level.Level()),
		zap.Stringer("to", parsed.Level()))
	level.SetLevel(parsed.Level())
}

func printSummary(out io.Writer, cfg *config.Config) {
	fmt.Fprintf(out, "Node ID: %s\n", cfg.NodeID)
	fmt.Fprintf(out, "Address: %s\n", cfg.Address)
	fmt.Fprintf(out, "gRPC: %s\n", cfg.GRPC.Listen)
	if cfg.HTTP.Enabled {
		fmt.Fprintf(out, "HTTP: %s (auth: %t)\n", cfg.HTTP.Listen, !cfg.HTTP.NoAuth)
	} else {
		fmt.Fprintln(out, "HTTP: disabled")
	}
	fmt.Fprintf(out, "Services: %v\n", cfg.Services)
	fmt.Fprintf(out, "Peers: %d\n", len(cfg.Peers))
	for _, p := range cfg.Peers {
		fmt.Fprintf(out, "  %s services=%v echo=%t\n", p.Address, p.Services, p.Echo)
	}
}
