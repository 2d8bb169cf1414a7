// Package cmd implements the pcs command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papapumpkin/pcs/internal/cib"
	"github.com/papapumpkin/pcs/internal/config"
	"github.com/papapumpkin/pcs/internal/logging"
	"github.com/papapumpkin/pcs/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:           "pcs",
	Short:         "Inspect a pacemaker cluster configuration",
	Long:          "pcs reads the cluster information base (CIB) of a pacemaker cluster, live or from a file, and explains how its resources relate.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.New().Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .pcs.yaml)")
	rootCmd.PersistentFlags().StringP("file", "f", "", "read the CIB from a file instead of the live cluster (- for stdin)")
	rootCmd.PersistentFlags().Bool("debug", false, "debug logging")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn or error")

	_ = viper.BindPFlag("cib_file", rootCmd.PersistentFlags().Lookup("file"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".pcs")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("PCS")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// loadConfig resolves configuration and builds the logger for a command.
func loadConfig() (config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logging.New(cfg.Debug, cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

// cibSource describes where commands read the CIB from.
func cibSource(cfg config.Config, stdin io.Reader, log *zap.SugaredLogger) cib.Source {
	return cib.Source{
		File:  cfg.CIBFile,
		Stdin: stdin,
		Live:  cib.NewCibadmin(cfg.CibadminPath, log),
	}
}

// newPrinter returns a printer bound to the command's output streams.
func newPrinter(cmd *cobra.Command) *ui.Printer {
	p := ui.New()
	p.Out = cmd.OutOrStdout()
	if w := cmd.ErrOrStderr(); w != os.Stderr {
		p.Err = w
	}
	return p
}

// setupSignalContext returns a context that is canceled on SIGINT or SIGTERM.
func setupSignalContext(parent context.Context, printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			printer.Info("\nshutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
