// prism - CPU rasterizer for the terminal
// Render glTF models with perspective-correct texturing, normal mapping and
// Lambert/Phong shading, entirely on the CPU.
//
// Viewer controls:
//
//	W/S, Up/Down     - Move forward/back
//	A/D, Left/Right  - Strafe
//	R/F              - Move up/down
//	Shift            - Move faster
//	Mouse drag       - Look around
//	Scroll           - Move forward/back
//	F4               - Toggle depth view
//	F5               - Toggle turntable rotation
//	F6               - Toggle normal mapping
//	F7               - Cycle shading mode
//	F8               - Cycle render mode
//	Esc, Ctrl+C      - Quit
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/prism/pkg/config"
	"github.com/taigrr/prism/pkg/render"
)

type rootOptions struct {
	configPath string
	logLevel   string
	overrides  overrides
}

func main() {
	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "prism",
		Short: "CPU triangle rasterizer for the terminal",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger(opts.logLevel)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML settings file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	opts.overrides.register(cmd.PersistentFlags())

	cmd.AddCommand(
		newViewCmd(opts),
		newRenderCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

func setupLogger(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// loadConfig reads the settings file, if any, and applies flag overrides.
func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.Config{}, err
		}
	}
	o.overrides.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return config.Write(cmd.OutOrStdout(), cfg)
		},
	}
}
