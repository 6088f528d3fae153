package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "widgetpad",
	Short: "widgetpad - compose labels, buttons and links, export HTML/CSS/JS",
	Long: `widgetpad is a terminal canvas for composing simple UI widgets.

Drop labels, buttons and hyperlinks on the canvas, tune their text and
style in the property panel, then export the composition as HTML, CSS,
JavaScript and a JSON snapshot.

Run without arguments to start the interactive editor.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(configPath)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.Log, verbose, cmd == cmd.Root())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEditor()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the composer over HTTP",
	Long: `Runs the element registry, selection bridge and export pipeline
behind a JSON API. All requests share one canvas.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "widgetpad %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.config/widgetpad/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runEditor() error {
	p := tea.NewProgram(newModel(cfg, logger), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := NewServer(cfg, logger)
	return srv.Run(ctx, addr)
}
