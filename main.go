package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	app "github.com/rocketscienceinc/tictactoe-web/internal"
	"github.com/rocketscienceinc/tictactoe-web/internal/config"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-web/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-web/internal/tui"
)

var ErrNotTerminal = errors.New("play needs an interactive terminal")

var configPath string

// main - is the entry point of the application. It parses the command line and runs the chosen command.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "tictactoe",
		Short:        "Tic Tac Toe server and terminal client",
		SilenceUsage: true,
		RunE:         runServeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: ./config.yml)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the browser game over HTTP and WebSocket",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "play",
		Short: "Play a local game in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runPlayCmd,
	})

	return rootCmd
}

func runServeCmd(_ *cobra.Command, _ []string) error {
	conf := initConfig()
	logger := initLogger(conf)

	if err := app.RunApp(logger, conf); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}

	return nil
}

func runPlayCmd(_ *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}

	controller := tictactoe.NewGameController(time.Now)
	model := tui.NewModel(controller, entity.NewSession(pkg.GenerateNewSessionID()))

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}

// initialize config.
func initConfig() *config.Config {
	if configPath != "" {
		return config.MustLoad(configPath)
	}

	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}

	return config.MustLoad(filepath.Join(baseDir, "./config.yml"))
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
