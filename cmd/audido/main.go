// Package main is the entry point for audido, a terminal audio player
// with a real-time parametric equalizer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"audido/internal/engine"
	"audido/internal/logging"
	"audido/internal/ui"
)

const defaultSampleRate = 44100

// CLI defines the command-line interface.
type CLI struct {
	Autoplay bool     `help:"Start playing the first track immediately."`
	Mini     bool     `help:"Compact minimal UI with less width."`
	LogFile  string   `help:"Path to the session log file." default:"audido.log"`
	Files    []string `arg:"" name:"files" help:"Audio files or globs to queue." optional:""`
}

func run() error {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("audido"),
		kong.Description("Terminal audio player with a real-time parametric equalizer"),
		kong.UsageOnError(),
	)

	files, err := expandGlobs(cli.Files)
	if err != nil {
		return fmt.Errorf("expand file arguments: %w", err)
	}
	if len(files) == 0 && cli.Autoplay {
		return errors.New("--autoplay requires at least one file argument")
	}

	logger, err := logging.New(cli.LogFile)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logger.Close()

	eng, err := engine.New(defaultSampleRate, logger)
	if err != nil {
		return fmt.Errorf("init audio device: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go eng.Run(ctx)

	if len(files) > 0 {
		eng.Commands() <- engine.Command{Kind: engine.CmdAddToQueue, Paths: files}
		if cli.Autoplay {
			eng.Commands() <- engine.Command{Kind: engine.CmdPlayQueueIndex, Index: 0}
		}
	}

	m := ui.NewModel(eng, logger.Buffer(), cli.Autoplay, cli.Mini)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	return nil
}

// expandGlobs expands shell globs that the invoking shell may not have
// expanded (quoted arguments, Windows shells). Arguments that don't match
// any glob pattern pass through unchanged so a plain, literal filename
// still works.
func expandGlobs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			files = append(files, arg)
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
