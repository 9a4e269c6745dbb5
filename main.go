package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/snipline/snipline/internal/cli"
	apperrors "github.com/snipline/snipline/internal/errors"
	"github.com/snipline/snipline/internal/service"
	"github.com/snipline/snipline/internal/storage"
	"github.com/snipline/snipline/internal/ui"
)

func main() {
	dir := flag.String("dir", storage.Dir(), "data directory")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: snipline [-dir path] [command]")
		fmt.Fprintln(os.Stderr, "run with no command for the TUI; 'snipline help' lists commands")
		flag.PrintDefaults()
	}
	flag.Parse()

	svc, err := service.New(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", apperrors.GetAppError(err).Message)
		os.Exit(1)
	}

	if args := flag.Args(); len(args) > 0 {
		code := cli.New(svc, os.Stdout, os.Stderr).Run(args)
		svc.Close()
		os.Exit(code)
	}

	program := tea.NewProgram(ui.New(svc), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		svc.Close()
		os.Exit(1)
	}
	svc.Close()
}
