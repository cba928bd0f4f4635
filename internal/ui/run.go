package ui

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DaanHessen/snappr/internal/engine"
	"github.com/DaanHessen/snappr/internal/text"
	"github.com/DaanHessen/snappr/internal/util"
)

// Run boots the TUI program on sess and blocks until it exits.
func Run(ctx context.Context, sess *engine.Session, cfg util.Config, logger *log.Logger) error {
	seed, err := engine.NewSeed(cfg.SeedText)
	if err != nil {
		return err
	}
	md := text.WithFallback(text.NewMarkdown(cfg.Theme), text.NewPlain())
	m := newModel(ctx, sess, seed.ForSession(cfg.SessionID), md, cfg.Theme, withLogger(logger))
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
