package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive session and blocks until the user quits. The
// context cancels the underlying searches when the program is interrupted.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Session == nil {
		return fmt.Errorf("tui: session is required")
	}
	if cfg.Search == nil {
		return fmt.Errorf("tui: search function is required")
	}

	p := tea.NewProgram(newModel(ctx, cfg), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive session failed: %w", err)
	}
	return nil
}
