package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"inventaris/internal/logging"
	"inventaris/internal/tui"
)

func (e *env) uiCommand() *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "interactive terminal dashboard",
		Action: func(c *cli.Context) error {
			m := tui.New(tui.NewClientBackend(e.client), tui.Options{
				Lang:    e.cfg.UI.Lang,
				Timeout: e.cfg.API.Timeout,
				Logger:  logging.New("tui"),
			})
			p := tea.NewProgram(m, tea.WithContext(c.Context))
			e.onLogout = func() { go p.Send(tui.LogoutMsg{}) }
			defer func() { e.onLogout = nil }()

			_, err := p.Run()
			return err
		},
	}
}
