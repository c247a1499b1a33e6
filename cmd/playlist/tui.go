package main

import (
	"github.com/spf13/cobra"

	"github.com/hazadus/go-playlist/internal/tui"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [sources...]",
		Short: "Launch TUI (Terminal User Interface)",
		Long:  `Launch interactive terminal user interface. Sources given as arguments are added to the playlist on start.`,
		RunE: func(_ *cobra.Command, args []string) error {
			return app.launchTUI(args)
		},
	}
}

func (app *Application) launchTUI(sources []string) error {
	tuiApp := tui.NewApp(app.Manager, app.Profile, sources...)
	return tuiApp.Run()
}
