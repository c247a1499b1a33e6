package main

import (
	"context"

	"github.com/spf13/cobra"
)

// createRootCommand создает корневую команду с настроенными подкомандами.
// Без подкоманды запускается TUI.
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "playlist [sources...]",
		Short: "A personal playlist manager",
		Long:  `A personal playlist manager: import tracks from files, URLs or S3 and play them one at a time.`,
		RunE: func(_ *cobra.Command, args []string) error {
			return app.launchTUI(args)
		},
		SilenceUsage: true,
	}

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createTUICommand())
	rootCmd.AddCommand(app.createProbeCommand(ctx))
	rootCmd.AddCommand(app.createPlayCommand(ctx))

	return rootCmd
}
