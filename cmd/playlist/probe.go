package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/errmsg"
	"github.com/hazadus/go-playlist/internal/utils"
)

// createProbeCommand создает команду probe с привязкой к экземпляру приложения
func (app *Application) createProbeCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "probe [file path or URL]",
		Short: "Show what the playlist would import from a source",
		Long:  `Import a source into a temporary library copy, print its tags and content type, then discard the copy.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.probe(ctx, cmd.OutOrStdout(), args[0])
		},
	}
}

func (app *Application) probe(ctx context.Context, out io.Writer, source string) error {
	app.SetProgress(progressPrinter(out))
	defer app.SetProgress(nil)

	result, err := app.Importer.Import(ctx, source)
	if err != nil {
		fmt.Fprintln(out)
		if result.ContentType != "" {
			fmt.Fprintf(out, "📄 Тип содержимого: %s\n", result.ContentType)
		}
		return errors.New(errmsg.FormatWith(errmsg.OpTrackAdd, source, err))
	}
	// Копия нужна только для чтения тегов
	defer os.Remove(result.Ref)

	artist := result.Artist
	if artist == "" {
		artist = data.UnknownArtist
	}
	title := result.Title
	if title == "" {
		title = data.UntitledTrack
	}

	fmt.Fprintf(out, "\n🔎 Источник: %s\n", source)
	fmt.Fprintf(out, "   Исполнитель: %s\n", artist)
	fmt.Fprintf(out, "   Название: %s\n", title)
	if result.Album != "" {
		fmt.Fprintf(out, "   Альбом: %s\n", result.Album)
	}
	fmt.Fprintf(out, "   Тип содержимого: %s\n", result.ContentType)
	fmt.Fprintf(out, "   Размер: %s\n", utils.FormatSize(result.Size))
	return nil
}

// progressPrinter выводит прогресс копирования в одну строку
func progressPrinter(out io.Writer) func(done, total int64) {
	return func(done, total int64) {
		if total > 0 {
			fmt.Fprintf(out, "\r📥 Загрузка: %s / %s", utils.FormatSize(done), utils.FormatSize(total))
			return
		}
		fmt.Fprintf(out, "\r📥 Загрузка: %s", utils.FormatSize(done))
	}
}
