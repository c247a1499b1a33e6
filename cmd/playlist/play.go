package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/errmsg"
	"github.com/hazadus/go-playlist/internal/session"
	"github.com/hazadus/go-playlist/internal/utils"
)

// progressInterval - период вывода позиции воспроизведения
const progressInterval = time.Second

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "play [file path or URL]",
		Short: "Import a source and play it once",
		Long:  `Import an audio file from a local path, http(s) URL or s3:// link and play it until it ends or Ctrl+C is pressed.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.play(ctx, cmd.OutOrStdout(), args[0])
		},
	}
}

func (app *Application) play(ctx context.Context, out io.Writer, source string) error {
	app.SetProgress(progressPrinter(out))
	t, err := app.Manager.Add(ctx, source, "")
	app.SetProgress(nil)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpTrackAdd, source, err))
	}
	// Копия в библиотеке нужна только на время воспроизведения
	defer app.discard(t)

	sub := app.Manager.Session().Subscribe()

	future, err := app.Manager.Play(t.ID)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaybackStart, t.Name, err))
	}
	if err := future.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(out, "\n🚫 Воспроизведение прервано")
			return nil
		}
		return errors.New(errmsg.FormatWith(errmsg.OpPlaybackStart, t.Name, err))
	}

	snap := app.Manager.Session().Snapshot()

	// Выводим информацию о треке
	fmt.Fprintf(out, "\n🎵 Сейчас играет:\n")
	fmt.Fprintf(out, "   Исполнитель: %s\n", t.Artist)
	fmt.Fprintf(out, "   Название: %s\n", t.Name)
	if t.Album != "" {
		fmt.Fprintf(out, "   Альбом: %s\n", t.Album)
	}
	fmt.Fprintf(out, "   Продолжительность: %s\n", utils.FormatDuration(snap.Duration))
	fmt.Fprintln(out)

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	started := false
	for {
		select {
		case <-ctx.Done():
			app.Manager.Stop()
			fmt.Fprintln(out, "\n🚫 Воспроизведение прервано")
			return nil

		case <-sub.Done:
			return nil

		case event := <-sub.Errors:
			return errors.New(errmsg.FormatWith(errmsg.OpPlaybackStart, t.Name, event.Err))

		case snap := <-sub.Changed:
			// В очереди могут остаться снимки до начала воспроизведения
			if snap.State.IsActive() {
				started = true
				continue
			}
			if started && !snap.IsPending() {
				fmt.Fprintln(out, "\n✅ Воспроизведение завершено")
				return nil
			}

		case <-ticker.C:
			snap := app.Manager.Session().Snapshot()
			if snap.State == session.Playing {
				fmt.Fprintf(out, "\r⏱️  Прогресс: %s", utils.FormatProgress(snap.Position, snap.Duration))
			}
		}
	}
}

// discard останавливает воспроизведение и удаляет трек вместе с копией
func (app *Application) discard(t data.Track) {
	_ = app.Manager.Stop().Wait(context.Background())
	app.Manager.Remove(t.ID)
	if err := os.Remove(t.SourceRef); err != nil && !os.IsNotExist(err) {
		log.Printf("Ошибка удаления копии %s: %v", t.SourceRef, err)
	}
}
