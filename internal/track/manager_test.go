package track

import (
	"context"
	"io"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazadus/go-playlist/internal/audio"
	"github.com/hazadus/go-playlist/internal/catalog"
	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/importer"
	"github.com/hazadus/go-playlist/internal/session"
)

const waitTimeout = 2 * time.Second

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// stubImporter возвращает ссылку, равную источнику
type stubImporter struct{}

func (stubImporter) Import(ctx context.Context, source string) (importer.Result, error) {
	return importer.Result{Ref: source, ContentType: "audio/mpeg"}, nil
}

func newTestManager(t *testing.T) (*Manager, *audio.Mock) {
	t.Helper()
	mock := audio.NewMock()
	m := NewManager(catalog.New(stubImporter{}), session.New(mock))
	t.Cleanup(func() { _ = m.Close() })
	return m, mock
}

func add(t *testing.T, m *Manager, name string) data.Track {
	t.Helper()
	track, err := m.Add(context.Background(), name+".mp3", name)
	require.NoError(t, err)
	return track
}

func play(t *testing.T, m *Manager, id string) {
	t.Helper()
	f, err := m.Play(id)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(t, f.Wait(ctx))
}

func TestAddAndList(t *testing.T) {
	m, _ := newTestManager(t)
	add(t, m, "Lo-fi Beats")
	add(t, m, "Piano Sonata")
	add(t, m, "lofi chill")

	m.Catalog().SetSearchText("LO")
	tracks := m.ListTracks()
	require.Len(t, tracks, 2)
	assert.Equal(t, "Lo-fi Beats", tracks[0].Name)
	assert.Equal(t, "lofi chill", tracks[1].Name)
}

func TestPlayUnknownTrack(t *testing.T) {
	m, mock := newTestManager(t)

	_, err := m.Play("missing")
	var notFound *catalog.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, mock.AcquireCalls())
}

func TestRemovePlayingTrackStopsSession(t *testing.T) {
	m, mock := newTestManager(t)
	track := add(t, m, "Now")
	other := add(t, m, "Later")
	play(t, m, track.ID)

	removed := m.Remove(track.ID)
	assert.Equal(t, []string{track.ID}, removed)

	require.Eventually(t, func() bool {
		snap := m.Session().Snapshot()
		return snap.State == session.Idle && snap.ActiveTrackID == "" && mock.Live() == 0
	}, waitTimeout, time.Millisecond)

	_, ok := m.Catalog().Track(track.ID)
	assert.False(t, ok)
	_, ok = m.Catalog().Track(other.ID)
	assert.True(t, ok)
}

func TestRemoveOtherTrackKeepsPlaying(t *testing.T) {
	m, _ := newTestManager(t)
	track := add(t, m, "Now")
	other := add(t, m, "Other")
	play(t, m, track.ID)

	m.Remove(other.ID)

	// Пустая команда гарантирует, что очередь сессии обработана
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(t, m.Resume().Wait(ctx))
	assert.Equal(t, session.Playing, m.Session().State())
	assert.Equal(t, track.ID, m.Session().ActiveTrackID())
}

func TestRemoveSelectedStopsPlayingTrack(t *testing.T) {
	m, _ := newTestManager(t)
	a := add(t, m, "A")
	b := add(t, m, "B")
	play(t, m, b.ID)

	m.Catalog().ToggleSelect(a.ID)
	m.Catalog().ToggleSelect(b.ID)
	assert.Len(t, m.RemoveSelected(), 2)

	require.Eventually(t, func() bool {
		return m.Session().State() == session.Idle
	}, waitTimeout, time.Millisecond)
	assert.Empty(t, m.ListTracks())
}

func TestConcurrentPlayAndRemoveNeverLeavesDeletedTrackActive(t *testing.T) {
	m, _ := newTestManager(t)

	for i := 0; i < 200; i++ {
		track := add(t, m, "Race")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = m.Play(track.ID)
		}()
		go func() {
			defer wg.Done()
			m.Remove(track.ID)
		}()
		wg.Wait()

		// Resume встает в очередь последним: после него все команды обработаны
		ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
		require.NoError(t, m.Resume().Wait(ctx))
		cancel()

		require.NotEqual(t, track.ID, m.Session().ActiveTrackID(),
			"итерация %d: удаленный трек остался активным", i)
	}
}

func TestEditFlow(t *testing.T) {
	m, _ := newTestManager(t)
	track := add(t, m, "Draft Me")

	draft, err := m.BeginEdit(track.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft Me", draft.Name)

	m.Edit().SetName("Renamed")
	m.Edit().SetArtist("Band")
	require.NoError(t, m.CommitEdit())

	got, _ := m.Catalog().Track(track.ID)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "Band", got.Artist)

	_, err = m.BeginEdit("missing")
	var notFound *catalog.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCancelEdit(t *testing.T) {
	m, _ := newTestManager(t)
	track := add(t, m, "Stable")

	_, err := m.BeginEdit(track.ID)
	require.NoError(t, err)
	m.Edit().SetName("Discarded")
	m.CancelEdit()

	assert.ErrorIs(t, m.CommitEdit(), catalog.ErrNoDraft)
	got, _ := m.Catalog().Track(track.ID)
	assert.Equal(t, "Stable", got.Name)
}

func TestRenameWhilePlayingKeepsSession(t *testing.T) {
	m, _ := newTestManager(t)
	track := add(t, m, "Before")
	play(t, m, track.ID)

	require.NoError(t, m.Rename(track.ID, "After", "Artist"))
	assert.Equal(t, session.Playing, m.Session().State())
	assert.Equal(t, track.ID, m.Session().ActiveTrackID())
}
