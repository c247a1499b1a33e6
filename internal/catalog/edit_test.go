package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditBufferCommit(t *testing.T) {
	c := New(newFakeImporter())
	tracks := addTracks(t, c, "Original")
	buf := NewEditBuffer()

	draft := buf.Begin(tracks[0])
	assert.Equal(t, "Original", draft.Name)
	assert.True(t, buf.Active())

	buf.SetName("Edited")
	buf.SetArtist("Someone")
	require.NoError(t, buf.Commit(c))

	got, _ := c.Track(tracks[0].ID)
	assert.Equal(t, "Edited", got.Name)
	assert.Equal(t, "Someone", got.Artist)
	assert.False(t, buf.Active())
}

func TestEditBufferLastBeginWins(t *testing.T) {
	c := New(newFakeImporter())
	tracks := addTracks(t, c, "First", "Second")
	buf := NewEditBuffer()

	buf.Begin(tracks[0])
	buf.SetName("Lost")
	buf.Begin(tracks[1])
	buf.SetName("Kept")
	require.NoError(t, buf.Commit(c))

	first, _ := c.Track(tracks[0].ID)
	second, _ := c.Track(tracks[1].ID)
	assert.Equal(t, "First", first.Name)
	assert.Equal(t, "Kept", second.Name)
}

func TestEditBufferStaleCommit(t *testing.T) {
	c := New(newFakeImporter())
	tracks := addTracks(t, c, "Doomed")
	buf := NewEditBuffer()

	buf.Begin(tracks[0])
	c.Remove(tracks[0].ID)

	var notFound *NotFoundError
	require.ErrorAs(t, buf.Commit(c), &notFound)
	assert.True(t, buf.Active(), "черновик остается после ошибки")
}

func TestEditBufferCancelAndEmpty(t *testing.T) {
	c := New(newFakeImporter())
	tracks := addTracks(t, c, "Stay")
	buf := NewEditBuffer()

	assert.ErrorIs(t, buf.Commit(c), ErrNoDraft)

	buf.Begin(tracks[0])
	buf.SetName("Changed")
	buf.Cancel()

	_, ok := buf.Draft()
	assert.False(t, ok)
	got, _ := c.Track(tracks[0].ID)
	assert.Equal(t, "Stay", got.Name)

	// Изменения без черновика игнорируются
	buf.SetName("Ignored")
	assert.False(t, buf.Active())
}
