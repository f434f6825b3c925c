//go:build linux

package inotify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openWatched(t *testing.T, mask ConfigMask) (*Channel, Watch, string) {
	t.Helper()
	dir := t.TempDir()
	c, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	w, err := c.AddWatch(dir, mask)
	require.NoError(t, err)
	return c, w, dir
}

func readWithTimeout(t *testing.T, c *Channel) Event {
	t.Helper()
	type result struct {
		ev  Event
		err error
	}
	ch := make(chan result, 1)
	go func() {
		ev, err := c.ReadEvent()
		ch <- result{ev, err}
	}()
	select {
	case r := <-ch:
		require.NoError(t, r.err)
		return r.ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an event")
		return Event{}
	}
}

func TestChannelCreate(t *testing.T) {
	c, w, dir := openWatched(t, InCreate)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "created.txt"), nil, 0o644))

	ev := readWithTimeout(t, c)
	require.Equal(t, w, ev.Watch)
	require.True(t, ev.HasEvent(EvCreate))
	require.Equal(t, "created.txt", ev.Name)
}

func TestChannelRenameCookie(t *testing.T) {
	c, w, dir := openWatched(t, InMove)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "from"), nil, 0o644))
	require.NoError(t, os.Rename(filepath.Join(dir, "from"), filepath.Join(dir, "to")))

	from := readWithTimeout(t, c)
	to := readWithTimeout(t, c)
	require.Equal(t, w, from.Watch)
	require.Equal(t, EvMovedFrom, from.Mask)
	require.Equal(t, "from", from.Name)
	require.Equal(t, EvMovedTo, to.Mask)
	require.Equal(t, "to", to.Name)
	require.NotZero(t, from.Cookie)
	require.Equal(t, from.Cookie, to.Cookie)
}

func TestChannelDirectoryEvent(t *testing.T) {
	c, _, dir := openWatched(t, InCreate)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	ev := readWithTimeout(t, c)
	require.Equal(t, EvCreate|EvIsDir, ev.Mask)
	require.Equal(t, "sub", ev.Name)
}

func TestChannelRemoveWatch(t *testing.T) {
	c, w, _ := openWatched(t, InCreate)
	require.NoError(t, c.RemoveWatch(w))

	ev := readWithTimeout(t, c)
	require.Equal(t, w, ev.Watch)
	require.True(t, ev.HasEvent(EvIgnored))

	// The watch is gone; removing it again is not an error.
	require.NoError(t, c.RemoveWatch(w))
}

func TestChannelAddWatchMissingPath(t *testing.T) {
	c, err := Open()
	require.NoError(t, err)
	defer c.Close()

	_, err = c.AddWatch(filepath.Join(t.TempDir(), "missing"), InCreate)
	var oe *OSError
	require.ErrorAs(t, err, &oe)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestChannelTryReadEvent(t *testing.T) {
	c, _, dir := openWatched(t, InCreate)

	_, ok, err := c.TryReadEvent()
	require.NoError(t, err)
	require.False(t, ok)

	for _, name := range []string{"a", "b"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	var names []string
	require.Eventually(t, func() bool {
		ev, ok, err := c.TryReadEvent()
		if err == nil && ok {
			names = append(names, ev.Name)
		}
		return len(names) == 2
	}, 5*time.Second, time.Millisecond)
	require.Equal(t, []string{"a", "b"}, names)
}
