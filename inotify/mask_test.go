//go:build linux

package inotify

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventMaskLaws(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a, b := EventMask(r.Uint32()), EventMask(r.Uint32())
		if i%4 == 0 {
			b = a | EventMask(r.Uint32()&0xff)
		}
		x := a.Intersect(b)
		require.True(t, x.IsSubset(a))
		require.True(t, x.IsSubset(b))
		require.Equal(t, a.IsSubset(b), x == a)
		require.Equal(t, a.HasOverlap(b), x != 0)
		require.Equal(t, a.Union(b), b.Union(a))
		require.Equal(t, x, b.Intersect(a))
	}
}

func TestConfigMaskLaws(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		a, b, c := ConfigMask(r.Uint32()), ConfigMask(r.Uint32()), ConfigMask(r.Uint32())
		x := a.Intersect(b)
		require.True(t, x.IsSubset(a))
		require.True(t, x.IsSubset(b))
		require.Equal(t, a.IsSubset(b), x == a)
		require.Equal(t, a.HasOverlap(b), x != 0)
		require.Equal(t, a.Union(b).Union(c), a.Union(b.Union(c)))
		require.Equal(t, a.Intersect(b).Intersect(c), a.Intersect(b.Intersect(c)))
	}
}

func TestConfigMaskEvents(t *testing.T) {
	m := InCreate | InMovedTo | InOnlyDir | InOneShot
	require.Equal(t, EvCreate|EvMovedTo, m.Events())
	require.False(t, m.Events().HasOverlap(EvIgnored|EvIsDir))
}

func TestMaskString(t *testing.T) {
	require.Equal(t, "0", EventMask(0).String())
	require.Equal(t, "CREATE|ISDIR", (EvCreate | EvIsDir).String())
	require.Equal(t, "OPEN|ONLYDIR", (InOpen | InOnlyDir).String())
	require.Equal(t, "MODIFY|0x1000000", (EvModify | 0x1000000).String())
}

func TestParseConfigMask(t *testing.T) {
	m, err := ParseConfigMask("create, close_write|MOVE onlydir")
	require.NoError(t, err)
	require.Equal(t, InCreate|InCloseWrite|InMovedFrom|InMovedTo|InOnlyDir, m)

	m, err = ParseConfigMask("all")
	require.NoError(t, err)
	require.Equal(t, InAllEvents, m)

	_, err = ParseConfigMask("create,bogus")
	require.Error(t, err)
	_, err = ParseConfigMask("onlydir")
	require.Error(t, err)
	_, err = ParseConfigMask("")
	require.Error(t, err)
}
