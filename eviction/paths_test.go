//go:build linux

package eviction

import (
	"testing"

	"github.com/hawkingrei/inostream/inotify"
	"github.com/stretchr/testify/require"
)

func TestWatchPaths(t *testing.T) {
	p := newWatchPaths()
	p.add(1, "/mnt/kubernetes-disks-bazel/disk3/")
	p.add(2, "/data1/bazel/cache")

	actual, ok := p.resolve(inotify.Event{Watch: 1, Name: "2c389379-351c-4b6d-a402-ad03b7b7d449"})
	require.True(t, ok)
	require.Equal(t, "/mnt/kubernetes-disks-bazel/disk3/2c389379-351c-4b6d-a402-ad03b7b7d449", actual)

	actual, ok = p.resolve(inotify.Event{Watch: 2, Mask: inotify.EvDeleteSelf})
	require.True(t, ok)
	require.Equal(t, "/data1/bazel/cache", actual)

	p.remove(2)
	_, ok = p.resolve(inotify.Event{Watch: 2})
	require.False(t, ok)
	_, ok = p.resolve(inotify.Event{Watch: 3, Name: "x"})
	require.False(t, ok)
}
