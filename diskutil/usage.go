package diskutil

import (
	"golang.org/x/sys/unix"
)

// GetDiskUsage wraps statfs(2), returning the percentage of blocks free to
// unprivileged users along with the bytes free and used on the filesystem
// holding path.
func GetDiskUsage(path string) (percentBlocksFree float64, bytesFree, bytesUsed uint64, err error) {
	var stat unix.Statfs_t
	if err = unix.Statfs(path, &stat); err != nil {
		return 0, 0, 0, err
	}
	if stat.Blocks == 0 {
		return 0, 0, 0, nil
	}
	percentBlocksFree = float64(stat.Bavail) / float64(stat.Blocks) * 100
	bytesFree = stat.Bavail * uint64(stat.Bsize)
	bytesUsed = (stat.Blocks - stat.Bfree) * uint64(stat.Bsize)
	return percentBlocksFree, bytesFree, bytesUsed, nil
}
