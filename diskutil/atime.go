package diskutil

import (
	"os"
	"time"

	"github.com/djherbis/atime"
)

// GetATime returns the atime for a file, or defaultTime if it cannot be
// read
func GetATime(path string, defaultTime time.Time) time.Time {
	at, err := atime.Stat(path)
	if err != nil {
		return defaultTime
	}
	return at
}

func atimeOf(f os.FileInfo, defaultTime time.Time) time.Time {
	if f.Sys() == nil {
		return defaultTime
	}
	return atime.Get(f)
}
