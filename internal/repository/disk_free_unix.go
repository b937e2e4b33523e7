//go:build !windows

package repository

import (
	"golang.org/x/sys/unix"
)

func freeDiskSpace(path string) int64 {
	var fs unix.Statfs_t
	if err := unix.Statfs(path, &fs); err != nil {
		return 0
	}

	return int64(fs.Bavail) * int64(fs.Bsize)
}
