//go:build unix

// shm_mmap_unix.go - File-backed shared regions for an out-of-process host

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func init() {
	compiledFeatures = append(compiledFeatures, "shm:mmap")
}

// MapRegion maps path as a MAP_SHARED region of exactly size bytes, creating or
// growing the file as needed. Another process mapping the same file sees the
// same cursors and payload.
func MapRegion(name, path string, size int) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open %s region: %w", name, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s region: %w", name, err)
	}
	if st.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			return nil, fmt.Errorf("size %s region: %w", name, err)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s region: %w", name, err)
	}
	return &Region{name: name, data: data, unmap: unix.Munmap}, nil
}
