//go:build !unix

package main

import "errors"

// MapRegion is only available on unix; other platforms use heap regions.
func MapRegion(name, path string, size int) (*Region, error) {
	return nil, errors.New("file-backed shared regions are not supported on this platform")
}
