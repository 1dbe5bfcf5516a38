package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"slices"
)

// Version is set at link time with -ldflags "-X main.Version=...".
var Version = "dev"

// compiledFeatures is filled by init() in build-tagged files.
var compiledFeatures []string

func printFeatures(w io.Writer) {
	fmt.Fprintf(w, "Intuition Synth %s\n", Version)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
	fmt.Fprintf(w, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "  Defaults:   %d Hz, ring %d samples\n\n", SAMPLE_RATE, RING_BUFFER_SIZE)

	fmt.Fprintln(w, "Compiled features:")
	features := slices.Sorted(slices.Values(compiledFeatures))
	if len(features) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, f := range features {
		fmt.Fprintf(w, "  %s\n", f)
	}

	if info, ok := debug.ReadBuildInfo(); ok && len(info.Deps) > 0 {
		fmt.Fprintln(w, "\nModules:")
		for _, dep := range info.Deps {
			fmt.Fprintf(w, "  %s %s\n", dep.Path, dep.Version)
		}
	}
}
