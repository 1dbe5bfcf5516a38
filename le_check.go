//go:build amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm

// le_check.go - IntuitionSynth requires a little-endian architecture.
//
// The fx queue and the sample ring are read as native int32/float32 views of
// host memory the control side writes in little-endian order. This file
// compiles on known LE targets; be_unsupported.go fails the build elsewhere.

package main
