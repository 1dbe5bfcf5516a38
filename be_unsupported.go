//go:build !(amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm)

package main

// Shared-memory views reinterpret host bytes as native int32/float32, which
// assumes little-endian byte order.
var _ = "IntuitionSynth requires a little-endian architecture" + 1
