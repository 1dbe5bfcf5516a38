//go:build !unix

package main

import "os"

const pollableStdin = false

func readKeys(fd int, stop <-chan struct{}, keys KeyHandler) {
	buf := make([]byte, 16)
	for {
		n, err := os.Stdin.Read(buf)
		select {
		case <-stop:
			return
		default:
		}
		for _, b := range buf[:n] {
			keys.HandleKey(b)
		}
		if err != nil {
			return
		}
	}
}
