// mediagraph is the command-line companion to the node library: it exposes
// the media assembly and prompt helpers directly, without a host graph.
//
// Usage:
//
//	mediagraph nodes                          # list registered node types
//	mediagraph stitch a.mp4 b.mp4 --audio m.mp3
//	mediagraph download <url>                 # save a generated video
//	mediagraph music-prompt image.png         # image -> music prompt
//	mediagraph version
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
