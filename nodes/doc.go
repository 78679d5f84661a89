/*
Package nodes implements the mediagraph pipeline nodes.

Each node is a thin adapter: it validates a handful of inputs, calls a
remote generation or analysis API (fal.ai, OpenAI vision, a local Ollama
endpoint), optionally drives ffmpeg for muxing and concatenation, and
returns a file path, string, or image tensor to the host graph.

Failure policy varies by node and is part of each node's contract:

  - File- and video-producing nodes (download, stitch, combine, seedance,
    audio generation) fail terminally: the error propagates and node
    execution stops.
  - Image-producing flux nodes never fail: any error is rendered onto a
    placeholder image so downstream image nodes stay operable, with the
    error text returned as the info output.
  - The music-prompt and vision nodes degrade to a safe default string.

Nothing is retried; every remote or process call is attempted exactly once
per invocation.
*/
package nodes
