package main

import (
	"os"

	"video-transcriber/cmd/transcribe/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
