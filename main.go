// apps/go-server/main.go
//
// Entrypoint for the sortlab server binary.
// Responsibilities:
//   - Build the CLI (serve, lessons list/validate/daily).
//   - Exit non-zero on any command error.

package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
