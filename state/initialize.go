package state

import (
	_ "embed"
	"time"
)

// Preamble used when neither the command line nor the node metadata name one.
//
//go:embed default_preamble.tex
var defaultPreamble []byte

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:           time.Now(),
		DefaultPreamble: defaultPreamble,
	}
}
