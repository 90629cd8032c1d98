package fable

import _ "embed"

// Version is the release of the fable module and CLI.
//
//go:embed VERSION
var Version string
