package jotter

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version is the released version of jotter.
var Version = strings.TrimSpace(rawVersion)
