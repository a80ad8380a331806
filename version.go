package netspec

import _ "embed"

// Version is the release of the netspec module, read from the VERSION file.
//
//go:embed VERSION
var Version string
