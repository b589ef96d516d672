// Command librovore queries structured documentation sites (Sphinx,
// MkDocs, rustdoc, pydoctor) by name, either as a CLI or as an MCP
// server over stdio. All business logic lives in internal/ and
// cmd/librovore; this file only hands off to the CLI surface.
package main

import (
	"os"

	"github.com/librovore/librovore/cmd/librovore"
)

func main() {
	os.Exit(librovore.Execute())
}
