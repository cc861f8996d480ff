// Package schemas holds the JSON Schema files for resume documents, supplied
// changes and decision maps.
package schemas

import "embed"

// Schema file names.
const (
	Resume    = "resume.schema.json"
	Changes   = "changes.schema.json"
	Decisions = "decisions.schema.json"
)

// Files contains every schema file.
//
//go:embed *.schema.json
var Files embed.FS
