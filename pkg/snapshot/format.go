package snapshot

import (
	"path/filepath"
	"strings"
	"time"
)

// Format is the encoding of a snapshot artifact.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "YAML"
	default:
		return "JSON"
	}
}

// FormatFromPath picks the format from a file extension. Anything that is not
// .yaml or .yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ExportFilename is the default artifact name for an export taken at now.
func ExportFilename(now time.Time) string {
	return "grove-notes-" + now.Format("2006-01-02") + ".json"
}
