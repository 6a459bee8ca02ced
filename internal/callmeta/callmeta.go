// Package callmeta extracts call metadata from recording filenames and
// folder names. Dialer exports name files as
// "AgentName _ timestamp _ phone _ disposition" with " _ " as the field
// separator; older exports carry only "AgentName _ phone" or a bare stem.
package callmeta

import (
	"path/filepath"
	"regexp"
	"strings"
)

// fieldSeparator is the literal separator between filename fields.
const fieldSeparator = " _ "

// Meta is the metadata recovered from one recording's path, in display form.
type Meta struct {
	AgentName   string
	Timestamp   string
	PhoneNumber string
	Disposition string
	DialerName  string
}

// timePattern matches the dialer's underscore-separated clock rendering,
// e.g. "10_30am".
var timePattern = regexp.MustCompile(`(\d{1,2})_(\d{2})\s?(am|pm)`)

// dialerPattern captures the token after the last space of a folder name.
var dialerPattern = regexp.MustCompile(`.*\s(\S+)$`)

// camelBoundary finds the positions where a display space is inserted:
// before each upper-case letter that follows a lower-case letter or digit.
var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// ParseFile extracts metadata from a recording path. The parent directory
// supplies the dialer name; the filename stem supplies the rest.
func ParseFile(path string) Meta {
	meta := ParseStem(stem(path))
	meta.DialerName = ParseDialer(filepath.Base(filepath.Dir(path)))
	return meta
}

// ParseStem parses a filename stem (no directory, no extension) against the
// known field layouts: four fields, two fields, or a bare agent name.
func ParseStem(s string) Meta {
	parts := strings.Split(s, fieldSeparator)
	switch len(parts) {
	case 4:
		return Meta{
			AgentName:   DisplayAgentName(parts[0]),
			Timestamp:   DisplayTimestamp(parts[1]),
			PhoneNumber: strings.TrimSpace(parts[2]),
			Disposition: strings.TrimSpace(parts[3]),
		}
	case 2:
		return Meta{
			AgentName:   DisplayAgentName(parts[0]),
			PhoneNumber: strings.TrimSpace(parts[1]),
		}
	default:
		return Meta{AgentName: DisplayAgentName(s)}
	}
}

// ParseDialer extracts the dialer name from a folder name: the suffix after
// the last space. Folder names without a space carry no dialer.
func ParseDialer(folder string) string {
	m := dialerPattern.FindStringSubmatch(strings.TrimSpace(folder))
	if m == nil {
		return ""
	}
	return m[1]
}

// DisplayAgentName renders a CamelCase agent run with spaces, e.g.
// "JohnSmith" → "John Smith". Already-spaced names pass through.
func DisplayAgentName(name string) string {
	name = strings.TrimSpace(name)
	return camelBoundary.ReplaceAllString(name, "$1 $2")
}

// DisplayTimestamp rewrites the dialer's "HH_MMam" clock rendering to
// "HH:MMam". Other timestamp content is preserved as-is.
func DisplayTimestamp(ts string) string {
	return timePattern.ReplaceAllString(strings.TrimSpace(ts), "$1:$2$3")
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
