// Package identity derives a stable (id, title) pair for each corpus
// document, from a metadata table when one exists or from the filename
// convention <id>_<title-with-dashes>.txt otherwise.
package identity

import (
	"path/filepath"
	"strings"
)

// Identity is the resolved identity of a single document.
type Identity struct {
	// DocID is the document identifier. Empty when the filename carries
	// no id segment and the metadata table has no entry.
	DocID string

	// Title is the human-readable title.
	Title string

	// Filename is the base filename the identity was resolved from. It is
	// the join key between the corpus and the metadata table and must be
	// unique within a corpus.
	Filename string
}

// Resolve resolves the identity for filename.
//
// A metadata table entry keyed by the base filename wins verbatim. Otherwise
// the filename (without extension) is split on the first underscore: the left
// segment becomes the id, the right segment becomes the title with dashes
// replaced by spaces. Without an underscore the id is empty and the whole
// base name becomes the title.
func Resolve(filename string, table Table) Identity {
	base := filepath.Base(filename)

	if entry, ok := table[base]; ok {
		return Identity{DocID: entry.DocID, Title: entry.Title, Filename: base}
	}

	name := strings.TrimSuffix(base, filepath.Ext(base))

	id, title, found := strings.Cut(name, "_")
	if !found {
		return Identity{Title: dashesToSpaces(name), Filename: base}
	}
	return Identity{DocID: id, Title: dashesToSpaces(title), Filename: base}
}

func dashesToSpaces(s string) string {
	return strings.ReplaceAll(s, "-", " ")
}
