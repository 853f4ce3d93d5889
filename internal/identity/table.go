package identity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Entry is one metadata table row.
type Entry struct {
	DocID string
	Title string
}

// Table maps a base filename to its metadata entry.
type Table map[string]Entry

// LoadTable reads the metadata CSV at path.
//
// The file must have a header row with columns id, titulo and arquivo, in
// any order. A missing file is not an error: ingestion falls back to
// filename parsing, so an empty table is returned.
func LoadTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Table{}, nil
		}
		return nil, fmt.Errorf("opening metadata table %s: %w", path, err)
	}
	defer f.Close()

	return ReadTable(f)
}

// ReadTable parses metadata CSV rows from r.
func ReadTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, nil
		}
		return nil, fmt.Errorf("reading metadata header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"id", "titulo", "arquivo"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("metadata table missing column %q", required)
		}
	}

	table := Table{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading metadata row: %w", err)
		}
		filename := row[cols["arquivo"]]
		table[filename] = Entry{
			DocID: row[cols["id"]],
			Title: row[cols["titulo"]],
		}
	}

	return table, nil
}
