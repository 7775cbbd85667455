// Package lineage resolves subject identifiers to taxonomic lineages.
package lineage

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ionspid/taxassign/internal/model"
)

// Source provides serialized lineage strings for subject identifiers.
// Lookup reports found=false for unknown subjects; only infrastructure
// failures return an error.
type Source interface {
	Lookup(ctx context.Context, subjectID string) (string, bool, error)
	Close() error
}

// Store is a writable database-backed Source.
type Store interface {
	Source
	Migrate(ctx context.Context) error
	Load(ctx context.Context, entries map[string]string) (int64, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// MapSource is an in-memory Source, typically loaded from a taxonomy
// mapping file with subject_id and taxonomy columns.
type MapSource struct {
	entries map[string]string
}

// NewMapSource wraps an existing subject→lineage map.
func NewMapSource(entries map[string]string) *MapSource {
	if entries == nil {
		entries = map[string]string{}
	}
	return &MapSource{entries: entries}
}

func (s *MapSource) Lookup(_ context.Context, subjectID string) (string, bool, error) {
	v, ok := s.entries[subjectID]
	return v, ok, nil
}

func (s *MapSource) Close() error { return nil }

// Len returns the number of mapped subjects.
func (s *MapSource) Len() int { return len(s.entries) }

// Entries exposes the underlying map for bulk loading into a database
// backend. Callers must not mutate it.
func (s *MapSource) Entries() map[string]string { return s.entries }

// LoadCSV reads a taxonomy mapping file (subject_id,taxonomy). The
// delimiter is comma unless the extension says tab. An unreadable or
// unparseable file is a ConfigurationError: running without lineage data
// would silently degrade every result.
func LoadCSV(path string) (*MapSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.ConfigurationError{Source: path, Err: err}
	}
	defer f.Close()

	comma := ','
	ext := strings.ToLower(path)
	if strings.HasSuffix(ext, ".tsv") || strings.HasSuffix(ext, ".tab") {
		comma = '\t'
	}

	entries, err := readMap(f, comma)
	if err != nil {
		return nil, &model.ConfigurationError{Source: path, Err: err}
	}
	return NewMapSource(entries), nil
}

func readMap(r io.Reader, comma rune) (map[string]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	entries := make(map[string]string)
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "lineage: parse mapping")
		}
		line++
		if len(row) < 2 {
			return nil, eris.Errorf("lineage: mapping row %d has %d columns, want 2", line, len(row))
		}
		sid := strings.TrimSpace(row[0])
		if line == 1 && strings.EqualFold(sid, "subject_id") {
			continue
		}
		if sid == "" {
			continue
		}
		entries[sid] = strings.TrimSpace(row[1])
	}
	return entries, nil
}
