package lineage

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/ionspid/taxassign/internal/model"
)

// LoadXLSX reads a taxonomy mapping from the first sheet of a
// spreadsheet: column A subject_id, column B taxonomy. Reference
// curators commonly maintain mappings in spreadsheets, so this is
// accepted alongside CSV.
func LoadXLSX(path string) (*MapSource, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, &model.ConfigurationError{Source: path, Err: err}
	}
	if len(f.Sheets) == 0 {
		return nil, &model.ConfigurationError{Source: path, Err: eris.New("workbook has no sheets")}
	}

	entries := make(map[string]string)
	for i, row := range f.Sheets[0].Rows {
		if len(row.Cells) < 2 {
			continue
		}
		sid := strings.TrimSpace(row.Cells[0].String())
		if sid == "" {
			continue
		}
		if i == 0 && strings.EqualFold(sid, "subject_id") {
			continue
		}
		entries[sid] = strings.TrimSpace(row.Cells[1].String())
	}
	return NewMapSource(entries), nil
}
