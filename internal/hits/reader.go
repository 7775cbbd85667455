// Package hits ingests, filters, and groups pairwise alignment hits.
package hits

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ionspid/taxassign/internal/model"
)

// Tabular hit files carry at least these six columns, in this order:
// query_id, subject_id, percent_identity, alignment_length, evalue,
// bit_score. A seventh query_coverage column is honored when present.
// Full 12-column BLAST outfmt 6 rows are also accepted (pident, length,
// evalue, bitscore at their standard positions).
const (
	minColumns     = 6
	outfmt6Columns = 12
)

// ReadFile parses a tabular hit file. The delimiter is tab unless the
// file ends in .csv. Malformed rows are not fatal: they are skipped and
// counted, and the count is surfaced in the run summary.
func ReadFile(path string) ([]model.HitRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "hits: open %s", path)
	}
	defer f.Close()

	comma := '\t'
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		comma = ','
	}
	return Read(f, comma)
}

// Read parses hit rows from r using the given delimiter. It returns the
// valid hits in source order and the number of malformed rows skipped.
func Read(r io.Reader, comma rune) ([]model.HitRecord, int, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		records  []model.HitRecord
		warnings int
		line     int
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			warnings++
			zap.L().Debug("hits: skipping unparseable row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if line == 1 && isHeader(row) {
			continue
		}

		hit, err := parseRow(row)
		if err != nil {
			warnings++
			zap.L().Debug("hits: skipping malformed row", zap.Int("line", line), zap.Error(err))
			continue
		}
		records = append(records, hit)
	}

	if warnings > 0 {
		zap.L().Warn("hits: malformed rows skipped", zap.Int("count", warnings))
	}
	return records, warnings, nil
}

func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(row[0])) {
	case "query_id", "qseqid", "query":
		return true
	}
	return false
}

func parseRow(row []string) (model.HitRecord, error) {
	if len(row) < minColumns {
		return model.HitRecord{}, eris.Errorf("hits: expected at least %d columns, got %d", minColumns, len(row))
	}

	// Standard BLAST outfmt 6 puts evalue and bitscore at columns 11-12
	// with mismatch/gap/coordinate columns in between.
	identIdx, lenIdx, evalIdx, bitIdx := 2, 3, 4, 5
	covIdx := 6
	if len(row) >= outfmt6Columns {
		evalIdx, bitIdx = 10, 11
		covIdx = 12
	}

	hit := model.HitRecord{
		QueryID:   strings.TrimSpace(row[0]),
		SubjectID: strings.TrimSpace(row[1]),
	}

	var err error
	if hit.PercentIdentity, err = parseFloat(row[identIdx]); err != nil {
		return model.HitRecord{}, eris.Wrap(err, "hits: percent_identity")
	}
	if hit.AlignmentLength, err = strconv.Atoi(strings.TrimSpace(row[lenIdx])); err != nil {
		return model.HitRecord{}, eris.Wrap(err, "hits: alignment_length")
	}
	if hit.EValue, err = parseFloat(row[evalIdx]); err != nil {
		return model.HitRecord{}, eris.Wrap(err, "hits: evalue")
	}
	if hit.BitScore, err = parseFloat(row[bitIdx]); err != nil {
		return model.HitRecord{}, eris.Wrap(err, "hits: bit_score")
	}
	if covIdx < len(row) && strings.TrimSpace(row[covIdx]) != "" {
		cov, err := parseFloat(row[covIdx])
		if err != nil {
			return model.HitRecord{}, eris.Wrap(err, "hits: query_coverage")
		}
		hit.QueryCoverage = &cov
	}

	if err := hit.Validate(); err != nil {
		return model.HitRecord{}, err
	}
	return hit, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
