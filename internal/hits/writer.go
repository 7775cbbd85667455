package hits

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ionspid/taxassign/internal/model"
)

// WriteFile writes hits in the compact tabular form Read accepts: six
// columns, plus query_coverage when any hit carries one. The delimiter
// is tab unless the file ends in .csv.
func WriteFile(path string, in []model.HitRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return &model.IOError{Op: "create", Path: path, Err: err}
	}

	comma := '\t'
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		comma = ','
	}
	if err := Write(f, in, comma); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &model.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Write renders hits with a header row using the given delimiter.
func Write(w io.Writer, in []model.HitRecord, comma rune) error {
	withCoverage := false
	for _, h := range in {
		if h.QueryCoverage != nil {
			withCoverage = true
			break
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = comma

	header := []string{"query_id", "subject_id", "percent_identity", "alignment_length", "evalue", "bit_score"}
	if withCoverage {
		header = append(header, "query_coverage")
	}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "hits: write header")
	}

	for _, h := range in {
		row := []string{
			h.QueryID,
			h.SubjectID,
			strconv.FormatFloat(h.PercentIdentity, 'f', -1, 64),
			strconv.Itoa(h.AlignmentLength),
			strconv.FormatFloat(h.EValue, 'g', -1, 64),
			strconv.FormatFloat(h.BitScore, 'f', -1, 64),
		}
		if withCoverage {
			cov := ""
			if h.QueryCoverage != nil {
				cov = strconv.FormatFloat(*h.QueryCoverage, 'f', -1, 64)
			}
			row = append(row, cov)
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "hits: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "hits: flush")
}
