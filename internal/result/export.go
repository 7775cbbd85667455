package result

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/ionspid/taxassign/internal/model"
)

// Format selects an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Formats lists all supported export formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatTSV, FormatJSON, FormatXLSX}
}

// ParseFormat validates a format name supplied by the caller.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", &model.ValidationError{Field: "format", Reason: "must be one of csv, tsv, json, xlsx"}
}

// DetectFormat infers the export format from a path's extension,
// defaulting to TSV.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatTSV
	}
}

// exportColumns defines the ordered tabular output columns.
var exportColumns = []string{
	"query_id",
	"taxonomy",
	"method",
	"confidence",
	"supporting_hits",
}

// Export writes a result set to path in the given format. The file is
// written to a temporary sibling and renamed into place, so a failed
// export never leaves a partial file at the destination.
func Export(rs *model.ResultSet, path string, format Format) error {
	if err := writeAtomic(path, func(w io.Writer) error {
		switch format {
		case FormatCSV:
			return writeDelimited(w, rs, ',')
		case FormatTSV:
			return writeDelimited(w, rs, '\t')
		case FormatJSON:
			return writeJSON(w, rs)
		case FormatXLSX:
			return writeXLSX(w, rs)
		default:
			return &model.ValidationError{Field: "format", Reason: "unknown format " + string(format)}
		}
	}); err != nil {
		return err
	}

	zap.L().Info("result: exported",
		zap.String("run_id", rs.RunID),
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("assignments", len(rs.Assignments)),
	)
	return nil
}

// writeAtomic streams write output into a temp file in the destination
// directory, then renames it over path.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &model.IOError{Op: "create", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &model.IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &model.IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

func writeDelimited(out io.Writer, rs *model.ResultSet, comma rune) error {
	w := csv.NewWriter(out)
	w.Comma = comma

	if err := w.Write(exportColumns); err != nil {
		return eris.Wrap(err, "result: write header")
	}
	for _, a := range rs.Assignments {
		if err := w.Write(assignmentRow(a)); err != nil {
			return eris.Wrap(err, "result: write row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "result: flush")
}

func writeJSON(out io.Writer, rs *model.ResultSet) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(rs), "result: encode json")
}

func writeXLSX(out io.Writer, rs *model.ResultSet) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("assignments")
	if err != nil {
		return eris.Wrap(err, "result: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range exportColumns {
		header.AddCell().Value = col
	}
	for _, a := range rs.Assignments {
		row := sheet.AddRow()
		for _, v := range assignmentRow(a) {
			row.AddCell().Value = v
		}
	}

	return eris.Wrap(f.Write(out), "result: write workbook")
}

// assignmentRow renders one assignment in export column order. An
// unassigned query keeps its row with an empty taxonomy and a zero
// confidence, so every input query appears in the output.
func assignmentRow(a model.Assignment) []string {
	taxonomy := ""
	if a.Taxonomy != nil {
		taxonomy = a.Taxonomy.String()
	}
	return []string{
		a.QueryID,
		taxonomy,
		string(a.Method),
		strconv.FormatFloat(a.Confidence, 'f', -1, 64),
		strconv.Itoa(a.SupportingHits),
	}
}
