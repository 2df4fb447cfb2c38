package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions selects a sheet and where its table starts.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // overrides SheetIndex when set
	SkipRows   int    // leading rows to drop
	// HeaderCell, when set, drops every row before the first one holding a
	// cell equal to it (case-insensitive). NTD workbooks open with title
	// rows above the header.
	HeaderCell string
}

// ReadXLSX returns the non-blank rows of one sheet as string slices.
func ReadXLSX(path string, opts XLSXOptions) ([][]string, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	sheet, err := pickSheet(wb, opts)
	if err != nil {
		return nil, err
	}

	var out [][]string
	inTable := opts.HeaderCell == ""
	for i, row := range sheet.Rows {
		if row == nil || i < opts.SkipRows {
			continue
		}
		cells := make([]string, len(row.Cells))
		empty := true
		for j, c := range row.Cells {
			cells[j] = strings.TrimSpace(c.String())
			empty = empty && cells[j] == ""
		}
		if empty {
			continue
		}
		if !inTable {
			inTable = hasCell(cells, opts.HeaderCell)
			if !inTable {
				continue
			}
		}
		out = append(out, cells)
	}
	if !inTable {
		return nil, eris.Errorf("xlsx: header cell %q not found in %s", opts.HeaderCell, sheet.Name)
	}
	return out, nil
}

func pickSheet(wb *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		if sheet, ok := wb.Sheet[opts.SheetName]; ok {
			return sheet, nil
		}
		return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
	}
	if opts.SheetIndex < 0 || opts.SheetIndex >= len(wb.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(wb.Sheets))
	}
	return wb.Sheets[opts.SheetIndex], nil
}

func hasCell(cells []string, want string) bool {
	for _, c := range cells {
		if strings.EqualFold(c, want) {
			return true
		}
	}
	return false
}
