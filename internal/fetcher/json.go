package fetcher

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// DecodeTable decodes a JSON array of rows, the shape the Census API
// returns. Cells may be strings, numbers or null; numbers keep their
// literal text and null becomes "".
func DecodeTable(r io.Reader) ([][]string, error) {
	var raw [][]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "json: decode table")
	}

	out := make([][]string, len(raw))
	for i, row := range raw {
		cells := make([]string, len(row))
		for j, cell := range row {
			v, err := tableCell(cell)
			if err != nil {
				return nil, eris.Wrapf(err, "json: row %d column %d", i, j)
			}
			cells[j] = v
		}
		out[i] = cells
	}
	return out, nil
}

func tableCell(cell json.RawMessage) (string, error) {
	cell = bytes.TrimSpace(cell)
	switch {
	case len(cell) == 0 || bytes.Equal(cell, []byte("null")):
		return "", nil
	case cell[0] == '"':
		var s string
		if err := json.Unmarshal(cell, &s); err != nil {
			return "", err
		}
		return s, nil
	case cell[0] == '{' || cell[0] == '[':
		return "", eris.New("nested value in table cell")
	default:
		return string(cell), nil
	}
}
