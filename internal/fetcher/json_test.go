package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTable(t *testing.T) {
	input := `[["NAME","B01003_001E","metropolitan statistical area/micropolitan statistical area"],
	["Dallas-Fort Worth-Arlington, TX Metro Area","7943685","19100"]]`

	table, err := DecodeTable(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, "B01003_001E", table[0][1])
	assert.Equal(t, "19100", table[1][2])
}

func TestDecodeTable_MixedCells(t *testing.T) {
	table, err := DecodeTable(strings.NewReader(`[["a", 12, null, 1.5, true]]`))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "12", "", "1.5", "true"}}, table)
}

func TestDecodeTable_Errors(t *testing.T) {
	_, err := DecodeTable(strings.NewReader("{not json"))
	assert.Error(t, err)

	_, err = DecodeTable(strings.NewReader(`{"rows": []}`))
	assert.Error(t, err)

	_, err = DecodeTable(strings.NewReader(`[["ok", {"nested": 1}]]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0 column 1")
}
