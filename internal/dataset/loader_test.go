package dataset

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"call-dashboard-go/internal/logger"
	"call-dashboard-go/internal/types"
)

func writeSheet(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	path := filepath.Join(t.TempDir(), "calls.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func header() []any {
	out := make([]any, 0, len(types.RawKeys))
	// reversed on purpose: columns are matched by name, not position
	for i := len(types.RawKeys) - 1; i >= 0; i-- {
		out = append(out, types.RawKeys[i])
	}
	return out
}

// row builds a data row in header() order.
func row(id, name string, date int64, duration string, status bool, segment string) []any {
	return []any{segment, status, duration, "agent", "https://r/" + id, "Muscle Gain", date, "sum", "User: hi", name + "@example.com", name, id}
}

func TestSheetSource_Fetch(t *testing.T) {
	path := writeSheet(t, [][]any{
		header(),
		row("1", "ana", 1741096800000, "65000", true, "Positive"),
		{},
		row("2", "ben", 1741183200000, "1000", false, "Neutral"),
	})

	raws, err := NewSheetSource(path, logger.Discard()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 2)

	recs, err := NormalizeAll(raws)
	require.NoError(t, err)
	assert.Equal(t, "1", recs[0].ID)
	assert.Equal(t, "ana", recs[0].Name)
	assert.Equal(t, int64(1741096800000), recs[0].Date)
	assert.Equal(t, "65000", recs[0].Duration)
	assert.True(t, recs[0].Status)
	assert.Equal(t, "Muscle Gain", recs[0].FitnessGoal)
	assert.False(t, recs[1].Status)
	assert.Equal(t, "Neutral", recs[1].Segment)
}

func TestSheetSource_MissingColumnFailsOnNormalize(t *testing.T) {
	path := writeSheet(t, [][]any{
		{types.KeyCallerID, types.KeyCallerName},
		{"1", "ana"},
	})
	raws, err := NewSheetSource(path, logger.Discard()).Fetch(context.Background())
	require.NoError(t, err)

	_, err = NormalizeAll(raws)
	var re *MalformedRecordError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, types.KeyCallerEmail, re.Key)
}

func TestSheetSource_BadDate(t *testing.T) {
	r := row("1", "ana", 0, "1", true, "Positive")
	r[6] = "last tuesday"
	path := writeSheet(t, [][]any{header(), r})

	_, err := NewSheetSource(path, logger.Discard()).Fetch(context.Background())
	var re *MalformedRecordError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, types.KeyCallDate, re.Key)
}

func TestSheetSource_MissingFile(t *testing.T) {
	_, err := NewSheetSource(filepath.Join(t.TempDir(), "nope.xlsx"), logger.Discard()).Fetch(context.Background())
	assert.Equal(t, KindTransport, Kind(err))
}

func TestParseEpochMillis(t *testing.T) {
	n, err := parseEpochMillis("1741096800000")
	require.NoError(t, err)
	assert.Equal(t, int64(1741096800000), n)

	n, err = parseEpochMillis("1.7410968E+12")
	require.NoError(t, err)
	assert.Equal(t, int64(1741096800000), n)

	_, err = parseEpochMillis("")
	assert.Error(t, err)
}
