package dataset

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"call-dashboard-go/internal/logger"
	"call-dashboard-go/internal/types"
)

// SheetSource reads the same raw records from a local XLSX copy of the
// backing spreadsheet. The first sheet's header row must carry the raw keys.
type SheetSource struct {
	Path string
	log  *logger.Logger
}

func NewSheetSource(path string, log *logger.Logger) *SheetSource {
	return &SheetSource{Path: path, log: log.Component("dataset.sheet")}
}

func (s *SheetSource) Fetch(ctx context.Context) ([]types.RawCallRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := s.log.WithField("path", s.Path)
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		log.WithField("error", err.Error()).Error("open failed")
		return nil, &TransportError{URL: s.Path, Err: fmt.Errorf("open file: %w", err)}
	}
	defer f.Close()

	raws, err := Load(f)
	if err != nil {
		log.WithField("error", err.Error()).Error("sheet rejected")
		return nil, err
	}
	log.WithField("records", len(raws)).Info("loaded dataset from sheet")
	return raws, nil
}

// Load reads raw records from the first sheet of f. Columns are matched by
// header text, ignoring case and surrounding space; order does not matter.
func Load(f *excelize.File) ([]types.RawCallRecord, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &MalformedPayloadError{Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &MalformedPayloadError{Reason: fmt.Sprintf("read rows: %v", err)}
	}
	if len(rows) == 0 {
		return nil, &MalformedPayloadError{Reason: "sheet has no header row"}
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		n := strings.ToLower(strings.TrimSpace(h))
		for _, k := range types.RawKeys {
			if _, seen := cols[k]; !seen && n == strings.ToLower(k) {
				cols[k] = i
			}
		}
	}

	var out []types.RawCallRecord
	for _, r := range rows[1:] {
		if blankRow(r) {
			continue
		}
		raw, err := sheetRecord(len(out), r, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func sheetRecord(index int, r []string, cols map[string]int) (types.RawCallRecord, error) {
	var raw types.RawCallRecord
	cell := func(key string) *string {
		i, ok := cols[key]
		if !ok {
			return nil
		}
		v := ""
		if i < len(r) {
			v = r[i]
		}
		return &v
	}

	raw.CallerID = cell(types.KeyCallerID)
	raw.CallerName = cell(types.KeyCallerName)
	raw.CallerEmail = cell(types.KeyCallerEmail)
	raw.Transcript = cell(types.KeyTranscript)
	raw.Summary = cell(types.KeySummary)
	raw.FitnessGoal = cell(types.KeyFitnessGoal)
	raw.CallRecording = cell(types.KeyCallRecording)
	raw.DisconnectedBy = cell(types.KeyDisconnectedBy)
	raw.UserSegment = cell(types.KeyUserSegment)
	if v := cell(types.KeyCallDuration); v != nil {
		d := types.DurationText(*v)
		raw.CallDuration = &d
	}

	if v := cell(types.KeyCallDate); v != nil {
		ms, err := parseEpochMillis(*v)
		if err != nil {
			return raw, &MalformedRecordError{Index: index, Key: types.KeyCallDate, Err: err}
		}
		raw.CallDate = &ms
	}
	if v := cell(types.KeyCallStatus); v != nil {
		b, err := strconv.ParseBool(strings.TrimSpace(*v))
		if err != nil {
			return raw, &MalformedRecordError{Index: index, Key: types.KeyCallStatus, Err: err}
		}
		raw.CallStatus = &b
	}
	return raw, nil
}

// parseEpochMillis accepts integer text and the float form spreadsheets use
// for large numbers (e.g. 1.7409e+12).
func parseEpochMillis(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an epoch-millisecond number: %q", s)
	}
	return int64(f), nil
}

func blankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
