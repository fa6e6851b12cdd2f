package dataset

import (
	"strings"

	"call-dashboard-go/internal/types"
)

// Normalize maps one raw record onto the canonical shape. A key that is
// absent (or null) fails the record with a *MalformedRecordError; nothing is
// defaulted. The index is only used to label the error.
func Normalize(index int, raw types.RawCallRecord) (types.CallRecord, error) {
	missing := func(key string) error {
		return &MalformedRecordError{Index: index, Key: key}
	}
	switch {
	case raw.CallerID == nil:
		return types.CallRecord{}, missing(types.KeyCallerID)
	case raw.CallerName == nil:
		return types.CallRecord{}, missing(types.KeyCallerName)
	case raw.CallerEmail == nil:
		return types.CallRecord{}, missing(types.KeyCallerEmail)
	case raw.Transcript == nil:
		return types.CallRecord{}, missing(types.KeyTranscript)
	case raw.Summary == nil:
		return types.CallRecord{}, missing(types.KeySummary)
	case raw.CallDate == nil:
		return types.CallRecord{}, missing(types.KeyCallDate)
	case raw.FitnessGoal == nil:
		return types.CallRecord{}, missing(types.KeyFitnessGoal)
	case raw.CallRecording == nil:
		return types.CallRecord{}, missing(types.KeyCallRecording)
	case raw.DisconnectedBy == nil:
		return types.CallRecord{}, missing(types.KeyDisconnectedBy)
	case raw.CallDuration == nil:
		return types.CallRecord{}, missing(types.KeyCallDuration)
	case raw.CallStatus == nil:
		return types.CallRecord{}, missing(types.KeyCallStatus)
	case raw.UserSegment == nil:
		return types.CallRecord{}, missing(types.KeyUserSegment)
	}
	return types.CallRecord{
		ID:             *raw.CallerID,
		Name:           *raw.CallerName,
		Email:          *raw.CallerEmail,
		Transcript:     *raw.Transcript,
		Summary:        *raw.Summary,
		Date:           *raw.CallDate,
		FitnessGoal:    *raw.FitnessGoal,
		Recording:      *raw.CallRecording,
		DisconnectedBy: *raw.DisconnectedBy,
		Duration:       string(*raw.CallDuration),
		Status:         *raw.CallStatus,
		Segment:        *raw.UserSegment,
	}, nil
}

// NormalizeAll normalizes a whole batch. The first bad record fails the batch.
func NormalizeAll(raws []types.RawCallRecord) ([]types.CallRecord, error) {
	out := make([]types.CallRecord, 0, len(raws))
	for i, raw := range raws {
		rec, err := Normalize(i, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Denormalize rebuilds the raw form of a canonical record. It is the inverse
// of Normalize: Normalize(i, Denormalize(rec)) returns rec unchanged. Tests
// and fixtures use it to build raw payloads from canonical records.
func Denormalize(rec types.CallRecord) types.RawCallRecord {
	duration := types.DurationText(rec.Duration)
	return types.RawCallRecord{
		CallerID:       ptr(rec.ID),
		CallerName:     ptr(rec.Name),
		CallerEmail:    ptr(rec.Email),
		Transcript:     ptr(rec.Transcript),
		Summary:        ptr(rec.Summary),
		CallDate:       ptr(rec.Date),
		FitnessGoal:    ptr(rec.FitnessGoal),
		CallRecording:  ptr(rec.Recording),
		DisconnectedBy: ptr(rec.DisconnectedBy),
		CallDuration:   &duration,
		CallStatus:     ptr(rec.Status),
		UserSegment:    ptr(rec.Segment),
	}
}

func ptr[T any](v T) *T { return &v }

// keyForField maps a json decode error field path back to its raw key.
func keyForField(field string) string {
	for _, k := range types.RawKeys {
		if field == k || strings.HasSuffix(field, "."+k) {
			return k
		}
	}
	if field == "" {
		return "(record)"
	}
	return field
}
