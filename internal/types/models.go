package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Raw keys as the spreadsheet endpoint sends them.
const (
	KeyCallerID       = "Caller ID"
	KeyCallerName     = "Caller Name"
	KeyCallerEmail    = "Caller Email"
	KeyTranscript     = "Transcript"
	KeySummary        = "Summary"
	KeyCallDate       = "Call Date"
	KeyFitnessGoal    = "Fitness Goal"
	KeyCallRecording  = "Call Recording"
	KeyDisconnectedBy = "Disconnected By"
	KeyCallDuration   = "Call Duration"
	KeyCallStatus     = "Call Status"
	KeyUserSegment    = "User Segment"
)

// RawKeys lists every required raw key in sheet column order.
var RawKeys = []string{
	KeyCallerID, KeyCallerName, KeyCallerEmail, KeyTranscript, KeySummary, KeyCallDate,
	KeyFitnessGoal, KeyCallRecording, KeyDisconnectedBy, KeyCallDuration, KeyCallStatus, KeyUserSegment,
}

// RawCallRecord is one row as received from the remote source. A nil field
// means the key was absent from the payload.
type RawCallRecord struct {
	CallerID       *string       `json:"Caller ID"`
	CallerName     *string       `json:"Caller Name"`
	CallerEmail    *string       `json:"Caller Email"`
	Transcript     *string       `json:"Transcript"`
	Summary        *string       `json:"Summary"`
	CallDate       *int64        `json:"Call Date"`
	FitnessGoal    *string       `json:"Fitness Goal"`
	CallRecording  *string       `json:"Call Recording"`
	DisconnectedBy *string       `json:"Disconnected By"`
	CallDuration   *DurationText `json:"Call Duration"`
	CallStatus     *bool         `json:"Call Status"`
	UserSegment    *string       `json:"User Segment"`
}

// ErrDurationType is returned when Call Duration is neither a string nor a number.
var ErrDurationType = errors.New("call duration must be a string or number")

// DurationText keeps the raw duration as text. The sheet sometimes sends the
// value as a JSON number instead of a string; both decode to the same text.
type DurationText string

func (d *DurationText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = DurationText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrDurationType, strings.TrimSpace(string(b)))
	}
	*d = DurationText(n.String())
	return nil
}

// CallRecord is the canonical, immutable view of one call.
type CallRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Transcript     string `json:"transcript"`
	Summary        string `json:"summary"`
	Date           int64  `json:"date"` // epoch milliseconds
	FitnessGoal    string `json:"fitnessGoal"`
	Recording      string `json:"recording"`
	DisconnectedBy string `json:"disconnectedBy"`
	Duration       string `json:"duration"` // decimal milliseconds, see formatting.ParseDurationMillis
	Status         bool   `json:"status"`
	Segment        string `json:"segment"`
}

// StatusLabel is the label used by tables and exports.
func (c CallRecord) StatusLabel() string {
	if c.Status {
		return "Successful"
	}
	return "Failed"
}

// TranscriptMessage is one speaker turn of a parsed transcript.
type TranscriptMessage struct {
	Index   int    `json:"index"`
	Speaker string `json:"speaker"`
	Message string `json:"message"`
	IsUser  bool   `json:"isUser"`
}
