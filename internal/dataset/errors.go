package dataset

import (
	"errors"
	"fmt"
)

// Error kinds reported to callers and used as metric labels.
const (
	KindTransport        = "transport"
	KindMalformedPayload = "malformed_payload"
	KindMalformedRecord  = "malformed_record"
	KindUnknown          = "unknown"
)

// TransportError means the fetch itself failed: network error, timeout or a
// non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP error status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedPayloadError means the response was readable but the data array
// was missing or mistyped.
type MalformedPayloadError struct {
	Reason string
}

func (e *MalformedPayloadError) Error() string {
	return "invalid data format received from source: " + e.Reason
}

// MalformedRecordError names the record and key that could not be normalized.
type MalformedRecordError struct {
	Index int
	Key   string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("record %d: key %q: %v", e.Index, e.Key, e.Err)
	}
	return fmt.Sprintf("record %d: missing key %q", e.Index, e.Key)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// Kind classifies err into one of the Kind constants.
func Kind(err error) string {
	var te *TransportError
	var pe *MalformedPayloadError
	var re *MalformedRecordError
	switch {
	case errors.As(err, &te):
		return KindTransport
	case errors.As(err, &pe):
		return KindMalformedPayload
	case errors.As(err, &re):
		return KindMalformedRecord
	default:
		return KindUnknown
	}
}
