package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"call-dashboard-go/internal/logger"
	"call-dashboard-go/internal/types"
)

// RemoteSource fetches the full dataset from the spreadsheet-backed endpoint
// with a single GET. No query parameters, headers or cursors are sent.
type RemoteSource struct {
	URL     string
	Timeout time.Duration // whole fetch, retries included; 0 means none
	Retries int           // extra attempts after the first; 0 disables retry

	client *http.Client
	log    *logger.Logger
}

func NewRemoteSource(url string, timeout time.Duration, retries int, log *logger.Logger) *RemoteSource {
	return &RemoteSource{
		URL:     url,
		Timeout: timeout,
		Retries: retries,
		client:  &http.Client{},
		log:     log.Component("dataset.remote"),
	}
}

// Fetch returns the raw records of one response, in payload order.
func (s *RemoteSource) Fetch(ctx context.Context) ([]types.RawCallRecord, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	log := s.log.WithField("url", s.URL)

	var body []byte
	var lastErr error
	attempt := 0
	operation := func() error {
		attempt++
		b, err := s.get(ctx)
		if err != nil {
			lastErr = err
			var te *TransportError
			if errors.As(err, &te) && te.StatusCode >= 400 && te.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		lastErr = nil
		return nil
	}

	var bo backoff.BackOff = backoff.NewExponentialBackOff()
	bo = backoff.WithContext(backoff.WithMaxRetries(bo, uint64(max(s.Retries, 0))), ctx)
	notify := func(err error, wait time.Duration) {
		log.WithFields(logrus.Fields{"attempt": attempt, "wait": wait.String()}).
			WithField("error", err.Error()).Warn("fetch failed, retrying")
	}
	if err := backoff.RetryNotify(operation, bo, notify); err != nil {
		if lastErr == nil {
			lastErr = &TransportError{URL: s.URL, Err: err}
		}
		log.WithField("attempts", attempt).WithField("error", lastErr.Error()).Error("fetch failed")
		return nil, lastErr
	}

	raws, err := DecodePayload(body)
	if err != nil {
		log.WithField("error", err.Error()).Error("payload rejected")
		return nil, err
	}
	log.WithFields(logrus.Fields{"records": len(raws), "attempts": attempt, "bytes": len(body)}).Info("fetched dataset")
	return raws, nil
}

func (s *RemoteSource) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, &TransportError{URL: s.URL, Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: s.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{URL: s.URL, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: s.URL, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// DecodePayload parses a {"data": [...]} document into raw records. A body
// that is not JSON, or whose data member is missing or not a list, yields a
// *MalformedPayloadError. A record that does not decode yields a
// *MalformedRecordError naming the offending key.
func DecodePayload(body []byte) ([]types.RawCallRecord, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &MalformedPayloadError{Reason: fmt.Sprintf("body is not a JSON object: %v", err)}
	}
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, &MalformedPayloadError{Reason: "data is missing"}
	}
	if data[0] != '[' {
		return nil, &MalformedPayloadError{Reason: "data is not a list"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &MalformedPayloadError{Reason: fmt.Sprintf("data: %v", err)}
	}

	out := make([]types.RawCallRecord, 0, len(items))
	for i, item := range items {
		var raw types.RawCallRecord
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, recordDecodeError(i, err)
		}
		out = append(out, raw)
	}
	return out, nil
}

func recordDecodeError(index int, err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return &MalformedRecordError{Index: index, Key: keyForField(typeErr.Field), Err: err}
	case errors.Is(err, types.ErrDurationType):
		return &MalformedRecordError{Index: index, Key: types.KeyCallDuration, Err: err}
	default:
		return &MalformedRecordError{Index: index, Key: "(record)", Err: err}
	}
}
