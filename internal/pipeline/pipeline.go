// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"call-dashboard-go/internal/aggregator"
	"call-dashboard-go/internal/dataset"
	"call-dashboard-go/internal/logger"
	"call-dashboard-go/internal/metrics"
	"call-dashboard-go/internal/types"
)

// Source supplies the complete raw dataset in one call.
type Source interface {
	Fetch(ctx context.Context) ([]types.RawCallRecord, error)
}

// Snapshot is one immutable load of the dataset. Callers must not modify it.
type Snapshot struct {
	Records  []types.CallRecord
	Metrics  types.AggregateMetrics
	LoadedAt time.Time
}

// Status describes the outcome of the most recent refreshes.
type Status struct {
	Loaded        bool      `json:"loaded"`
	LoadedAt      time.Time `json:"loadedAt,omitzero"`
	Records       int       `json:"records"`
	LastError     string    `json:"lastError,omitempty"`
	LastErrorKind string    `json:"lastErrorKind,omitempty"`
	LastErrorAt   time.Time `json:"lastErrorAt,omitzero"`
}

type failure struct {
	err error
	at  time.Time
}

// Service refreshes the dataset on demand and serves the latest snapshot.
// Refreshes are not coordinated: overlapping ones each swap in their own
// result and the last to finish wins.
type Service struct {
	source  Source
	loc     *time.Location
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	current atomic.Pointer[Snapshot]
	lastErr atomic.Pointer[failure]
}

func New(source Source, loc *time.Location, log *logger.Logger, m *metrics.Metrics) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		source:  source,
		loc:     loc,
		log:     log.Component("pipeline"),
		metrics: m,
		now:     time.Now,
	}
}

// Location is the display zone used for day buckets and date text.
func (s *Service) Location() *time.Location { return s.loc }

// Refresh fetches, normalizes and aggregates the whole dataset, then swaps it
// in. On error the previous snapshot stays current and the error is returned
// unchanged so callers can inspect its type.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	start := s.now()
	snap, err := s.build(ctx)
	elapsed := s.now().Sub(start)

	if err != nil {
		kind := dataset.Kind(err)
		s.lastErr.Store(&failure{err: err, at: s.now()})
		if s.metrics != nil {
			s.metrics.ObserveRefresh(elapsed, 0, kind)
		}
		s.log.WithFields(logrus.Fields{"kind": kind, "elapsed_ms": elapsed.Milliseconds()}).
			WithField("error", err.Error()).Warn("refresh failed")
		return nil, err
	}

	s.current.Store(snap)
	s.lastErr.Store(nil)
	if s.metrics != nil {
		s.metrics.ObserveRefresh(elapsed, len(snap.Records), "")
	}
	s.log.WithFields(logrus.Fields{
		"records":         len(snap.Records),
		"completion_rate": snap.Metrics.CompletionRatePercent,
		"elapsed_ms":      elapsed.Milliseconds(),
	}).Info("refresh complete")
	return snap, nil
}

func (s *Service) build(ctx context.Context) (*Snapshot, error) {
	raws, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	records, err := dataset.NormalizeAll(raws)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Records:  records,
		Metrics:  aggregator.Aggregate(records, s.loc),
		LoadedAt: s.now(),
	}, nil
}

// Snapshot returns the current snapshot, or nil before the first successful
// refresh.
func (s *Service) Snapshot() *Snapshot {
	return s.current.Load()
}

// LastError is the error of the latest refresh, nil if it succeeded.
func (s *Service) LastError() error {
	if f := s.lastErr.Load(); f != nil {
		return f.err
	}
	return nil
}

func (s *Service) Status() Status {
	var st Status
	if snap := s.current.Load(); snap != nil {
		st.Loaded = true
		st.LoadedAt = snap.LoadedAt
		st.Records = len(snap.Records)
	}
	if f := s.lastErr.Load(); f != nil {
		st.LastError = f.err.Error()
		st.LastErrorKind = dataset.Kind(f.err)
		st.LastErrorAt = f.at
	}
	return st
}

// Match is one record that passed the search filter, with its position in
// the snapshot.
type Match struct {
	Key    int
	Record types.CallRecord
}

// Filter keeps records whose name, email or fitness goal contains query,
// ignoring case. A blank query keeps everything. Snapshot order is kept.
func Filter(records []types.CallRecord, query string) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Match, 0, len(records))
	for i, r := range records {
		if q == "" ||
			strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Email), q) ||
			strings.Contains(strings.ToLower(r.FitnessGoal), q) {
			out = append(out, Match{Key: i, Record: r})
		}
	}
	return out
}

// Records strips the keys off a filtered list.
func Records(matches []Match) []types.CallRecord {
	out := make([]types.CallRecord, len(matches))
	for i, m := range matches {
		out[i] = m.Record
	}
	return out
}
