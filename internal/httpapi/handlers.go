package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"call-dashboard-go/internal/cards"
	"call-dashboard-go/internal/dataset"
	"call-dashboard-go/internal/export"
	"call-dashboard-go/internal/formatting"
	"call-dashboard-go/internal/pipeline"
	"call-dashboard-go/internal/transcript"
	"call-dashboard-go/internal/types"
)

const (
	csvFilename  = "call-logs.csv"
	xlsxFilename = "call-logs.xlsx"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// callView is a record plus the display text the table renders.
type callView struct {
	Key int `json:"key"`
	types.CallRecord
	DateText     string `json:"dateText"`
	DurationText string `json:"durationText"`
	StatusText   string `json:"statusLabel"`
}

type callDetail struct {
	callView
	Messages []types.TranscriptMessage `json:"messages"`
	Stats    transcript.Stats          `json:"transcriptStats"`
}

type transcriptView struct {
	Key      int                       `json:"key"`
	Messages []types.TranscriptMessage `json:"messages"`
	Stats    transcript.Stats          `json:"stats"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Status())
}

// handleRefresh outlives a client that hangs up; the source bounds it with
// its own timeout.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.Refresh(context.WithoutCancel(r.Context())); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": err.Error(),
			"kind":  dataset.Kind(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Status())
}

func (s *Server) handleListCalls(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	matches := pipeline.Filter(snap.Records, r.URL.Query().Get("q"))
	out := make([]callView, len(matches))
	for i, m := range matches {
		out[i] = s.view(m.Key, m.Record)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCall(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	key, rec, ok := lookup(w, r, snap)
	if !ok {
		return
	}
	msgs := transcript.Parse(rec.Transcript)
	writeJSON(w, http.StatusOK, callDetail{
		callView: s.view(key, rec),
		Messages: msgs,
		Stats:    transcript.Summarize(msgs),
	})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	key, rec, ok := lookup(w, r, snap)
	if !ok {
		return
	}
	msgs := transcript.Parse(rec.Transcript)
	writeJSON(w, http.StatusOK, transcriptView{Key: key, Messages: msgs, Stats: transcript.Summarize(msgs)})
}

func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, http.StatusOK, snap.Metrics)
	}
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, http.StatusOK, cards.Generate(snap.Metrics))
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	records := pipeline.Records(pipeline.Filter(snap.Records, r.URL.Query().Get("q")))

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records, s.svc.Location()); err != nil {
		s.log.WithError(err).Error("csv export failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}
	attachment(w, "text/csv; charset=utf-8", csvFilename)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	records := pipeline.Records(pipeline.Filter(snap.Records, r.URL.Query().Get("q")))

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, records, s.svc.Location()); err != nil {
		s.log.WithError(err).Error("xlsx export failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}
	attachment(w, xlsxMIME, xlsxFilename)
	_, _ = buf.WriteTo(w)
}

// snapshot writes 503 and reports false until the first load succeeds. The
// body carries the last refresh error, if any.
func (s *Server) snapshot(w http.ResponseWriter) (*pipeline.Snapshot, bool) {
	snap := s.svc.Snapshot()
	if snap == nil {
		body := map[string]string{"error": "dataset not loaded"}
		if err := s.svc.LastError(); err != nil {
			body["lastError"] = err.Error()
			body["kind"] = dataset.Kind(err)
		}
		writeJSON(w, http.StatusServiceUnavailable, body)
		return nil, false
	}
	return snap, true
}

func (s *Server) view(key int, rec types.CallRecord) callView {
	return callView{
		Key:          key,
		CallRecord:   rec,
		DateText:     formatting.FormatDate(rec.Date, s.svc.Location()),
		DurationText: formatting.FormatDuration(rec.Duration),
		StatusText:   rec.StatusLabel(),
	}
}

func lookup(w http.ResponseWriter, r *http.Request, snap *pipeline.Snapshot) (int, types.CallRecord, bool) {
	key, err := strconv.Atoi(chi.URLParam(r, "key"))
	if err != nil || key < 0 || key >= len(snap.Records) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "call not found"})
		return 0, types.CallRecord{}, false
	}
	return key, snap.Records[key], true
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
