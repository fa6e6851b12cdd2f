package cards

import (
	"fmt"
	"strconv"

	"call-dashboard-go/internal/types"
)

type Card struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value string `json:"value"`
	// Numeric is set for cards the frontend animates as a counter.
	Numeric *float64 `json:"numeric,omitempty"`
	Hint    string   `json:"hint,omitempty"`
}

// Generate lays out the summary cards shown above the charts. Segment cards
// follow the first-seen order of the segment histogram.
func Generate(m types.AggregateMetrics) []Card {
	out := []Card{
		counter("total_calls", "Total Calls", m.TotalCalls),
		{Key: "total_duration", Title: "Total Duration", Value: m.TotalDurationFormatted},
		counter("successful_calls", "Successful Conversations", m.SuccessfulCalls),
		{
			Key:     "completion_rate",
			Title:   "Completion Rate",
			Value:   fmt.Sprintf("%d%%", m.CompletionRatePercent),
			Numeric: num(float64(m.CompletionRatePercent)),
			Hint:    fmt.Sprintf("%d of %d calls", m.SuccessfulCalls, m.TotalCalls),
		},
		{Key: "average_duration", Title: "Average Duration", Value: m.AverageDurationFormatted},
	}
	for _, s := range m.SegmentCounts {
		c := counter("segment:"+s.Segment, s.Segment+" Calls", s.Count)
		c.Hint = fmt.Sprintf("%d%% of calls", s.PercentageOfTotal)
		out = append(out, c)
	}
	return out
}

func counter(key, title string, n int) Card {
	return Card{Key: key, Title: title, Value: strconv.Itoa(n), Numeric: num(float64(n))}
}

func num(v float64) *float64 { return &v }
