// internal/types/metrics.go
package types

import "time"

// --------------------------------------------
// Aggregate view, recomputed on every refresh
// --------------------------------------------
type AggregateMetrics struct {
	TotalCalls               int            `json:"totalCalls"`
	TotalDurationSeconds     int64          `json:"totalDurationSeconds"`
	TotalDurationFormatted   string         `json:"totalDurationFormatted"`
	SuccessfulCalls          int            `json:"successfulCalls"`
	CompletionRatePercent    int            `json:"completionRatePercent"`
	GoalCounts               []GoalCount    `json:"goalCounts"`
	SegmentCounts            []SegmentCount `json:"segmentCounts"`
	DailyCallCounts          []DailyBucket  `json:"dailyCallCounts"`
	AverageDurationSeconds   float64        `json:"averageDurationSeconds"`
	AverageDurationFormatted string         `json:"averageDurationFormatted"`
	UnparsedDurations        int            `json:"unparsedDurations"`
}

// GoalCount is one fitness-goal bar. Slices keep first-seen order.
type GoalCount struct {
	Goal  string `json:"goal"`
	Count int    `json:"count"`
}

// SegmentCount is one sentiment slice.
type SegmentCount struct {
	Segment           string `json:"segment"`
	Count             int    `json:"count"`
	PercentageOfTotal int    `json:"percentageOfTotal"`
}

// DailyBucket counts calls on one local calendar day.
type DailyBucket struct {
	Day                    time.Time `json:"day"` // local midnight
	DayLabel               string    `json:"dayLabel"`
	Count                  int       `json:"count"`
	AverageDurationSeconds float64   `json:"averageDurationSeconds"`
}
