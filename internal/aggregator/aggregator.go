package aggregator

import (
	"math"
	"sort"
	"time"

	"call-dashboard-go/internal/formatting"
	"call-dashboard-go/internal/types"
)

// UnknownGoal labels records whose fitness goal is empty.
const UnknownGoal = "Unknown"

// RecentDays is how many active days the daily series keeps.
const RecentDays = 7

// Aggregate derives the dashboard metrics from the full record list.
//
// Durations: Call Duration is read as decimal milliseconds and each record
// contributes floor(ms/1000) whole seconds to the total, the average and the
// per-day averages. A duration that does not parse contributes 0 seconds and
// is counted in UnparsedDurations.
//
// Days are calendar days in loc (nil means time.Local). Only days with at
// least one call get a bucket; the last RecentDays of them are returned in
// ascending order.
func Aggregate(records []types.CallRecord, loc *time.Location) types.AggregateMetrics {
	m := types.AggregateMetrics{
		TotalCalls:      len(records),
		GoalCounts:      []types.GoalCount{},
		SegmentCounts:   []types.SegmentCount{},
		DailyCallCounts: []types.DailyBucket{},
	}

	goalIdx := map[string]int{}
	segIdx := map[string]int{}
	type dayAcc struct {
		day   time.Time
		count int
		secs  int64
	}
	type dayKey struct {
		y int
		m time.Month
		d int
	}
	days := map[dayKey]*dayAcc{}

	for _, r := range records {
		if r.Status {
			m.SuccessfulCalls++
		}

		secs, err := formatting.DurationSeconds(r.Duration)
		if err != nil {
			m.UnparsedDurations++
			secs = 0
		}
		m.TotalDurationSeconds += secs

		goal := r.FitnessGoal
		if goal == "" {
			goal = UnknownGoal
		}
		if i, ok := goalIdx[goal]; ok {
			m.GoalCounts[i].Count++
		} else {
			goalIdx[goal] = len(m.GoalCounts)
			m.GoalCounts = append(m.GoalCounts, types.GoalCount{Goal: goal, Count: 1})
		}

		if i, ok := segIdx[r.Segment]; ok {
			m.SegmentCounts[i].Count++
		} else {
			segIdx[r.Segment] = len(m.SegmentCounts)
			m.SegmentCounts = append(m.SegmentCounts, types.SegmentCount{Segment: r.Segment, Count: 1})
		}

		day := formatting.StartOfDay(r.Date, loc)
		y, mo, d := day.Date()
		key := dayKey{y, mo, d}
		acc, ok := days[key]
		if !ok {
			acc = &dayAcc{day: day}
			days[key] = acc
		}
		acc.count++
		acc.secs += secs
	}

	m.CompletionRatePercent = percent(m.SuccessfulCalls, m.TotalCalls)
	for i := range m.SegmentCounts {
		m.SegmentCounts[i].PercentageOfTotal = percent(m.SegmentCounts[i].Count, m.TotalCalls)
	}

	if m.TotalCalls > 0 {
		m.AverageDurationSeconds = float64(m.TotalDurationSeconds) / float64(m.TotalCalls)
	}
	m.TotalDurationFormatted = formatting.FormatClock(m.TotalDurationSeconds)
	m.AverageDurationFormatted = formatting.FormatMinutesSeconds(m.AverageDurationSeconds)

	ordered := make([]*dayAcc, 0, len(days))
	for _, d := range days {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].day.Before(ordered[j].day) })
	if len(ordered) > RecentDays {
		ordered = ordered[len(ordered)-RecentDays:]
	}
	for _, d := range ordered {
		m.DailyCallCounts = append(m.DailyCallCounts, types.DailyBucket{
			Day:                    d.day,
			DayLabel:               formatting.DayLabel(d.day),
			Count:                  d.count,
			AverageDurationSeconds: float64(d.secs) / float64(d.count),
		})
	}
	return m
}

// percent rounds part/total*100 to the nearest integer; 0 when total is 0.
func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
