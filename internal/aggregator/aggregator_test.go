package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-dashboard-go/internal/types"
)

func at(day, hour int) int64 {
	return time.Date(2025, time.March, day, hour, 0, 0, 0, time.UTC).UnixMilli()
}

func call(segment string, status bool, goal string, date int64, duration string) types.CallRecord {
	return types.CallRecord{Segment: segment, Status: status, FitnessGoal: goal, Date: date, Duration: duration}
}

func TestAggregate_Empty(t *testing.T) {
	m := Aggregate(nil, time.UTC)
	assert.Equal(t, 0, m.TotalCalls)
	assert.Equal(t, 0, m.SuccessfulCalls)
	assert.Equal(t, 0, m.CompletionRatePercent)
	assert.Empty(t, m.GoalCounts)
	assert.Empty(t, m.SegmentCounts)
	assert.Empty(t, m.DailyCallCounts)
	assert.Equal(t, "0:00", m.AverageDurationFormatted)
	assert.Equal(t, "00:00:00", m.TotalDurationFormatted)
	assert.Zero(t, m.AverageDurationSeconds)
}

func TestAggregate_ThreeRecordScenario(t *testing.T) {
	recs := []types.CallRecord{
		call("Positive", true, "Weight Loss", at(3, 10), "60000"),
		call("Positive", false, "Weight Loss", at(3, 11), "30000"),
		call("Negative", true, "Endurance", at(4, 9), "90000"),
	}
	m := Aggregate(recs, time.UTC)

	assert.Equal(t, 3, m.TotalCalls)
	assert.Equal(t, 2, m.SuccessfulCalls)
	assert.Equal(t, 67, m.CompletionRatePercent)
	assert.Equal(t, []types.SegmentCount{
		{Segment: "Positive", Count: 2, PercentageOfTotal: 67},
		{Segment: "Negative", Count: 1, PercentageOfTotal: 33},
	}, m.SegmentCounts)
	assert.Equal(t, []types.GoalCount{
		{Goal: "Weight Loss", Count: 2},
		{Goal: "Endurance", Count: 1},
	}, m.GoalCounts)

	assert.Equal(t, int64(180), m.TotalDurationSeconds)
	assert.Equal(t, "00:03:00", m.TotalDurationFormatted)
	assert.Equal(t, "1:00", m.AverageDurationFormatted)

	require.Len(t, m.DailyCallCounts, 2)
	assert.Equal(t, "Mon, Mar 3", m.DailyCallCounts[0].DayLabel)
	assert.Equal(t, 2, m.DailyCallCounts[0].Count)
	assert.Equal(t, 45.0, m.DailyCallCounts[0].AverageDurationSeconds)
	assert.Equal(t, "Tue, Mar 4", m.DailyCallCounts[1].DayLabel)
	assert.Equal(t, 1, m.DailyCallCounts[1].Count)
}

func TestAggregate_SegmentsAreOpenEnded(t *testing.T) {
	recs := []types.CallRecord{
		call("Positive", true, "", at(1, 1), "0"),
		call("positive", true, "", at(1, 1), "0"),
		call("Mixed", true, "", at(1, 1), "0"),
		call("", true, "", at(1, 1), "0"),
	}
	m := Aggregate(recs, time.UTC)
	require.Len(t, m.SegmentCounts, 4)
	assert.Equal(t, "Positive", m.SegmentCounts[0].Segment)
	assert.Equal(t, "positive", m.SegmentCounts[1].Segment)
	assert.Equal(t, "Mixed", m.SegmentCounts[2].Segment)
	assert.Equal(t, "", m.SegmentCounts[3].Segment)
}

func TestAggregate_EmptyGoalIsUnknown(t *testing.T) {
	recs := []types.CallRecord{
		call("Neutral", true, "", at(1, 1), "0"),
		call("Neutral", true, "Flexibility", at(1, 1), "0"),
		call("Neutral", true, "", at(1, 1), "0"),
	}
	m := Aggregate(recs, time.UTC)
	assert.Equal(t, []types.GoalCount{
		{Goal: UnknownGoal, Count: 2},
		{Goal: "Flexibility", Count: 1},
	}, m.GoalCounts)
}

func TestAggregate_CountsSumToTotal(t *testing.T) {
	segments := []string{"Positive", "Neutral", "Negative", "Other"}
	goals := []string{"A", "B", "", "C", "A"}
	var recs []types.CallRecord
	for i := 0; i < 53; i++ {
		recs = append(recs, call(segments[i%len(segments)], i%3 == 0, goals[i%len(goals)], at(1+i%20, i%24), "1000"))
	}
	m := Aggregate(recs, time.UTC)

	segSum, goalSum := 0, 0
	for _, s := range m.SegmentCounts {
		segSum += s.Count
	}
	for _, g := range m.GoalCounts {
		goalSum += g.Count
	}
	assert.Equal(t, m.TotalCalls, segSum)
	assert.Equal(t, m.TotalCalls, goalSum)
	assert.GreaterOrEqual(t, m.CompletionRatePercent, 0)
	assert.LessOrEqual(t, m.CompletionRatePercent, 100)
}

func TestAggregate_DailyKeepsSevenMostRecentActiveDays(t *testing.T) {
	var recs []types.CallRecord
	// activity on ten days with gaps; input order is shuffled
	for _, d := range []int{20, 2, 9, 5, 30, 12, 15, 1, 25, 28} {
		recs = append(recs, call("Neutral", true, "", at(d, 12), "1000"))
	}
	recs = append(recs, call("Neutral", true, "", at(30, 8), "1000"))

	m := Aggregate(recs, time.UTC)
	require.Len(t, m.DailyCallCounts, RecentDays)

	wantDays := []int{9, 12, 15, 20, 25, 28, 30}
	for i, b := range m.DailyCallCounts {
		assert.Equal(t, wantDays[i], b.Day.Day())
		assert.GreaterOrEqual(t, b.Count, 1)
		if i > 0 {
			assert.True(t, b.Day.After(m.DailyCallCounts[i-1].Day))
		}
	}
	assert.Equal(t, 2, m.DailyCallCounts[6].Count)
}

func TestAggregate_DayBoundaryFollowsLocation(t *testing.T) {
	recs := []types.CallRecord{
		call("Neutral", true, "", time.Date(2025, time.March, 3, 22, 0, 0, 0, time.UTC).UnixMilli(), "0"),
		call("Neutral", true, "", time.Date(2025, time.March, 4, 1, 0, 0, 0, time.UTC).UnixMilli(), "0"),
	}
	assert.Len(t, Aggregate(recs, time.UTC).DailyCallCounts, 2)

	// Both calls fall on Mar 3 five hours west of UTC.
	west := time.FixedZone("UTC-5", -5*3600)
	daily := Aggregate(recs, west).DailyCallCounts
	require.Len(t, daily, 1)
	assert.Equal(t, 2, daily[0].Count)
	assert.Equal(t, "Mon, Mar 3", daily[0].DayLabel)
}

func TestAggregate_Durations(t *testing.T) {
	recs := []types.CallRecord{
		call("Neutral", true, "", at(1, 1), "3661999"), // 3661 s
		call("Neutral", true, "", at(1, 1), "not-a-number"),
		call("Neutral", true, "", at(1, 1), "90000000"), // 25 h
	}
	m := Aggregate(recs, time.UTC)
	assert.Equal(t, 1, m.UnparsedDurations)
	assert.Equal(t, int64(3661+90000), m.TotalDurationSeconds)
	assert.Equal(t, "26:01:01", m.TotalDurationFormatted)
	// (3661 + 0 + 90000) / 3 = 31220.33 s
	assert.Equal(t, "520:20", m.AverageDurationFormatted)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, percent(0, 0))
	assert.Equal(t, 0, percent(0, 5))
	assert.Equal(t, 100, percent(5, 5))
	assert.Equal(t, 33, percent(1, 3))
	assert.Equal(t, 50, percent(1, 2))
	assert.Equal(t, 1, percent(1, 200))
}
