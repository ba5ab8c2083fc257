package main

import (
	"math"
	"testing"
	"time"
)

func TestMoodCountsFromTotals(t *testing.T) {
	// Four records, one of them a classifier error: the error shows up in
	// the neutral bucket, never in positive or negative.
	counts := moodCountsFromTotals(4, 2, 1)
	want := MoodCounts{Positive: 2, Neutral: 1, Negative: 1}
	if counts != want {
		t.Fatalf("counts = %+v, want %+v", counts, want)
	}
	if counts.Total() != 4 {
		t.Fatalf("total = %d, want 4", counts.Total())
	}
}

func TestPercentagesSumToHundred(t *testing.T) {
	cases := []MoodCounts{
		{Positive: 2, Neutral: 1, Negative: 1},
		{Positive: 1, Neutral: 1, Negative: 1},
		{Positive: 0, Neutral: 0, Negative: 7},
		{Positive: 3, Neutral: 0, Negative: 0},
		{Positive: 13, Neutral: 29, Negative: 5},
	}
	for _, c := range cases {
		pos, neu, neg := c.Percentages()
		if sum := pos + neu + neg; math.Abs(sum-100) > 1e-9 {
			t.Errorf("Percentages(%+v) sum = %v, want 100", c, sum)
		}
		if pos < 0 || neu < 0 || neg < 0 {
			t.Errorf("Percentages(%+v) = %v, %v, %v: negative share", c, pos, neu, neg)
		}
	}
}

func TestPercentagesZeroTotal(t *testing.T) {
	pos, neu, neg := MoodCounts{}.Percentages()
	if pos != 0 || neu != 0 || neg != 0 {
		t.Fatalf("expected all-zero percentages, got %v, %v, %v", pos, neu, neg)
	}
}

func TestDayRange(t *testing.T) {
	loc := time.FixedZone("UTC+3:30", 3*60*60+30*60)
	at := time.Date(2026, 2, 9, 17, 45, 12, 0, loc)

	from, to := dayRange(at)
	if !from.Equal(time.Date(2026, 2, 9, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected start: %v", from)
	}
	if !to.Equal(time.Date(2026, 2, 10, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected end: %v", to)
	}
	if from.Location() != loc {
		t.Fatalf("start lost its location: %v", from.Location())
	}
}
