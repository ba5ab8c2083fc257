package main

import "time"

// Sentiment is the automated classification outcome for one message.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentError    Sentiment = "ERROR"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative, SentimentError:
		return true
	}
	return false
}

// Reviewer labels carried by the alert buttons.
const (
	LabelNegative    = "negative"
	LabelNotNegative = "not_negative"
)

type SentimentRecord struct {
	ID        string
	Text      string // normalized text at classification time
	Sentiment Sentiment
	Score     float64
	Label     string // reviewer correction, empty until someone decides
	CreatedAt time.Time
}

// MoodCounts holds one day's sentiment tallies. Neutral is the residual:
// total minus positive minus negative, so ERROR records count toward the
// total but toward neither side.
type MoodCounts struct {
	Positive int
	Neutral  int
	Negative int
}

func moodCountsFromTotals(total, positive, negative int) MoodCounts {
	return MoodCounts{
		Positive: positive,
		Neutral:  total - positive - negative,
		Negative: negative,
	}
}

func (m MoodCounts) Total() int {
	return m.Positive + m.Neutral + m.Negative
}

// Percentages returns the positive/neutral/negative shares of the day.
// Neutral is again the residual, so the three always cover the full 100.
func (m MoodCounts) Percentages() (pos, neu, neg float64) {
	n := m.Total()
	if n == 0 {
		return 0, 0, 0
	}
	pos = 100 * float64(m.Positive) / float64(n)
	neg = 100 * float64(m.Negative) / float64(n)
	return pos, 100 - pos - neg, neg
}

// DailyMood pairs a calendar day (midnight in the reporting location) with
// that day's counts.
type DailyMood struct {
	Day    time.Time
	Counts MoodCounts
}

// dayRange returns the [midnight, next midnight) window containing t, in t's
// location.
func dayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
