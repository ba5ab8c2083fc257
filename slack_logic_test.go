package main

import "testing"

func TestShouldAlert(t *testing.T) {
	if shouldAlert(SentimentNegative, 0.6, 0.6) {
		t.Fatal("score equal to threshold must not alert")
	}
	if !shouldAlert(SentimentNegative, 0.61, 0.6) {
		t.Fatal("score above threshold must alert")
	}
	if shouldAlert(SentimentPositive, 0.99, 0.6) {
		t.Fatal("positive sentiment must not alert")
	}
	if shouldAlert(SentimentNeutral, 0.99, 0.6) {
		t.Fatal("neutral sentiment must not alert")
	}
	if shouldAlert(SentimentError, 0.99, 0.6) {
		t.Fatal("error sentiment must not alert")
	}
}

func TestParseFeedbackValue(t *testing.T) {
	label, id, err := parseFeedbackValue("label_negative:123e4567-e89b-12d3-a456-426614174000")
	if err != nil {
		t.Fatalf("parseFeedbackValue failed: %v", err)
	}
	if label != LabelNegative || id != "123e4567-e89b-12d3-a456-426614174000" {
		t.Fatalf("unexpected parse: label=%q id=%q", label, id)
	}

	label, id, err = parseFeedbackValue(" label_not_negative:abc ")
	if err != nil {
		t.Fatalf("parseFeedbackValue with padding failed: %v", err)
	}
	if label != LabelNotNegative || id != "abc" {
		t.Fatalf("unexpected parse: label=%q id=%q", label, id)
	}

	if _, _, err := parseFeedbackValue("label_negative:"); err == nil {
		t.Fatal("expected error for empty record id")
	}
	if _, _, err := parseFeedbackValue("something_else:abc"); err == nil {
		t.Fatal("expected error for unknown prefix")
	}
	if _, _, err := parseFeedbackValue(""); err == nil {
		t.Fatal("expected error for empty value")
	}
}

func TestFormatSource(t *testing.T) {
	if got := formatSource("U123"); got != "<@U123>" {
		t.Errorf("got %q, want %q", got, "<@U123>")
	}
	if got := formatSource(""); got != "unknown" {
		t.Errorf("got %q, want %q", got, "unknown")
	}
}
