package main

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrRecordNotFound means no sentiment record exists with the given ID.
	ErrRecordNotFound = errors.New("sentiment record not found")
	// ErrLabelAlreadySet means a reviewer already labeled the record; the
	// first label wins and later ones are ignored.
	ErrLabelAlreadySet = errors.New("label already set")
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sentiment_records (
		id         TEXT PRIMARY KEY,
		text       TEXT NOT NULL,
		sentiment  TEXT NOT NULL,
		score      REAL NOT NULL,
		label      TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sentiment_records_created_at ON sentiment_records(created_at);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// InsertSentimentRecord persists one classified message and returns the new
// record's ID. The reviewer label starts out NULL.
func InsertSentimentRecord(db *sql.DB, text string, sentiment Sentiment, score float64, createdAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO sentiment_records (id, text, sentiment, score, label, created_at)
		 VALUES (?, ?, ?, ?, NULL, ?)`,
		id, text, string(sentiment), score, createdAt,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateRecordLabel stores a reviewer's verdict. Only the first label for a
// record sticks: a second attempt returns ErrLabelAlreadySet, a missing
// record returns ErrRecordNotFound.
func UpdateRecordLabel(db *sql.DB, id, label string) error {
	res, err := db.Exec(
		`UPDATE sentiment_records SET label = ? WHERE id = ? AND label IS NULL`,
		label, id,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sentiment_records WHERE id = ?`, id).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return ErrRecordNotFound
	}
	return ErrLabelAlreadySet
}

func GetSentimentRecord(db *sql.DB, id string) (SentimentRecord, error) {
	var rec SentimentRecord
	var label sql.NullString
	err := db.QueryRow(
		`SELECT id, text, sentiment, score, label, created_at
		 FROM sentiment_records WHERE id = ?`,
		id,
	).Scan(&rec.ID, &rec.Text, &rec.Sentiment, &rec.Score, &label, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, ErrRecordNotFound
	}
	if err != nil {
		return rec, err
	}
	rec.Label = label.String
	return rec, nil
}

// CountsForDay tallies the records created during the calendar day
// containing `day` (midnight to midnight in day's location).
func CountsForDay(db *sql.DB, day time.Time) (MoodCounts, error) {
	from, to := dayRange(day)

	var total, positive, negative int
	err := db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN sentiment = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN sentiment = ? THEN 1 ELSE 0 END), 0)
		 FROM sentiment_records
		 WHERE created_at >= ? AND created_at < ?`,
		string(SentimentPositive), string(SentimentNegative), from, to,
	).Scan(&total, &positive, &negative)
	if err != nil {
		return MoodCounts{}, err
	}
	return moodCountsFromTotals(total, positive, negative), nil
}

// MoodHistory returns per-day counts over all stored records, oldest day
// first. Days are bucketed in loc, not in SQL, so the report's notion of
// "day" follows the configured timezone rather than the storage format.
func MoodHistory(db *sql.DB, loc *time.Location) ([]DailyMood, error) {
	rows, err := db.Query(
		`SELECT sentiment, created_at FROM sentiment_records ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []DailyMood
	index := make(map[string]int)
	for rows.Next() {
		var sentiment Sentiment
		var createdAt time.Time
		if err := rows.Scan(&sentiment, &createdAt); err != nil {
			return nil, err
		}

		local := createdAt.In(loc)
		key := local.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			day, _ := dayRange(local)
			history = append(history, DailyMood{Day: day})
			i = len(history) - 1
			index[key] = i
		}

		switch sentiment {
		case SentimentPositive:
			history[i].Counts.Positive++
		case SentimentNegative:
			history[i].Counts.Negative++
		default:
			history[i].Counts.Neutral++
		}
	}
	return history, rows.Err()
}
