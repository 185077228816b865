package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// InsertEvent appends an analytics event. Payload may be nil.
func (db *DB) InsertEvent(ctx context.Context, userID uuid.UUID, eventType string, payload any) error {
	payloadJSON := []byte("{}")
	if payload != nil {
		var err error
		payloadJSON, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal event payload: %w", err)
		}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO analytics_events (user_id, event_type, payload) VALUES ($1, $2, $3)`,
		userID, eventType, payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event %s: %w", eventType, err)
	}
	return nil
}

// EventCount is one row of the per-type event summary.
type EventCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// SummarizeEvents aggregates a user's events per type
func (db *DB) SummarizeEvents(ctx context.Context, userID uuid.UUID) ([]EventCount, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT event_type, COUNT(*) FROM analytics_events
		 WHERE user_id = $1 GROUP BY event_type ORDER BY COUNT(*) DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize events: %w", err)
	}
	defer rows.Close()

	var counts []EventCount
	for rows.Next() {
		var c EventCount
		if err := rows.Scan(&c.EventType, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, nil
}
