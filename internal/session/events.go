package session

import (
	"context"
	"encoding/json"
	"log"
)

// EventsChannel is the redis pubsub channel carrying session events.
const EventsChannel = "session_events"

const EventLevelWon = "level_won"

type Event struct {
	Type       string `json:"type"`
	SessionID  string `json:"session_id"`
	PlayerID   int    `json:"player_id"`
	LevelID    int    `json:"level_id"`
	Strokes    int    `json:"strokes"`
	DurationMS int64  `json:"duration_ms"`
}

func (m *Manager) publish(ctx context.Context, ev Event) {
	if m.rdb == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[SESSION] Failed to marshal %s event: %v", ev.Type, err)
		return
	}
	if err := m.rdb.Publish(ctx, EventsChannel, data).Err(); err != nil {
		log.Printf("[SESSION] Failed to publish %s for %s: %v", ev.Type, ev.SessionID, err)
	}
}
