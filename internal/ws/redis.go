package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/shootyourshot/backend/internal/session"
)

// StartEventSubscriber relays session events published by any instance to
// the sockets attached here.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; session event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, session.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		<-ctx.Done()
		pubsub.Close()
	}()
	go func() {
		log.Printf("[WS] %s subscriber started", session.EventsChannel)
		for msg := range ch {
			relayEvent(hub, []byte(msg.Payload))
		}
	}()
}

func relayEvent(hub *Hub, payload []byte) {
	var ev session.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Printf("[WS] invalid event payload: %v", err)
		return
	}

	switch ev.Type {
	case session.EventLevelWon:
		if hub.RoomSize(ev.SessionID) == 0 {
			return
		}
		log.Printf("[WS] broadcasting level_won for session %s (strokes=%d)", ev.SessionID, ev.Strokes)
		hub.BroadcastToSession(ev.SessionID, outbound{Type: TypeLevelWon, Data: ev})
	default:
		log.Printf("[WS] unknown event type: %s", ev.Type)
	}
}
