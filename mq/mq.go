package mq

import (
	"encoding/json"
	"log"
	"time"

	"agromandi/globals"
	"agromandi/rdx"
)

const channel = "marketplace-events"

// Event describes a marketplace lifecycle change; consumers decide what
// to do with it (cache refresh, auditing). Delivery of user-facing
// notifications is out of scope.
type Event struct {
	Type       string    `json:"type"` // product-created, bid-placed, bid-accepted, ...
	EntityType string    `json:"entityType"`
	EntityID   int       `json:"entityId"`
	ActorID    int       `json:"actorId"`
	At         time.Time `json:"at"`
}

// Emit publishes the event to Redis pub/sub. No-op without Redis.
func Emit(eventType, entityType string, entityID, actorID int) {
	if rdx.Conn == nil {
		return
	}
	data, err := json.Marshal(Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		At:         time.Now(),
	})
	if err != nil {
		log.Printf("mq: marshal event: %v", err)
		return
	}
	if err := rdx.Conn.Publish(globals.Ctx, channel, data).Err(); err != nil {
		log.Printf("mq: publish %s: %v", eventType, err)
	}
}

// StartWorker consumes lifecycle events and keeps derived Redis state
// fresh: any product or bid mutation invalidates the cached listing.
func StartWorker() {
	if rdx.Conn == nil {
		return
	}
	sub := rdx.Conn.Subscribe(globals.Ctx, channel)
	ch := sub.Channel()

	log.Println("mq: worker listening for marketplace events")

	for msg := range ch {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("mq: bad event payload: %v", err)
			continue
		}
		switch event.EntityType {
		case "product", "bid":
			if err := rdx.RdxDel("cache:products"); err != nil {
				log.Printf("mq: drop product cache: %v", err)
			}
		}
	}
}
