package services

import (
	"time"

	"gamewish/internal/models"

	"go.uber.org/zap"
)

// Routing keys for domain events.
const (
	EventUserRegistered      = "user.registered"
	EventWishlistGameAdded   = "wishlist.game_added"
	EventWishlistGameRemoved = "wishlist.game_removed"
)

// EventPublisher sends domain events to a message bus.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// UserRegisteredEvent is published when a user record is created.
type UserRegisteredEvent struct {
	UserID     string          `json:"userId"`
	Username   string          `json:"username"`
	Provider   models.Provider `json:"provider"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// WishlistEvent is published when a wishlist changes.
type WishlistEvent struct {
	UserID     string    `json:"userId"`
	GameID     string    `json:"gameId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// publishEvent is best effort: a failed publish is logged and never fails
// the request that caused it.
func publishEvent(log *zap.Logger, events EventPublisher, routingKey string, payload any) {
	if events == nil {
		return
	}
	if err := events.Publish(routingKey, payload); err != nil {
		log.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
