package services

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Exchange and routing keys of activity events.
const (
	ActivityExchange        = "activity"
	RoutingUserRegistered   = "user.registered"
	RoutingSessionCompleted = "session.completed"
)

// EventPublisher sends a message to a broker. *rabbitmq.Client implements it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// UserRegisteredEvent is published after a successful registration.
type UserRegisteredEvent struct {
	UserID     string    `json:"userId"`
	RegisterAt time.Time `json:"registeredAt"`
}

// SessionCompletedEvent is published after a completion was recorded.
type SessionCompletedEvent struct {
	UserID        string    `json:"userId"`
	SessionID     string    `json:"sessionId"`
	StackID       string    `json:"stackId,omitempty"`
	TotalDuration int64     `json:"totalDuration"`
	ItemCount     int       `json:"itemCount"`
	StreakCurrent int       `json:"streakCurrent"`
	CompletedAt   time.Time `json:"completedAt"`
}

// publishEvent marshals payload and publishes it. Failures are logged and
// never fail the calling operation.
func publishEvent(p EventPublisher, logger *zap.Logger, routingKey string, payload interface{}) {
	if p == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("failed to marshal event", zap.String("routing_key", routingKey), zap.Error(err))
		return
	}
	if err := p.Publish(ActivityExchange, routingKey, body); err != nil {
		logger.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
