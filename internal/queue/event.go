// Package queue defines message payloads exchanged over the message broker.
package queue

// UserRegisteredEvent is published after a user account is created. It
// carries enough information for downstream consumers (welcome mail,
// audit trail, analytics) without querying the primary database. The
// password hash is never part of the payload.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	RegisteredAt string `json:"registered_at"`
}

// UserRegisteredQueue is the durable queue the event is published to
// and consumed from.
const UserRegisteredQueue = "user.registered"
