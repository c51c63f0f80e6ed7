package service

import "promptparty/internal/model"

// Notifier is the push collaborator. Delivery is fire-and-forget: a
// failed push is logged by the implementation and never affects the
// game-state transaction that produced it.
type Notifier interface {
	Notify(gameID string, playerIDs []string, kind model.EventKind, payload interface{})
	NotifyGame(gameID string, kind model.EventKind, payload interface{})
}
