package service

import (
	"context"
	"encoding/json"
	"log"

	"promptparty/internal/model"
	"promptparty/internal/repository"
)

// ProfileSync propagates user profile edits to every game-scoped player
// record that user owns.
type ProfileSync struct {
	players repository.PlayerRepo
}

func NewProfileSync(players repository.PlayerRepo) *ProfileSync {
	return &ProfileSync{players: players}
}

// HandleRaw adapts a pub/sub payload into HandleProfileChanged.
func (s *ProfileSync) HandleRaw(ctx context.Context, payload []byte) error {
	var ev model.ProfileChanged
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	return s.HandleProfileChanged(ctx, ev)
}

func (s *ProfileSync) HandleProfileChanged(ctx context.Context, ev model.ProfileChanged) error {
	log.Printf("user %s changed their profile, updating their players", ev.UserID)
	return s.players.UpdateProfile(ctx, ev.UserID, ev.Name, ev.AvatarURL)
}
