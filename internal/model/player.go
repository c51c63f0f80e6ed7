package model

import "time"

// RandoCardrissian is the sentinel id of the automated house player. He is
// dealt responses straight from the pool, never judges and never collects
// prizes.
const RandoCardrissian = "rando-cardrissian"

type Player struct {
	ID                 string         `json:"id" bson:"playerId"`
	GameID             string         `json:"gameId" bson:"gameId"`
	Name               string         `json:"name" bson:"name"`
	AvatarURL          string         `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`
	IsRandoCardrissian bool           `json:"isRandoCardrissian" bson:"isRandoCardrissian"`
	IsInactive         bool           `json:"isInactive" bson:"isInactive"`
	Hand               []ResponseCard `json:"hand,omitempty" bson:"hand,omitempty"`
	Prizes             []PromptCard   `json:"prizes,omitempty" bson:"prizes,omitempty"`
	JoinedAt           time.Time      `json:"joinedAt" bson:"joinedAt"`
}

// HoldsAll reports whether every cid is currently in the player's hand.
func (p *Player) HoldsAll(cids []string) bool {
	for _, cid := range cids {
		found := false
		for _, c := range p.Hand {
			if c.CID == cid {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
