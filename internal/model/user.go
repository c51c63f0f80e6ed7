package model

import "time"

// User is the account-level profile. Game-scoped Player records copy its
// name and avatar and are refreshed by the profile fan-out when it changes.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	AvatarURL string    `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
