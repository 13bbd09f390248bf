package models

import "github.com/google/uuid"

// Player is the metadata the pool provider exposes for an undrafted player.
type Player struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Position string    `json:"position"`
	Team     string    `json:"team"`
}
