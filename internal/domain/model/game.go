package model

import "time"

// Game is an entry in the global game catalog shared by all players.
type Game struct {
	ID           int64
	Title        string
	ReleaseYear  int
	Platform     string
	Setting      string // Genre or setting, as entered by players.
	RetroArchURL string
	CoverURL     string
	CreatedAt    time.Time
}

// GameInput carries the fields a player supplies when adding a game.
// Empty fields may be filled by Autofill before the game is stored.
type GameInput struct {
	Title        string
	ReleaseYear  int
	Platform     string
	Setting      string
	RetroArchURL string
	CoverURL     string
}

// Merge fills the empty fields of in with values from other. Fields already
// set on in are kept.
func (in GameInput) Merge(other GameInput) GameInput {
	if in.ReleaseYear == 0 {
		in.ReleaseYear = other.ReleaseYear
	}
	if in.Platform == "" {
		in.Platform = other.Platform
	}
	if in.Setting == "" {
		in.Setting = other.Setting
	}
	if in.RetroArchURL == "" {
		in.RetroArchURL = other.RetroArchURL
	}
	if in.CoverURL == "" {
		in.CoverURL = other.CoverURL
	}
	return in
}
