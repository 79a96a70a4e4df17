package model

import "time"

// PlayerProgress links a player to a game in the global catalog.
// Progress and RAProgress are percentages; nil means not recorded yet.
type PlayerProgress struct {
	ID         int64
	Player     string
	GameID     int64
	RAUser     string
	Notes      string
	Progress   *int
	RAProgress *int
	UpdatedAt  time.Time
}

// ProgressView is a player's progress joined with the game it refers to.
type ProgressView struct {
	Game     Game
	Progress PlayerProgress
}

// ProgressPercent returns the recorded progress, or 0 when none is set.
func (p PlayerProgress) ProgressPercent() int {
	if p.Progress == nil {
		return 0
	}
	return *p.Progress
}
