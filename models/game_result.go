package models

import (
	"time"
)

// GameResult is the immutable record of a finished game
type GameResult struct {
	ID           int64     `db:"id" json:"id"`
	GameID       string    `db:"game_id" json:"game_id"`
	UserID       *int64    `db:"user_id" json:"user_id,omitempty"`
	GuestName    *string   `db:"guest_name" json:"guest_name,omitempty"`
	Mode         string    `db:"mode" json:"mode"`
	Secret       int       `db:"secret" json:"secret"`
	AttemptsUsed int       `db:"attempts_used" json:"attempts_used"`
	MaxAttempts  int       `db:"max_attempts" json:"max_attempts"`
	UsedHints    int       `db:"used_hints" json:"used_hints"`
	Score        int       `db:"score" json:"score"`
	Won          bool      `db:"won" json:"won"`
	PlayedAt     time.Time `db:"played_at" json:"played_at"`
}

// Owner returns the identity the result belongs to
func (r *GameResult) Owner() Owner {
	if r.UserID != nil {
		return NewUserOwner(*r.UserID)
	}
	if r.GuestName != nil {
		return NewGuestOwner(*r.GuestName)
	}
	return Owner{}
}

// SetOwner stores the owner in the nullable owner columns
func (r *GameResult) SetOwner(owner Owner) {
	r.UserID, r.GuestName = nil, nil
	if owner.IsGuest() {
		name := owner.GuestName
		r.GuestName = &name
		return
	}
	id := owner.UserID
	r.UserID = &id
}
