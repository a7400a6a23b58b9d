package models

import (
	"fmt"
	"strconv"
)

// Owner identifies who played a game: a registered user or a guest label.
// Exactly one of UserID and GuestName is set.
type Owner struct {
	UserID    int64  `json:"user_id,omitempty"`
	GuestName string `json:"guest_name,omitempty"`
}

// NewUserOwner creates an owner for a registered user
func NewUserOwner(userID int64) Owner {
	return Owner{UserID: userID}
}

// NewGuestOwner creates an owner for a guest label
func NewGuestOwner(label string) Owner {
	return Owner{GuestName: label}
}

// IsGuest reports whether the owner is an anonymous guest
func (o Owner) IsGuest() bool {
	return o.UserID == 0
}

// Validate ensures exactly one identity is present
func (o Owner) Validate() error {
	switch {
	case o.UserID != 0 && o.GuestName != "":
		return fmt.Errorf("owner cannot be both user %d and guest %q", o.UserID, o.GuestName)
	case o.UserID == 0 && o.GuestName == "":
		return fmt.Errorf("owner has no identity")
	case o.UserID < 0:
		return fmt.Errorf("invalid user ID %d", o.UserID)
	}
	return nil
}

// String returns a display label for logs and announcements
func (o Owner) String() string {
	if o.IsGuest() {
		return o.GuestName
	}
	return "user:" + strconv.FormatInt(o.UserID, 10)
}
