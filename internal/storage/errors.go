package storage

import "errors"

var (
	// ErrNotFound is returned when no row matches a lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEntry is returned when an email has already entered the giveaway counter.
	ErrDuplicateEntry = errors.New("email already entered in giveaway")
	// ErrUsernameTaken is returned when a username is already registered, ignoring case.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrGiveawayInactive is returned when entering a deactivated giveaway.
	ErrGiveawayInactive = errors.New("giveaway is not active")
	// ErrGiveawayFull is returned when a giveaway reached its maximum number of entries.
	ErrGiveawayFull = errors.New("giveaway has reached its maximum number of entries")
	// ErrAlreadyEntered is returned when a user enters the same giveaway twice.
	ErrAlreadyEntered = errors.New("user already entered this giveaway")
)
