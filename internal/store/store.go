// Package store persists users and voting options. The ledger and auth
// services talk to these interfaces only; the gorm implementation is the
// production path and MemStore backs the tests.
//
// Every method that writes the coupled vote state (ClaimVote, ReleaseVote,
// AddVotes, MarkDeleted, ClearVotedFor) is a conditional update that either
// applies atomically or reports that its precondition no longer held. The
// ledger builds its read-modify-write guarantees on top of that contract.
package store

import (
	"context"

	"votebox/internal/models"
)

type UserStore interface {
	// Create persists a new user. Fails with a Conflict kind when the
	// username is taken, deleted rows included.
	Create(ctx context.Context, user *models.User) error

	// ByID returns the user regardless of its deleted flag.
	ByID(ctx context.Context, id uint) (*models.User, error)

	// ActiveByID returns a non-deleted user.
	ActiveByID(ctx context.Context, id uint) (*models.User, error)

	// ActiveByUsername returns a non-deleted user by exact username.
	ActiveByUsername(ctx context.Context, username string) (*models.User, error)

	// ByUsernameAnyState matches deleted rows too; registration uses it so
	// deleted usernames stay permanently reserved.
	ByUsernameAnyState(ctx context.Context, username string) (*models.User, error)

	// ListActive returns all non-deleted users.
	ListActive(ctx context.Context) ([]models.User, error)

	// ClaimVote sets votedFor to optionID iff the user is non-deleted and
	// has not voted. Returns false when the precondition failed.
	ClaimVote(ctx context.Context, userID, optionID uint) (bool, error)

	// ReleaseVote clears votedFor iff it currently equals optionID.
	ReleaseVote(ctx context.Context, userID, optionID uint) (bool, error)

	// MarkDeleted flips the deleted flag iff it was false.
	MarkDeleted(ctx context.Context, userID uint) (bool, error)

	// ClearVotedFor nulls votedFor on every user pointing at optionID and
	// returns how many were reset.
	ClearVotedFor(ctx context.Context, optionID uint) (int64, error)
}

type OptionStore interface {
	Create(ctx context.Context, option *models.Option) error

	// ByID returns the option regardless of its deleted flag.
	ByID(ctx context.Context, id uint) (*models.Option, error)

	// ActiveByID returns a non-deleted option.
	ActiveByID(ctx context.Context, id uint) (*models.Option, error)

	// ActiveByName returns a non-deleted option by exact name.
	ActiveByName(ctx context.Context, name string) (*models.Option, error)

	// ListActive returns non-deleted options sorted by ascending vote
	// count, ties broken by creation order.
	ListActive(ctx context.Context) ([]models.Option, error)

	// AddVotes adjusts the vote counter by delta. With activeOnly the
	// update applies only to a non-deleted option; a negative delta never
	// drives the counter below zero (the update simply does not apply).
	// Returns false when no row matched.
	AddVotes(ctx context.Context, id uint, delta int, activeOnly bool) (bool, error)

	// MarkDeleted flips the deleted flag iff it was false.
	MarkDeleted(ctx context.Context, id uint) (bool, error)
}
