// Package ledger enforces the one-vote-per-user rule and keeps every
// option's vote count consistent with the set of users pointing at it. It is
// the only component that writes the (user.votedFor, option.voteCount) pair.
//
// Coupled writes are built from the store's conditional updates: first the
// user's vote is claimed (a compare-and-swap on votedFor), then the option
// counter is adjusted. When the second leg cannot apply — precondition lost
// or store failure — the first is compensated, so no quiescent state ever
// shows a pointer and a count that disagree.
package ledger

import (
	"context"
	"strings"
	"time"

	"votebox/internal/apperr"
	"votebox/internal/event"
	"votebox/internal/models"
	"votebox/internal/store"

	"github.com/sirupsen/logrus"
)

// claimAttempts bounds the retry loop when a vote claim loses a race but a
// re-read shows the user free to vote again (e.g. an admin reset landed in
// between).
const claimAttempts = 3

type Ledger struct {
	users   store.UserStore
	options store.OptionStore
	events  event.Publisher
}

func New(users store.UserStore, options store.OptionStore, events event.Publisher) *Ledger {
	if events == nil {
		events = event.NoopPublisher{}
	}
	return &Ledger{users: users, options: options, events: events}
}

// CreateOption creates a named option and spends the creator's vote on it.
// The new option starts at voteCount 1: the creator is its first voter.
func (l *Ledger) CreateOption(ctx context.Context, userID uint, name, description string) (*models.Option, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.E(apperr.KindValidation, "Missing name")
	}
	if strings.TrimSpace(description) == "" {
		return nil, apperr.E(apperr.KindValidation, "Missing description")
	}

	user, err := l.users.ActiveByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasVoted() {
		return nil, apperr.E(apperr.KindAlreadyVoted, "This user already voted")
	}

	if _, err := l.options.ActiveByName(ctx, name); err == nil {
		return nil, apperr.E(apperr.KindConflict, "Voting with that name already exists")
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	option := models.Option{Name: name, Description: description, VoteCount: 1}
	if err := l.options.Create(ctx, &option); err != nil {
		return nil, err
	}

	claimed, err := l.users.ClaimVote(ctx, userID, option.ID)
	if err != nil {
		l.retractOption(ctx, option.ID)
		return nil, err
	}
	if !claimed {
		// The creator voted (or was deleted) between the check and the
		// claim. The fresh option was live in that window, so retract it
		// the way an admin delete would: mark it deleted, then reset any
		// interim voters to NotVoted. Nothing is left pointing at it.
		l.retractOption(ctx, option.ID)
		return nil, apperr.E(apperr.KindAlreadyVoted, "This user already voted")
	}

	l.emit(event.Event{Type: event.TypeOptionCreated, UserID: userID, OptionID: option.ID, VoteCount: 1})
	return &option, nil
}

// Vote spends the user's vote on an existing option.
func (l *Ledger) Vote(ctx context.Context, userID, optionID uint) error {
	if _, err := l.options.ActiveByID(ctx, optionID); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return apperr.E(apperr.KindNotFound, "Voting with that ID does not exist")
		}
		return err
	}

	if err := l.claim(ctx, userID, optionID); err != nil {
		return err
	}

	counted, err := l.options.AddVotes(ctx, optionID, 1, true)
	if err != nil {
		// The claim went through but the count did not. Give the vote
		// back so the pointer and the count cannot stay in disagreement.
		l.releaseClaim(ctx, userID, optionID)
		return err
	}
	if !counted {
		// The option was deleted after the claim. Give the vote back; the
		// bulk reset of the delete may already have done so.
		l.releaseClaim(ctx, userID, optionID)
		return apperr.E(apperr.KindNotFound, "Voting with that ID does not exist")
	}

	l.emit(event.Event{Type: event.TypeVoteCast, UserID: userID, OptionID: optionID})
	return nil
}

// claim spends the user's vote, retrying when the CAS loses a race that a
// re-read shows was transient.
func (l *Ledger) claim(ctx context.Context, userID, optionID uint) error {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		claimed, err := l.users.ClaimVote(ctx, userID, optionID)
		if err != nil {
			return err
		}
		if claimed {
			return nil
		}

		user, err := l.users.ActiveByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.HasVoted() {
			return apperr.E(apperr.KindAlreadyVoted, "This user already voted")
		}
		// Not voted on re-read: the claim lost to a writer that has since
		// been undone. Try again.
	}
	return apperr.E(apperr.KindStoreUnavailable, "Could not record vote, please retry")
}

// DeleteUser soft-deletes a user and takes their vote, if any, off the
// referenced option before the delete becomes visible. A second delete of
// the same id reports NotFound and never decrements twice.
func (l *Ledger) DeleteUser(ctx context.Context, userID uint) error {
	user, err := l.users.ByID(ctx, userID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return apperr.E(apperr.KindNotFound, "User with that ID does not exist")
		}
		return err
	}
	if user.Deleted {
		return apperr.E(apperr.KindNotFound, "User with that ID does not exist")
	}

	if user.VotedFor != nil {
		optionID := *user.VotedFor
		// Only the request that wins the release performs the decrement,
		// so racing deletes of one user cannot double-decrement.
		released, err := l.users.ReleaseVote(ctx, userID, optionID)
		if err != nil {
			return err
		}
		if released {
			decremented, err := l.options.AddVotes(ctx, optionID, -1, false)
			if err != nil {
				// The release went through but the decrement did not.
				// Re-claim the vote so a retry of the delete starts from
				// consistent books.
				if reclaimed, reErr := l.users.ClaimVote(ctx, userID, optionID); reErr != nil || !reclaimed {
					logrus.WithError(reErr).WithFields(logrus.Fields{
						"user_id": userID, "option_id": optionID,
					}).Error("failed to restore vote after decrement failure")
				}
				return err
			}
			if !decremented {
				if _, lookErr := l.options.ByID(ctx, optionID); apperr.KindOf(lookErr) == apperr.KindNotFound {
					return apperr.E(apperr.KindInvariantViolation, "Voting is null!")
				}
				// Count already at zero: floored rather than driven
				// negative. The books were wrong before this call.
				logrus.WithFields(logrus.Fields{
					"user_id": userID, "option_id": optionID,
				}).Error("vote count already zero while removing voter")
			}
		}
	}

	if _, err := l.users.MarkDeleted(ctx, userID); err != nil {
		return err
	}

	l.emit(event.Event{Type: event.TypeUserDeleted, UserID: userID})
	return nil
}

// DeleteOption soft-deletes an option and returns everyone who voted for it
// to the not-voted state. The option is marked deleted before the pointer
// reset so a concurrent voter cannot latch onto it mid-reset.
func (l *Ledger) DeleteOption(ctx context.Context, optionID uint) error {
	option, err := l.options.ByID(ctx, optionID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return apperr.E(apperr.KindNotFound, "Voting with that ID does not exist")
		}
		return err
	}

	if !option.Deleted {
		if _, err := l.options.MarkDeleted(ctx, optionID); err != nil {
			return err
		}
	}

	reset, err := l.users.ClearVotedFor(ctx, optionID)
	if err != nil {
		return err
	}

	l.emit(event.Event{Type: event.TypeOptionDeleted, OptionID: optionID})
	logrus.WithFields(logrus.Fields{"option_id": optionID, "voters_reset": reset}).Info("option deleted")
	return nil
}

// ListOptions returns the non-deleted options, ascending by vote count.
func (l *Ledger) ListOptions(ctx context.Context) ([]models.Option, error) {
	return l.options.ListActive(ctx)
}

// ListUsers returns the non-deleted users for the admin listing.
func (l *Ledger) ListUsers(ctx context.Context) ([]models.User, error) {
	return l.users.ListActive(ctx)
}

// Me returns the non-deleted user behind an authenticated request.
func (l *Ledger) Me(ctx context.Context, userID uint) (*models.User, error) {
	return l.users.ActiveByID(ctx, userID)
}

// releaseClaim gives a claimed vote back, best-effort. It runs when the
// paired counter update could not be applied.
func (l *Ledger) releaseClaim(ctx context.Context, userID, optionID uint) {
	if _, err := l.users.ReleaseVote(ctx, userID, optionID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": userID, "option_id": optionID,
		}).Error("failed to release vote after counting failed")
	}
}

// retractOption undoes a fresh option whose creator's claim never landed.
// It follows the DeleteOption sequence — deleted first, then the pointer
// reset — so any user who voted for the option while it was briefly live is
// returned to NotVoted rather than left dangling.
func (l *Ledger) retractOption(ctx context.Context, optionID uint) {
	if _, err := l.options.MarkDeleted(ctx, optionID); err != nil {
		logrus.WithError(err).WithField("option_id", optionID).
			Error("failed to retract option after lost claim")
		return
	}
	if _, err := l.users.ClearVotedFor(ctx, optionID); err != nil {
		logrus.WithError(err).WithField("option_id", optionID).
			Error("failed to reset voters of retracted option")
	}
}

func (l *Ledger) emit(ev event.Event) {
	ev.Timestamp = time.Now()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.events.Publish(ctx, ev); err != nil {
			logrus.WithError(err).WithField("type", ev.Type).Warn("event publish failed")
		}
	}()
}
