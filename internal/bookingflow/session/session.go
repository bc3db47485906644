// Package session persists in-progress booking attempts between HTTP requests.
package session

import (
	"context"
	"time"

	flowerrors "salonbook/internal/bookingflow/errors"
	"salonbook/internal/bookingflow/workflow"
	"salonbook/pkg/model"

	"github.com/google/uuid"
)

type Session struct {
	ID        string               `json:"id"`
	Client    model.ClientIdentity `json:"client"`
	State     workflow.State       `json:"state"`
	Claim     *CommitClaim         `json:"claim,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// CommitClaim marks a commit in flight. Only the holder of Token may write
// the commit outcome back, and a claim past ExpiresAt counts as released.
type CommitClaim struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Holds reports whether token still owns the session's commit claim.
func (s *Session) Holds(token string) bool {
	return s.Claim != nil && s.Claim.Token == token
}

// ReleaseStaleClaim drops a submitting flag whose claim has expired, or that
// carries no claim at all. It reports whether anything changed.
func (s *Session) ReleaseStaleClaim(now time.Time) bool {
	if !s.State.IsSubmitting {
		return false
	}
	if s.Claim != nil && now.Before(s.Claim.ExpiresAt) {
		return false
	}
	s.State.IsSubmitting = false
	s.Claim = nil
	return true
}

// UpdateFunc mutates a session in place. Returning an error aborts the update
// and leaves the stored session untouched.
type UpdateFunc func(sess *Session) error

// Store keeps sessions for a bounded time. Update is an atomic read-modify-write.
type Store interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error)
	Delete(ctx context.Context, id string) error
}

func New(client model.ClientIdentity, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Client:    client,
		State:     workflow.New().Snapshot(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return flowerrors.ErrInvalidSessionID
	}
	return nil
}
