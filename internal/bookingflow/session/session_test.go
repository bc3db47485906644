package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	flowerrors "salonbook/internal/bookingflow/errors"
	"salonbook/internal/bookingflow/workflow"
	"salonbook/pkg/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testClient() model.ClientIdentity {
	return model.ClientIdentity{ClientID: "c1", FirstName: "Noa", Contact: "+972501234567"}
}

func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore(time.Minute)
		},
		"redis": func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = rdb.Close() })
			return NewRedisStore(rdb, time.Minute)
		},
	}
}

func TestStore_Lifecycle(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			sess := New(testClient(), time.Now())
			if err := store.Create(ctx, sess); err != nil {
				t.Fatalf("create: %v", err)
			}
			if err := store.Create(ctx, sess); err == nil {
				t.Errorf("expected duplicate create to fail")
			}

			got, err := store.Get(ctx, sess.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Client != sess.Client || got.State.Selection.CurrentStep != workflow.StepBranch {
				t.Errorf("unexpected session %+v", got)
			}

			updated, err := store.Update(ctx, sess.ID, func(s *Session) error {
				s.State.Selection.Notes = "hello"
				return nil
			})
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if updated.State.Selection.Notes != "hello" {
				t.Errorf("update result missing change")
			}

			got, _ = store.Get(ctx, sess.ID)
			if got.State.Selection.Notes != "hello" {
				t.Errorf("update not persisted")
			}

			if err := store.Delete(ctx, sess.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := store.Get(ctx, sess.ID); !errors.Is(err, flowerrors.ErrSessionNotFound) {
				t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
			}
			if err := store.Delete(ctx, sess.ID); !errors.Is(err, flowerrors.ErrSessionNotFound) {
				t.Errorf("expected ErrSessionNotFound on second delete, got %v", err)
			}
		})
	}
}

func TestStore_UpdateAbortLeavesSessionUntouched(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			sess := New(testClient(), time.Now())
			if err := store.Create(ctx, sess); err != nil {
				t.Fatal(err)
			}

			abort := errors.New("abort")
			_, err := store.Update(ctx, sess.ID, func(s *Session) error {
				s.State.Selection.Notes = "should not persist"
				return abort
			})
			if !errors.Is(err, abort) {
				t.Fatalf("expected abort error, got %v", err)
			}

			got, _ := store.Get(ctx, sess.ID)
			if got.State.Selection.Notes != "" {
				t.Errorf("aborted update was persisted")
			}
		})
	}
}

func TestStore_UpdateMissing(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			_, err := newStore(t).Update(context.Background(), "missing", func(s *Session) error { return nil })
			if !errors.Is(err, flowerrors.ErrSessionNotFound) {
				t.Errorf("expected ErrSessionNotFound, got %v", err)
			}
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	sess := New(testClient(), now)
	if err := store.Create(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(context.Background(), sess.ID); !errors.Is(err, flowerrors.ErrSessionNotFound) {
		t.Errorf("expected expired session to be gone, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d", store.Len())
	}
}

func TestMemoryStore_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	sess := New(testClient(), time.Now())
	if err := store.Create(ctx, sess); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, sess.ID, func(s *Session) error {
				s.State.Selection.Notes += "x"
				return nil
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := store.Get(ctx, sess.ID)
	if len(got.State.Selection.Notes) != 50 {
		t.Errorf("expected 50 serialized updates, got %d", len(got.State.Selection.Notes))
	}
}

func TestRedisStore_ExpiryAndRetry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewRedisStore(rdb, time.Minute)

	sess := New(testClient(), time.Now())
	if err := store.Create(ctx, sess); err != nil {
		t.Fatal(err)
	}

	attempts := 0
	_, err := store.Update(ctx, sess.ID, func(s *Session) error {
		attempts++
		if attempts == 1 {
			// A foreign write between WATCH and EXEC forces a retry.
			raw, err := rdb.Get(ctx, key(sess.ID)).Bytes()
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if err := rdb.Set(ctx, key(sess.ID), raw, time.Hour).Err(); err != nil {
				t.Fatalf("set: %v", err)
			}
		}
		s.State.Selection.Notes = "retried"
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, flowerrors.ErrSessionNotFound) {
		t.Errorf("expected session to expire, got %v", err)
	}
}

func TestValidateID(t *testing.T) {
	if err := ValidateID(New(testClient(), time.Now()).ID); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateID("not-a-uuid"); !errors.Is(err, flowerrors.ErrInvalidSessionID) {
		t.Errorf("expected ErrInvalidSessionID, got %v", err)
	}
}

func TestReleaseStaleClaim(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		submitting  bool
		claim       *CommitClaim
		wantRelease bool
	}{
		{"idle", false, nil, false},
		{"live claim", true, &CommitClaim{Token: "t1", ExpiresAt: now.Add(time.Second)}, false},
		{"expired claim", true, &CommitClaim{Token: "t1", ExpiresAt: now.Add(-time.Second)}, true},
		{"submitting without claim", true, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := New(testClient(), now)
			sess.State.IsSubmitting = tt.submitting
			sess.Claim = tt.claim

			if got := sess.ReleaseStaleClaim(now); got != tt.wantRelease {
				t.Fatalf("expected released=%v, got %v", tt.wantRelease, got)
			}
			if tt.wantRelease && (sess.State.IsSubmitting || sess.Claim != nil) {
				t.Errorf("expected claim cleared, got submitting=%v claim=%+v", sess.State.IsSubmitting, sess.Claim)
			}
			if !tt.wantRelease && sess.State.IsSubmitting != tt.submitting {
				t.Errorf("submitting flag changed unexpectedly")
			}
		})
	}
}

func TestClaimSurvivesStoreRoundTrip(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			sess := New(testClient(), time.Now())
			if err := store.Create(ctx, sess); err != nil {
				t.Fatalf("create: %v", err)
			}

			expires := time.Now().Add(time.Minute).UTC().Truncate(time.Second)
			if _, err := store.Update(ctx, sess.ID, func(s *Session) error {
				s.State.IsSubmitting = true
				s.Claim = &CommitClaim{Token: "owner", ExpiresAt: expires}
				return nil
			}); err != nil {
				t.Fatalf("update: %v", err)
			}

			got, err := store.Get(ctx, sess.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !got.Holds("owner") || got.Holds("other") {
				t.Errorf("expected claim held by owner only, got %+v", got.Claim)
			}
			if !got.Claim.ExpiresAt.Equal(expires) {
				t.Errorf("expected expiry %v, got %v", expires, got.Claim.ExpiresAt)
			}
		})
	}
}
