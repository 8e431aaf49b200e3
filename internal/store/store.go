// Package store implements the alert store: the in-memory set of active
// alerts backed by a persistent dismissal log (spec.md §4.11). It owns
// dedup, dismissal suppression, and the two dismissal protocols; detectors
// never write to it directly except through StoreAlert.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/localhealth/coherence-engine/pkg/alert"
	"github.com/localhealth/coherence-engine/pkg/repository"
)

// Store is the readers-writer-lock-guarded in-memory alert list (spec.md
// §5 "Alert store ... guarded by a readers-writer lock").
type Store struct {
	mu     sync.RWMutex
	alerts []*alert.Alert

	repo repository.AlertRepository
}

// New constructs an empty Store backed by repo's dismissal log.
func New(repo repository.AlertRepository) *Store {
	return &Store{repo: repo}
}

// StoreAlert implements spec.md §4.11 store_alert: checks the dismissal log,
// then the in-memory active list, for an equivalent (kind, entity-id set)
// before appending. Returns false without mutating state if either check
// finds a match — idempotent per spec.md §5 and testable property 5/6.
func (s *Store) StoreAlert(ctx context.Context, a *alert.Alert) (bool, error) {
	dismissed, err := s.repo.IsDismissed(ctx, a.Kind, a.EntityIDs)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	if dismissed {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := entitySetKey(a.Kind, a.EntityIDs)
	for _, existing := range s.alerts {
		if existing.Dismissed {
			continue
		}
		if entitySetKey(existing.Kind, existing.EntityIDs) == key {
			return false, nil
		}
	}

	s.alerts = append(s.alerts, a)
	return true, nil
}

// entitySetKey is the in-memory equivalent of alert.DismissalKey: same
// (kind, sorted unique entity-id set) shape, set equality order-independent
// (spec.md §4.11 (b)).
func entitySetKey(kind alert.Kind, entityIDs []uuid.UUID) string {
	return string(kind) + ":" + strings.Join(alert.SortedIDSet(entityIDs), ",")
}

// GetActive implements spec.md §4.11 get_active: non-dismissed alerts, in
// store-insertion order, optionally filtered by kind. Every returned alert is
// marked Surfaced (spec.md §3), so this takes the write lock rather than the
// read lock spec.md §5 describes for queries — returning an alert for
// display is no longer read-only once Surfaced is tracked.
func (s *Store) GetActive(kind *alert.Kind) []*alert.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*alert.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if a.Dismissed {
			continue
		}
		if kind != nil && a.Kind != *kind {
			continue
		}
		a.Surface()
		out = append(out, a)
	}
	return out
}

// GetRelevant implements spec.md §4.11 get_relevant: active, non-dismissed
// alerts matching by entity id or by a case-insensitive keyword appearing
// in the patient message. Takes the write lock for the same reason as
// GetActive: matched alerts are marked Surfaced.
func (s *Store) GetRelevant(entityIDs []uuid.UUID, keywords []string) []*alert.Alert {
	entitySet := make(map[uuid.UUID]struct{}, len(entityIDs))
	for _, id := range entityIDs {
		entitySet[id] = struct{}{}
	}
	lowerKeywords := make([]string, len(keywords))
	for i, k := range keywords {
		lowerKeywords[i] = strings.ToLower(k)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*alert.Alert, 0)
	for _, a := range s.alerts {
		if a.Dismissed {
			continue
		}
		if matchesEntity(a, entitySet) || matchesKeyword(a, lowerKeywords) {
			a.Surface()
			out = append(out, a)
		}
	}
	return out
}

func matchesEntity(a *alert.Alert, entitySet map[uuid.UUID]struct{}) bool {
	for _, id := range a.EntityIDs {
		if _, ok := entitySet[id]; ok {
			return true
		}
	}
	return false
}

func matchesKeyword(a *alert.Alert, lowerKeywords []string) bool {
	lowerMsg := strings.ToLower(a.Message)
	for _, k := range lowerKeywords {
		if k != "" && strings.Contains(lowerMsg, k) {
			return true
		}
	}
	return false
}

// GetCritical implements spec.md §4.11 get_critical: active alerts with
// severity Critical (testable property 10). Only the returned alerts are
// marked Surfaced.
func (s *Store) GetCritical() []*alert.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*alert.Alert, 0)
	for _, a := range s.alerts {
		if a.Dismissed || a.Severity != alert.SeverityCritical {
			continue
		}
		a.Surface()
		out = append(out, a)
	}
	return out
}

// Dismiss implements spec.md §4.11 dismiss: single-step dismissal, fails
// for Critical alerts. Persists the dismissal record before marking the
// in-memory alert dismissed, so a persistence failure never leaves the
// in-memory flag set (spec.md §5 consistency). now is passed in rather than
// read from the clock so dismissal is as deterministic and testable as
// detection (spec.md §3 Dismissal "Timestamp").
func (s *Store) Dismiss(ctx context.Context, alertID uuid.UUID, reason string, actor alert.Actor, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.findLocked(alertID)
	if err != nil {
		return err
	}
	if a.Severity.Critical() {
		return alert.ErrCriticalRequiresTwoStep
	}

	d := alert.Dismissal{At: now, Reason: reason, Actor: actor}
	if err := s.persistDismissal(ctx, a, d); err != nil {
		return err
	}
	return a.Dismiss(d)
}

// DismissCritical implements spec.md §4.11 dismiss_critical.
func (s *Store) DismissCritical(ctx context.Context, alertID uuid.UUID, reason string, twoStepConfirmed bool, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.findLocked(alertID)
	if err != nil {
		return err
	}
	if !a.Severity.Critical() {
		return alert.ErrNotCriticalAlert
	}
	if !twoStepConfirmed {
		return alert.ErrTwoStepNotConfirmed
	}

	d := alert.Dismissal{At: now, Reason: reason, TwoStepConfirmed: twoStepConfirmed, Actor: alert.ActorPatient}
	if err := s.persistDismissal(ctx, a, d); err != nil {
		return err
	}
	return a.DismissCritical(d)
}

func (s *Store) persistDismissal(ctx context.Context, a *alert.Alert, d alert.Dismissal) error {
	record := alert.DismissedRecord{Kind: a.Kind, EntityIDs: a.EntityIDs, Dismissal: d}
	if err := s.repo.Dismiss(ctx, record); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return nil
}

// findLocked requires the caller to already hold s.mu for writing.
func (s *Store) findLocked(alertID uuid.UUID) (*alert.Alert, error) {
	for _, a := range s.alerts {
		if a.ID == alertID {
			return a, nil
		}
	}
	return nil, ErrAlertNotFound
}
