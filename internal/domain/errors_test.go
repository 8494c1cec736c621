package domain_test

import (
	"fmt"
	"testing"

	"github.com/ortakkasa/poolfund/internal/domain"
)

// A revert can fail three ways: unknown id, wager never settled, wager already
// folded into a daily record. Each must classify differently so handlers can
// answer 404 vs 409 truthfully.
func TestRevertFailureClassification(t *testing.T) {
	if !domain.IsNotFound(domain.ErrBetNotFound) {
		t.Error("ErrBetNotFound should classify as not-found")
	}
	if domain.IsNotFound(domain.ErrBetProcessed) || domain.IsNotFound(domain.ErrBetPending) {
		t.Error("processed/pending revert failures must not classify as not-found")
	}
	if !domain.IsConflict(domain.ErrBetProcessed) {
		t.Error("ErrBetProcessed should classify as a conflict")
	}
	if domain.IsConflict(domain.ErrBetNotFound) {
		t.Error("ErrBetNotFound must not classify as a conflict")
	}
}

// Predicates must see through fmt.Errorf wrapping, which is how repositories
// hand errors up.
func TestPredicates_UnwrapChain(t *testing.T) {
	wrapped := fmt.Errorf("bet_repo.Revert: %w", domain.ErrBetNotFound)
	if !domain.IsNotFound(wrapped) {
		t.Error("IsNotFound should match a wrapped sentinel")
	}
	if !domain.IsConflict(fmt.Errorf("x: %w", domain.ErrDayAlreadyResolved)) {
		t.Error("IsConflict should match a wrapped sentinel")
	}
	if !domain.IsAuthError(fmt.Errorf("x: %w", domain.ErrTokenInvalid)) {
		t.Error("IsAuthError should match a wrapped sentinel")
	}
}
