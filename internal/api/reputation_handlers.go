package api

import (
	"log/slog"
	"net/http"

	"github.com/onnwee/nightpulse/internal/reputation"
)

// ReputationHandlers holds dependencies for reputation HTTP handlers.
type ReputationHandlers struct {
	ledger *reputation.Ledger
}

// NewReputationHandlers creates a new ReputationHandlers instance.
func NewReputationHandlers(ledger *reputation.Ledger) *ReputationHandlers {
	return &ReputationHandlers{ledger: ledger}
}

// Get handles GET /reputation/{id}. Users who have never earned points
// read as zero-point newcomers rather than a 404, since every user has
// a reputation the moment anyone asks about it.
func (h *ReputationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "User ID is required")
		return
	}

	account, err := h.ledger.AccountFor(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load reputation", "error", err, "user_id", userID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load reputation")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, account)
}

// Me handles GET /reputation/me for the authenticated user.
func (h *ReputationHandlers) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	account, err := h.ledger.AccountFor(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load reputation", "error", err, "user_id", userID)
		fail(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to load reputation")
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, account)
}
