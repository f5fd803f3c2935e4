// Package rest holds the small plumbing shared by the HTTP servers:
// JSON encoding, the error envelope and common request parsing.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	gerr "github.com/softkom/site-manager/internal/errors"
)

// MessageResponse is the body of every non-2xx response and of plain
// acknowledgements: {"message": "..."}.
type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("can't encode response", "err", err.Error())
	}
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, MessageResponse{Message: msg})
}

// WriteError maps domain errors to statuses. Unknown errors become a
// 500 with a generic body; the detail goes to the log only.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gerr.ErrNotFound):
		WriteMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, gerr.ErrAlreadySubscribed):
		WriteMessage(w, http.StatusConflict, "Email already subscribed")
	case errors.Is(err, gerr.ErrAlreadyUnsubscribed):
		WriteMessage(w, http.StatusBadRequest, "Subscriber already unsubscribed")
	case errors.Is(err, gerr.ErrEmailTaken):
		WriteMessage(w, http.StatusConflict, "Email already in use")
	case errors.Is(err, gerr.ErrInvalidEmail):
		WriteMessage(w, http.StatusBadRequest, "Invalid email address")
	case errors.Is(err, gerr.ErrNotAuthenticated):
		WriteMessage(w, http.StatusUnauthorized, "not authenticated")
	default:
		slog.Default().Error("request failed", "err", err.Error())
		WriteMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// DecodeJSON rejects both unreadable bodies and trailing garbage.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("can't decode request body: %w", err)
	}
	return nil
}

// ID parses the {id} chi route parameter. Any integer is accepted; zero and
// negative ids simply match no row and come back as a 404 from the store.
func ID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("bad id %q", raw)
	}
	return id, nil
}

// TotalCount sets the grid total header and exposes it to browsers.
func TotalCount(w http.ResponseWriter, total int) {
	w.Header().Set("Access-Control-Expose-Headers", "X-Total-Count")
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
}
