package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"room-client/internal/models"
	"room-client/internal/selectors"
	"room-client/internal/store"
	"room-client/pkg/logger"
)

// CommandRunner executes one chat command line such as "/skip reason".
type CommandRunner interface {
	Execute(ctx context.Context, line string) error
}

// ErrUsage marks a command line that could not be understood.
var ErrUsage = errors.New("usage")

// StatusHandlers serve read-only snapshots of the session state and accept
// chat commands on the local status API.
type StatusHandlers struct {
	store    *store.Store
	sel      *selectors.Selectors
	commands CommandRunner
}

func NewStatusHandlers(s *store.Store, sel *selectors.Selectors, commands CommandRunner) *StatusHandlers {
	return &StatusHandlers{store: s, sel: sel, commands: commands}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Encode response: %v", err)
	}
}

func (h *StatusHandlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatResponse struct {
	MOTD     string               `json:"motd"`
	Messages []models.ChatMessage `json:"messages"`
	Muted    []models.User        `json:"muted"`
}

func (h *StatusHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	st := h.store.State()
	writeJSON(w, http.StatusOK, chatResponse{
		MOTD:     selectors.MOTD(st),
		Messages: h.sel.Messages(st),
		Muted:    h.sel.MutedUsers(st),
	})
}

type waitlistResponse struct {
	Users    []models.User `json:"users"`
	Locked   bool          `json:"locked"`
	Position int           `json:"position"`
}

func (h *StatusHandlers) Waitlist(w http.ResponseWriter, r *http.Request) {
	st := h.store.State()
	writeJSON(w, http.StatusOK, waitlistResponse{
		Users:    h.sel.WaitlistUsers(st),
		Locked:   selectors.IsWaitlistLocked(st),
		Position: selectors.WaitlistPosition(st),
	})
}

type boothResponse struct {
	DJ    *models.User         `json:"dj"`
	Media *models.Media        `json:"media"`
	Votes selectors.VoteCounts `json:"votes"`
}

func (h *StatusHandlers) Booth(w http.ResponseWriter, r *http.Request) {
	st := h.store.State()
	writeJSON(w, http.StatusOK, boothResponse{
		DJ:    selectors.DJ(st),
		Media: selectors.Media(st),
		Votes: selectors.VoteStats(st),
	})
}

type sessionResponse struct {
	User          *models.User               `json:"user"`
	IsModerator   bool                       `json:"isModerator"`
	MutedUntil    int64                      `json:"mutedUntil,omitempty"`
	GroupMentions []string                   `json:"groupMentions"`
	Notifications store.NotificationSettings `json:"notifications"`
}

func (h *StatusHandlers) Session(w http.ResponseWriter, r *http.Request) {
	st := h.store.State()
	resp := sessionResponse{
		User:          selectors.CurrentUser(st),
		IsModerator:   selectors.IsModerator(st),
		GroupMentions: h.sel.AvailableGroupMentions(st),
		Notifications: selectors.NotificationSettings(st),
	}
	if m := selectors.CurrentUserMute(st); m != nil {
		resp.MutedUntil = m.ExpiresAt
	}
	writeJSON(w, http.StatusOK, resp)
}

type commandRequest struct {
	Command string `json:"command"`
}

func (h *StatusHandlers) RunCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Command == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.commands.Execute(r.Context(), req.Command); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ErrUsage) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
