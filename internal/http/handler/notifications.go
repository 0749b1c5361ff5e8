package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cmms/internal/auth"
	"cmms/internal/notification"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	DB    *gorm.DB
	Poker Poker
}

type createNotificationReq struct {
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	ScheduledAt string   `json:"scheduled_at"` // RFC3339
	Recipients  []string `json:"recipients"`
}

func (h *NotificationHandler) poke() {
	if h.Poker != nil {
		h.Poker.Poke()
	}
}

// List returns only notifications visible to the caller: own ones plus
// those naming the caller as recipient.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	me := strconv.FormatUint(uid, 10)

	var rows []notification.Notification
	if err := h.DB.Order("scheduled_at desc").Limit(500).Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	// recipient filtering happens here, not in SQL: legacy rows carry
	// recipients in shapes Postgres cannot index
	out := make([]notification.Notification, 0, len(rows))
	for _, n := range rows {
		if n.VisibleTo(me) {
			out = append(out, n)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req createNotificationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledAt))
	if err != nil {
		http.Error(w, "invalid scheduled_at (RFC3339)", http.StatusBadRequest)
		return
	}

	n := notification.Notification{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Body:        strings.TrimSpace(req.Body),
		ScheduledAt: at,
		CreatedBy:   strconv.FormatUint(uid, 10),
		Recipients:  notification.EncodeRecipients(req.Recipients),
	}
	if err := h.DB.Create(&n).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.poke()
	writeJSON(w, http.StatusCreated, n)
}

func (h *NotificationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	me := strconv.FormatUint(uid, 10)
	id := chi.URLParam(r, "id")

	var n notification.Notification
	if err := h.DB.First(&n, "id = ?", id).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if !n.VisibleTo(me) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	if err := h.DB.Model(&notification.Notification{}).Where("id = ?", id).
		Update("is_completed", true).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.poke()
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	me := strconv.FormatUint(uid, 10)
	id := chi.URLParam(r, "id")

	var n notification.Notification
	if err := h.DB.First(&n, "id = ?", id).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if n.CreatedBy != me {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.DB.Delete(&notification.Notification{}, "id = ?", id).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.poke()
	w.WriteHeader(http.StatusNoContent)
}
