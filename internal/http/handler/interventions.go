package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cmms/internal/auth"
	"cmms/internal/maintenance"

	"gorm.io/gorm"
)

type InterventionHandler struct {
	Svc   *maintenance.Service
	DB    *gorm.DB
	Poker Poker
}

type interventionReq struct {
	EquipmentID   *uint64 `json:"equipment_id"`
	MaintenanceID *uint64 `json:"maintenance_id"`
	Title         string  `json:"title"`
	Report        string  `json:"report"`
	Status        string  `json:"status"`
}

func (h *InterventionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("created_at desc")

	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := r.URL.Query().Get("equipment_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid equipment_id", http.StatusBadRequest)
			return
		}
		q = q.Where("equipment_id = ?", id)
	}

	var rows []maintenance.Intervention
	if err := q.Limit(200).Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *InterventionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var iv maintenance.Intervention
	if err := h.DB.First(&iv, id).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, iv)
}

func (h *InterventionHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req interventionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}
	if req.MaintenanceID != nil {
		var m maintenance.Maintenance
		if err := h.DB.First(&m, *req.MaintenanceID).Error; err != nil {
			http.Error(w, "maintenance not found", http.StatusNotFound)
			return
		}
	}

	now := time.Now()
	iv := maintenance.Intervention{
		EquipmentID:   req.EquipmentID,
		MaintenanceID: req.MaintenanceID,
		Title:         req.Title,
		Report:        strings.TrimSpace(req.Report),
		Status:        maintenance.InterventionOpen,
		PerformedBy:   uid,
		StartedAt:     &now,
	}
	if err := h.DB.Create(&iv).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, iv)
}

func (h *InterventionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req interventionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	updates := map[string]any{}
	if v := strings.TrimSpace(req.Title); v != "" {
		updates["title"] = v
	}
	if v := strings.TrimSpace(req.Report); v != "" {
		updates["report"] = v
	}
	if req.Status != "" {
		switch req.Status {
		case maintenance.InterventionOpen, maintenance.InterventionInProgress:
			updates["status"] = req.Status
		default:
			// completion goes through /complete so the linked maintenance
			// is closed too
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
	}
	if len(updates) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	res := h.DB.Model(&maintenance.Intervention{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InterventionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	err := h.Svc.CompleteIntervention(r.Context(), id, time.Now())
	if errors.Is(err, maintenance.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	if h.Poker != nil {
		h.Poker.Poke()
	}
	w.WriteHeader(http.StatusNoContent)
}
