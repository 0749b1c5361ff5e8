package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cmms/internal/maintenance"

	"gorm.io/gorm"
)

type MaintenanceHandler struct {
	Svc   *maintenance.Service
	DB    *gorm.DB
	Poker Poker
}

type maintenanceReq struct {
	Title         string  `json:"title"`
	EquipmentID   *uint64 `json:"equipment_id"`
	EquipmentName string  `json:"equipment_name"`
	NextDueDate   string  `json:"next_due_date"` // YYYY-MM-DD
	Status        string  `json:"status"`
	Priority      string  `json:"priority"`

	NotificationEnabled         *bool  `json:"notification_enabled"`
	NotificationTimeBeforeValue int    `json:"notification_time_before_value"`
	NotificationTimeBeforeUnit  string `json:"notification_time_before_unit"`

	RecurrenceDays int `json:"recurrence_days"`
}

func (h *MaintenanceHandler) poke() {
	if h.Poker != nil {
		h.Poker.Poke()
	}
}

func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("next_due_date asc")

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

	var rows []maintenance.Maintenance
	if err := q.Limit(200).Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var m maintenance.Maintenance
	if err := h.DB.First(&m, id).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req maintenanceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}
	due, err := time.Parse("2006-01-02", strings.TrimSpace(req.NextDueDate))
	if err != nil {
		http.Error(w, "invalid next_due_date (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		req.Status = maintenance.StatusScheduled
	}
	if !maintenance.ValidStatus(req.Status) {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}
	if req.Priority == "" {
		req.Priority = maintenance.PriorityMedium
	}
	if !maintenance.ValidPriority(req.Priority) {
		http.Error(w, "invalid priority", http.StatusBadRequest)
		return
	}
	if req.NotificationTimeBeforeUnit == "" {
		req.NotificationTimeBeforeUnit = maintenance.UnitDays
	}
	if !maintenance.ValidUnit(req.NotificationTimeBeforeUnit) {
		http.Error(w, "invalid notification_time_before_unit", http.StatusBadRequest)
		return
	}
	if req.NotificationTimeBeforeValue <= 0 {
		req.NotificationTimeBeforeValue = 1
	}

	enabled := true
	if req.NotificationEnabled != nil {
		enabled = *req.NotificationEnabled
	}

	m := maintenance.Maintenance{
		Title:                       req.Title,
		EquipmentID:                 req.EquipmentID,
		EquipmentName:               strings.TrimSpace(req.EquipmentName),
		NextDueDate:                 due,
		Status:                      req.Status,
		Priority:                    req.Priority,
		NotificationEnabled:         enabled,
		NotificationTimeBeforeValue: req.NotificationTimeBeforeValue,
		NotificationTimeBeforeUnit:  req.NotificationTimeBeforeUnit,
		RecurrenceDays:              req.RecurrenceDays,
	}
	if err := h.DB.Create(&m).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.poke()
	writeJSON(w, http.StatusCreated, m)
}

func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req maintenanceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	updates := map[string]any{"updated_at": time.Now()}
	if v := strings.TrimSpace(req.Title); v != "" {
		updates["title"] = v
	}
	if v := strings.TrimSpace(req.NextDueDate); v != "" {
		due, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "invalid next_due_date (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		updates["next_due_date"] = due
	}
	if req.Status != "" {
		if !maintenance.ValidStatus(req.Status) {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
		updates["status"] = req.Status
	}
	if req.Priority != "" {
		if !maintenance.ValidPriority(req.Priority) {
			http.Error(w, "invalid priority", http.StatusBadRequest)
			return
		}
		updates["priority"] = req.Priority
	}
	if req.NotificationTimeBeforeUnit != "" {
		if !maintenance.ValidUnit(req.NotificationTimeBeforeUnit) {
			http.Error(w, "invalid notification_time_before_unit", http.StatusBadRequest)
			return
		}
		updates["notification_time_before_unit"] = req.NotificationTimeBeforeUnit
	}
	if req.NotificationTimeBeforeValue > 0 {
		updates["notification_time_before_value"] = req.NotificationTimeBeforeValue
	}
	if req.NotificationEnabled != nil {
		updates["notification_enabled"] = *req.NotificationEnabled
	}
	if req.RecurrenceDays > 0 {
		updates["recurrence_days"] = req.RecurrenceDays
	}

	res := h.DB.Model(&maintenance.Maintenance{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	h.poke()
	w.WriteHeader(http.StatusNoContent)
}

func (h *MaintenanceHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	err := h.Svc.Complete(r.Context(), id, time.Now())
	if errors.Is(err, maintenance.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.poke()
	w.WriteHeader(http.StatusNoContent)
}

func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	res := h.DB.Delete(&maintenance.Maintenance{}, id)
	if res.Error != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	h.poke()
	w.WriteHeader(http.StatusNoContent)
}
