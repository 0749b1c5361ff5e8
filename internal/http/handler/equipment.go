package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cmms/internal/equipment"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type EquipmentHandler struct {
	Svc *equipment.Service
	DB  *gorm.DB
}

type equipmentReq struct {
	Name           string  `json:"name"`
	Model          string  `json:"model"`
	Serial         string  `json:"serial"`
	Status         string  `json:"status"`
	LocationID     *uint64  `json:"location_id"`
	CommissionedAt *string  `json:"commissioned_at"` // RFC3339 optional
	Tags           []string `json:"tags"`
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("name asc")

	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := r.URL.Query().Get("location_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid location_id", http.StatusBadRequest)
			return
		}
		q = q.Where("location_id = ?", id)
	}
	if v := strings.TrimSpace(r.URL.Query().Get("q")); v != "" {
		q = q.Where("name ILIKE ? OR serial ILIKE ?", "%"+v+"%", "%"+v+"%")
	}
	if v := strings.TrimSpace(r.URL.Query().Get("tag")); v != "" {
		q = q.Where("? = any(tags)", v)
	}

	var rows []equipment.Equipment
	if err := q.Limit(200).Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var eq equipment.Equipment
	if err := h.DB.First(&eq, id).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, eq)
}

func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req equipmentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Serial = strings.TrimSpace(req.Serial)
	if req.Name == "" || req.Serial == "" {
		http.Error(w, "name and serial required", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		req.Status = equipment.StatusOperational
	}
	if !equipment.ValidStatus(req.Status) {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	var commissioned *time.Time
	if req.CommissionedAt != nil && strings.TrimSpace(*req.CommissionedAt) != "" {
		t, err := time.Parse(time.RFC3339, *req.CommissionedAt)
		if err != nil {
			http.Error(w, "invalid commissioned_at (RFC3339)", http.StatusBadRequest)
			return
		}
		commissioned = &t
	}

	eq := equipment.Equipment{
		Name:           req.Name,
		Model:          strings.TrimSpace(req.Model),
		Serial:         req.Serial,
		Status:         req.Status,
		LocationID:     req.LocationID,
		CommissionedAt: commissioned,
		Tags:           pq.StringArray(req.Tags),
	}
	if err := h.DB.Create(&eq).Error; err != nil {
		http.Error(w, "serial already used", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, eq)
}

func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req equipmentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	if req.Status != "" && !equipment.ValidStatus(req.Status) {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	updates := map[string]any{
		"name":       req.Name,
		"model":      strings.TrimSpace(req.Model),
		"updated_at": time.Now(),
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.LocationID != nil {
		updates["location_id"] = *req.LocationID
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}

	res := h.DB.Model(&equipment.Equipment{}).Where("id = ?", id).Updates(updates)
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

func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("equipment_id = ?", id).Delete(&equipment.GroupMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("equipment_id = ?", id).Delete(&equipment.PartLink{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&equipment.Equipment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return equipment.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, equipment.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setGroupsReq struct {
	GroupIDs []uint64 `json:"group_ids"`
}

func (h *EquipmentHandler) SetGroups(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req setGroupsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	err := h.Svc.SetGroups(r.Context(), id, req.GroupIDs)
	if errors.Is(err, equipment.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setPartsReq struct {
	Parts []equipment.PartQuantity `json:"parts"`
}

func (h *EquipmentHandler) SetParts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req setPartsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	err := h.Svc.SetParts(r.Context(), id, req.Parts)
	if errors.Is(err, equipment.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EquipmentHandler) ListParts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var rows []equipment.PartLink
	if err := h.DB.Where("equipment_id = ?", id).Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type GroupHandler struct {
	DB *gorm.DB
}

type groupReq struct {
	Name string `json:"name"`
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	var rows []equipment.Group
	if err := h.DB.Order("name asc").Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req groupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	g := equipment.Group{Name: req.Name}
	if err := h.DB.Create(&g).Error; err != nil {
		http.Error(w, "name already used", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&equipment.GroupMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&equipment.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return equipment.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, equipment.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
