package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"cmms/internal/inventory"

	"gorm.io/gorm"
)

type PartHandler struct {
	DB *gorm.DB
}

type partReq struct {
	Name        string  `json:"name"`
	Reference   string  `json:"reference"`
	Quantity    int     `json:"quantity"`
	MinQuantity int     `json:"min_quantity"`
	UnitCost    float64 `json:"unit_cost"`
}

func (h *PartHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("name asc")
	if v := strings.TrimSpace(r.URL.Query().Get("q")); v != "" {
		q = q.Where("name ILIKE ? OR reference ILIKE ?", "%"+v+"%", "%"+v+"%")
	}
	var rows []inventory.Part
	if err := q.Limit(200).Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *PartHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	var rows []inventory.Part
	if err := h.DB.Where("min_quantity > 0 AND quantity <= min_quantity").
		Order("name asc").Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *PartHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var p inventory.Part
	if err := h.DB.First(&p, id).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req partReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Reference = strings.TrimSpace(req.Reference)
	if req.Name == "" || req.Reference == "" {
		http.Error(w, "name and reference required", http.StatusBadRequest)
		return
	}
	if req.Quantity < 0 || req.MinQuantity < 0 {
		http.Error(w, "negative quantity", http.StatusBadRequest)
		return
	}

	p := inventory.Part{
		Name:        req.Name,
		Reference:   req.Reference,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		UnitCost:    req.UnitCost,
	}
	if err := h.DB.Create(&p).Error; err != nil {
		http.Error(w, "reference already used", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PartHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req partReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	if req.Quantity < 0 || req.MinQuantity < 0 {
		http.Error(w, "negative quantity", http.StatusBadRequest)
		return
	}

	res := h.DB.Model(&inventory.Part{}).Where("id = ?", id).Updates(map[string]any{
		"name":         req.Name,
		"quantity":     req.Quantity,
		"min_quantity": req.MinQuantity,
		"unit_cost":    req.UnitCost,
		"updated_at":   time.Now(),
	})
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

func (h *PartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	res := h.DB.Delete(&inventory.Part{}, id)
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
