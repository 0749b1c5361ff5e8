package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"cmms/internal/equipment"
	"cmms/internal/facility"

	"gorm.io/gorm"
)

type FacilityHandler struct {
	DB *gorm.DB
}

type buildingReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (h *FacilityHandler) ListBuildings(w http.ResponseWriter, r *http.Request) {
	var rows []facility.Building
	if err := h.DB.Order("name asc").Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *FacilityHandler) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	var req buildingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	b := facility.Building{Name: req.Name, Address: strings.TrimSpace(req.Address)}
	if err := h.DB.Create(&b).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *FacilityHandler) UpdateBuilding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req buildingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	res := h.DB.Model(&facility.Building{}).Where("id = ?", id).Updates(map[string]any{
		"name":    req.Name,
		"address": strings.TrimSpace(req.Address),
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

func (h *FacilityHandler) DeleteBuilding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var n int64
	if err := h.DB.Model(&facility.Service{}).Where("building_id = ?", id).Count(&n).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if n > 0 {
		http.Error(w, "building has services", http.StatusConflict)
		return
	}

	res := h.DB.Delete(&facility.Building{}, id)
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

type serviceReq struct {
	BuildingID uint64 `json:"building_id"`
	Name       string `json:"name"`
}

func (h *FacilityHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("name asc")
	if v := r.URL.Query().Get("building_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid building_id", http.StatusBadRequest)
			return
		}
		q = q.Where("building_id = ?", id)
	}
	var rows []facility.Service
	if err := q.Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *FacilityHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.BuildingID == 0 {
		http.Error(w, "name and building_id required", http.StatusBadRequest)
		return
	}

	var b facility.Building
	if err := h.DB.First(&b, req.BuildingID).Error; err != nil {
		http.Error(w, "building not found", http.StatusNotFound)
		return
	}

	s := facility.Service{BuildingID: req.BuildingID, Name: req.Name}
	if err := h.DB.Create(&s).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *FacilityHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var n int64
	if err := h.DB.Model(&facility.Location{}).Where("service_id = ?", id).Count(&n).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if n > 0 {
		http.Error(w, "service has locations", http.StatusConflict)
		return
	}

	res := h.DB.Delete(&facility.Service{}, id)
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

type locationReq struct {
	ServiceID uint64 `json:"service_id"`
	Name      string `json:"name"`
	Floor     string `json:"floor"`
}

func (h *FacilityHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("name asc")
	if v := r.URL.Query().Get("service_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid service_id", http.StatusBadRequest)
			return
		}
		q = q.Where("service_id = ?", id)
	}
	var rows []facility.Location
	if err := q.Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *FacilityHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.ServiceID == 0 {
		http.Error(w, "name and service_id required", http.StatusBadRequest)
		return
	}

	var s facility.Service
	if err := h.DB.First(&s, req.ServiceID).Error; err != nil {
		http.Error(w, "service not found", http.StatusNotFound)
		return
	}

	l := facility.Location{ServiceID: req.ServiceID, Name: req.Name, Floor: strings.TrimSpace(req.Floor)}
	if err := h.DB.Create(&l).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *FacilityHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var n int64
	if err := h.DB.Model(&equipment.Equipment{}).Where("location_id = ?", id).Count(&n).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if n > 0 {
		http.Error(w, "location has equipment", http.StatusConflict)
		return
	}

	res := h.DB.Delete(&facility.Location{}, id)
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
