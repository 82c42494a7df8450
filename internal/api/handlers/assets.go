package handlers

import (
	"net/http"

	"github.com/Membrive92/TrackingFinance/internal/services"
	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// AssetHandler serves /assets.
type AssetHandler struct {
	svc    *services.AssetService
	logger *logrus.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(svc *services.AssetService, logger *logrus.Logger) *AssetHandler {
	return &AssetHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the asset routes on the versioned router.
func (h *AssetHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/assets", h.List).Methods(http.MethodGet)
	router.HandleFunc("/assets", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/assets/{id}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/assets/{id}", h.Update).Methods(http.MethodPatch)
	router.HandleFunc("/assets/{id}", h.Delete).Methods(http.MethodDelete)
}

// List handles GET /v1/assets
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	assets, err := h.svc.List(r.Context())
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, assets)
}

// Get handles GET /v1/assets/{id}
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	asset, err := h.svc.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, asset)
}

// Create handles POST /v1/assets
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.AssetCreate
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	asset, err := h.svc.Create(r.Context(), req)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, asset)
}

// Update handles PATCH /v1/assets/{id}
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	var req models.AssetUpdate
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	asset, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, asset)
}

// Delete handles DELETE /v1/assets/{id}
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, deleted)
}
