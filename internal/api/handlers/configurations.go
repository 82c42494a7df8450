package handlers

import (
	"net/http"

	"github.com/Membrive92/TrackingFinance/internal/services"
	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ConfigurationHandler serves /configurations, keyed by the setting name.
type ConfigurationHandler struct {
	svc    *services.ConfigurationService
	logger *logrus.Logger
}

func NewConfigurationHandler(svc *services.ConfigurationService, logger *logrus.Logger) *ConfigurationHandler {
	return &ConfigurationHandler{svc: svc, logger: logger}
}

func (h *ConfigurationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/configurations", h.List).Methods(http.MethodGet)
	router.HandleFunc("/configurations", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/configurations/{key}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/configurations/{key}", h.Update).Methods(http.MethodPatch)
	router.HandleFunc("/configurations/{key}", h.Delete).Methods(http.MethodDelete)
}

func (h *ConfigurationHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *ConfigurationHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

func (h *ConfigurationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ConfigurationCreate
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	c, err := h.svc.Create(r.Context(), req)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, c)
}

func (h *ConfigurationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.ConfigurationUpdate
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	c, err := h.svc.Update(r.Context(), mux.Vars(r)["key"], req)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

func (h *ConfigurationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), mux.Vars(r)["key"]); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, deleted)
}
