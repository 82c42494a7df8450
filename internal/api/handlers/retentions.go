package handlers

import (
	"net/http"

	"github.com/Membrive92/TrackingFinance/internal/services"
	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RetentionHandler serves /retentions.
type RetentionHandler struct {
	svc    *services.RetentionService
	logger *logrus.Logger
}

func NewRetentionHandler(svc *services.RetentionService, logger *logrus.Logger) *RetentionHandler {
	return &RetentionHandler{svc: svc, logger: logger}
}

func (h *RetentionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/retentions", h.List).Methods(http.MethodGet)
	router.HandleFunc("/retentions", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/retentions/{id}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/retentions/{id}", h.Update).Methods(http.MethodPatch)
	router.HandleFunc("/retentions/{id}", h.Delete).Methods(http.MethodDelete)
}

// List handles GET /v1/retentions?transaction_id=
func (h *RetentionHandler) List(w http.ResponseWriter, r *http.Request) {
	transactionID, err := queryID(r, "transaction_id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	list, err := h.svc.List(r.Context(), models.RetentionFilter{TransactionID: transactionID})
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *RetentionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	ret, err := h.svc.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, ret)
}

func (h *RetentionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.RetentionCreate
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	ret, err := h.svc.Create(r.Context(), req)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, ret)
}

func (h *RetentionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	var req models.RetentionUpdate
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	ret, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, ret)
}

func (h *RetentionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
