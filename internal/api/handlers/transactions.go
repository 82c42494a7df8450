package handlers

import (
	"net/http"

	"github.com/Membrive92/TrackingFinance/internal/services"
	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// TransactionHandler serves /transactions.
type TransactionHandler struct {
	svc    *services.TransactionService
	logger *logrus.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(svc *services.TransactionService, logger *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the transaction routes on the versioned router.
func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transactions", h.List).Methods(http.MethodGet)
	router.HandleFunc("/transactions", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/transactions/{id}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/transactions/{id}", h.Update).Methods(http.MethodPatch)
	router.HandleFunc("/transactions/{id}", h.Delete).Methods(http.MethodDelete)
}

// List handles GET /v1/transactions?asset_id=
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	assetID, err := queryID(r, "asset_id")
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	list, err := h.svc.List(r.Context(), models.TransactionFilter{AssetID: assetID})
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.TransactionCreate
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	t, err := h.svc.Create(r.Context(), req)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, t)
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	var req models.TransactionUpdate
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	t, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
