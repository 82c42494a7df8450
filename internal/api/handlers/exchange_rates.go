package handlers

import (
	"net/http"

	"github.com/Membrive92/TrackingFinance/internal/services"
	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ExchangeRateHandler serves /exchange-rates.
type ExchangeRateHandler struct {
	svc    *services.ExchangeRateService
	logger *logrus.Logger
}

func NewExchangeRateHandler(svc *services.ExchangeRateService, logger *logrus.Logger) *ExchangeRateHandler {
	return &ExchangeRateHandler{svc: svc, logger: logger}
}

func (h *ExchangeRateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/exchange-rates", h.List).Methods(http.MethodGet)
	router.HandleFunc("/exchange-rates", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/exchange-rates/{id}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/exchange-rates/{id}", h.Update).Methods(http.MethodPatch)
	router.HandleFunc("/exchange-rates/{id}", h.Delete).Methods(http.MethodDelete)
}

// List handles GET /v1/exchange-rates?from=&to=
func (h *ExchangeRateHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.List(r.Context(), models.ExchangeRateFilter{From: q.Get("from"), To: q.Get("to")})
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *ExchangeRateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	rate, err := h.svc.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, rate)
}

func (h *ExchangeRateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ExchangeRateCreate
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	rate, err := h.svc.Create(r.Context(), req)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, rate)
}

func (h *ExchangeRateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	var req models.ExchangeRateUpdate
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	rate, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, rate)
}

func (h *ExchangeRateHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
