package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"vehiculos/internal/auth"
	"vehiculos/internal/service"
)

type AdminHandler struct {
	Service *service.ReservationService
}

func NewAdminHandler(svc *service.ReservationService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.Service.ListReservations(actor)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) AuthorizeReservation(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *AdminHandler) RejectReservation(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *AdminHandler) decide(w http.ResponseWriter, r *http.Request, authorize bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	var res interface{}
	if authorize {
		res, err = h.Service.Authorize(actor, id)
	} else {
		res, err = h.Service.Reject(actor, id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
