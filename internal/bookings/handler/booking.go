package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"upasana/internal/bookings/policy"
	"upasana/internal/bookings/service"
	"upasana/pkg/config"
	apperrors "upasana/pkg/errors"
	httputil "upasana/pkg/http"
	"upasana/pkg/logger"
	"upasana/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	admission service.AdmissionService
	bookings  service.BookingService
	log       *logger.Logger
}

func NewBookingHandler(admission service.AdmissionService, bookings service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		admission: admission,
		bookings:  bookings,
		log:       log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Attempt)
	router.POST("/api/v1/bookings/sunday", h.AttemptSunday)
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.DELETE("/api/v1/bookings/id/:id", h.Cancel)
	router.GET("/api/v1/slots", h.Slots)
}

func (h *BookingHandler) Attempt(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.attempt(w, r, h.admission.Attempt)
}

func (h *BookingHandler) AttemptSunday(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.attempt(w, r, h.admission.AttemptSunday)
}

func (h *BookingHandler) attempt(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, req *model.BookingRequest) (*model.AdmissionResult, error)) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Attempt", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := fn(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Attempt", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, admissionStatus(result), httputil.SuccessResponse{Data: result}); err != nil {
		h.log.Error("failed to write admission response", "handler", "Attempt", "operation", "WriteJSON", "error", err)
	}
}

// admissionStatus maps an admission outcome to an HTTP status. Calendar
// misuse is a client error; quota and contention rejections are conflicts.
func admissionStatus(result *model.AdmissionResult) int {
	if result.Admitted {
		return http.StatusCreated
	}
	switch result.Reason {
	case policy.ReasonNotSaturday, policy.ReasonNotSunday, policy.ReasonNotAValidSlotDay:
		return http.StatusBadRequest
	case policy.ReasonMemberNotFound:
		return http.StatusNotFound
	default:
		return http.StatusConflict
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	booking, err := h.bookings.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid limit parameter: %s", limitStr))); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}

	var offset int64
	if offsetStr := query.Get("offset"); offsetStr != "" {
		var err error
		offset, err = strconv.ParseInt(offsetStr, 10, 64)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid offset parameter: %s", offsetStr))); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	bookings, total, err := h.bookings.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	cancelledBy := r.Header.Get("X-Member-ID")
	if cancelledBy == "" {
		cancelledBy = "system"
	}

	if err := h.bookings.Cancel(r.Context(), id, cancelledBy); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	slots, err := h.bookings.SeasonSlots(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Slots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "Slots", "operation", "WriteSuccess", "error", err)
	}
}
