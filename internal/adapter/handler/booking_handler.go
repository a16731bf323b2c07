package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/space_booking/internal/core/domain"
	"github.com/srgjo27/space_booking/internal/core/services"
)

type ReserveRequest struct {
	SpaceAssetID    string    `json:"space_asset_id" validate:"required,uuid"`
	StartDateTime   time.Time `json:"start_date_time" validate:"required"`
	EndDateTime     time.Time `json:"end_date_time" validate:"required"`
	ContactNumber   string    `json:"contact_number" validate:"required,max=32"`
	Price           float64   `json:"price" validate:"gte=0"`
	TaxAmount       float64   `json:"tax_amount" validate:"gte=0"`
	DiscountApplied float64   `json:"discount_applied" validate:"gte=0"`
	DiscountID      string    `json:"discount_id" validate:"omitempty,uuid"`
}

type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=pending paid refunded failed"`
}

type BookingHandler struct {
	resolver    *services.SlotResolver
	coordinator *services.BookingCoordinator
	validate    *validator.Validate
	logger      *zap.Logger
}

func NewBookingHandler(resolver *services.SlotResolver, coordinator *services.BookingCoordinator, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		resolver:    resolver,
		coordinator: coordinator,
		validate:    validator.New(),
		logger:      logger,
	}
}

func (h *BookingHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	assetID, err := pathID(r, "assetID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	slots, err := h.resolver.Resolve(r.Context(), assetID, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"space_asset_id": assetID,
		"date":           date,
		"slots":          slots,
	})
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req ReserveRequest
	if err := decode(r, &req, h.validate); err != nil {
		writeError(w, h.logger, err)
		return
	}

	info := services.BookerInfo{
		Actor:           actor,
		ContactNumber:   req.ContactNumber,
		Price:           req.Price,
		TaxAmount:       req.TaxAmount,
		DiscountApplied: req.DiscountApplied,
	}
	if req.DiscountID != "" {
		id := uuid.MustParse(req.DiscountID)
		info.DiscountID = &id
	}

	interval := domain.Interval{Start: req.StartDateTime, End: req.EndDateTime}
	booking, err := h.coordinator.Reserve(r.Context(), uuid.MustParse(req.SpaceAssetID), interval, info)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bookingID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	booking, err := h.coordinator.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	assetID, err := pathID(r, "assetID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	bookings, err := h.coordinator.ListBookings(r.Context(), assetID, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.coordinator.Cancel)
}

func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.coordinator.Confirm)
}

func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.coordinator.Complete)
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, bookingID, actor uuid.UUID) (*domain.Booking, error)) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	id, err := pathID(r, "bookingID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	booking, err := fn(r.Context(), id, actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	id, err := pathID(r, "bookingID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req PaymentStatusRequest
	if err := decode(r, &req, h.validate); err != nil {
		writeError(w, h.logger, err)
		return
	}

	booking, err := h.coordinator.UpdateBookingPaymentStatus(r.Context(), id, domain.PaymentStatus(req.PaymentStatus), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}
