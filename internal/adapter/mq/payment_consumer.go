package mq

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/space_booking/internal/core/domain"
)

// PaymentRoutingKeys maps the payment service's routing keys to the payment
// status they report.
var PaymentRoutingKeys = map[string]domain.PaymentStatus{
	"payment.paid":     domain.PaymentPaid,
	"payment.failed":   domain.PaymentFailed,
	"payment.refunded": domain.PaymentRefunded,
}

func PaymentKeys() []string {
	keys := make([]string, 0, len(PaymentRoutingKeys))
	for k := range PaymentRoutingKeys {
		keys = append(keys, k)
	}
	return keys
}

type PaymentEvent struct {
	Event   string `json:"event"`
	Version int    `json:"version"`
	Data    struct {
		PaymentID string `json:"payment_id"`
		BookingID string `json:"booking_id"`
	} `json:"data"`
}

type PaymentUpdater interface {
	UpdateBookingPaymentStatus(ctx context.Context, bookingID uuid.UUID, status domain.PaymentStatus, actor uuid.UUID) (*domain.Booking, error)
}

// Outcome tells the delivery loop how to settle a message.
type Outcome int

const (
	Ack Outcome = iota
	Drop
	Requeue
)

type PaymentConsumer struct {
	updater PaymentUpdater
	cons    *Consumer
	actor   uuid.UUID
	logger  *zap.Logger
}

func NewPaymentConsumer(updater PaymentUpdater, cons *Consumer, actor uuid.UUID, logger *zap.Logger) *PaymentConsumer {
	return &PaymentConsumer{updater: updater, cons: cons, actor: actor, logger: logger}
}

func (pc *PaymentConsumer) Run(ctx context.Context) error {
	msgs, err := pc.cons.Deliveries(ctx)
	if err != nil {
		return err
	}
	go func() {
		for d := range msgs {
			switch pc.Handle(ctx, d.RoutingKey, d.Body) {
			case Ack:
				_ = d.Ack(false)
			case Drop:
				_ = d.Nack(false, false)
			case Requeue:
				_ = d.Nack(false, true)
			}
		}
	}()
	return nil
}

// Handle applies one payment event. Invalid transitions and unknown bookings
// are acknowledged since redelivery cannot fix them.
func (pc *PaymentConsumer) Handle(ctx context.Context, routingKey string, body []byte) Outcome {
	status, ok := PaymentRoutingKeys[routingKey]
	if !ok {
		return Ack
	}

	var evt PaymentEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		pc.logger.Warn("payment event unmarshal failed", zap.String("routing_key", routingKey), zap.Error(err))
		return Drop
	}

	bookingID, err := uuid.Parse(evt.Data.BookingID)
	if err != nil {
		pc.logger.Warn("payment event has invalid booking id", zap.String("booking_id", evt.Data.BookingID))
		return Ack
	}

	_, err = pc.updater.UpdateBookingPaymentStatus(ctx, bookingID, status, pc.actor)
	switch {
	case err == nil:
		return Ack
	case domain.IsValidation(err), domain.IsNotFound(err):
		pc.logger.Info("payment event ignored",
			zap.String("booking_id", bookingID.String()),
			zap.String("payment_id", evt.Data.PaymentID),
			zap.Error(err),
		)
		return Ack
	default:
		pc.logger.Error("payment event apply failed", zap.String("booking_id", bookingID.String()), zap.Error(err))
		return Requeue
	}
}
