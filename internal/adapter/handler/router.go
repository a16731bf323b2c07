package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

func NewRouter(bookings *BookingHandler, schedules *ScheduleHandler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /assets/{assetID}/slots", bookings.GetSlots)
	mux.HandleFunc("GET /assets/{assetID}/bookings", bookings.ListBookings)
	mux.HandleFunc("POST /bookings", bookings.CreateBooking)
	mux.HandleFunc("GET /bookings/{bookingID}", bookings.GetBooking)
	mux.HandleFunc("POST /bookings/{bookingID}/cancel", bookings.CancelBooking)
	mux.HandleFunc("POST /bookings/{bookingID}/confirm", bookings.ConfirmBooking)
	mux.HandleFunc("POST /bookings/{bookingID}/complete", bookings.CompleteBooking)
	mux.HandleFunc("PATCH /bookings/{bookingID}/payment", bookings.UpdatePaymentStatus)

	mux.HandleFunc("GET /assets/{assetID}/rules", schedules.ListRules)
	mux.HandleFunc("PUT /assets/{assetID}/rules", schedules.SetRule)
	mux.HandleFunc("DELETE /rules/{ruleID}", schedules.DeleteRule)
	mux.HandleFunc("GET /assets/{assetID}/exceptions", schedules.ListExceptions)
	mux.HandleFunc("POST /assets/{assetID}/exceptions", schedules.SetException)
	mux.HandleFunc("DELETE /exceptions/{exceptionID}", schedules.RemoveException)

	return accessLog(mux, logger)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func accessLog(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
