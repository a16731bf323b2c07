package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/space_booking/internal/core/domain"
)

const actorHeader = "X-Actor-ID"

type errorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		ve  *domain.ValidationError
		ce  *domain.ConflictError
		nf  *domain.NotFoundError
		ves validator.ValidationErrors
	)

	switch {
	case errors.As(err, &ve), errors.As(err, &ves):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), Retryable: ce.Retryable()})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func decode(r *http.Request, v any, validate *validator.Validate) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return err
		}
		return domain.NewValidationError("invalid json body")
	}
	return validate.Struct(v)
}

func actorFrom(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(actorHeader)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError("missing %s header", actorHeader)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError("invalid %s header", actorHeader)
	}
	return id, nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("invalid %s", name)
	}
	return id, nil
}

func queryDate(r *http.Request, name string) (domain.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return domain.Date{}, domain.NewValidationError("missing %s query parameter", name)
	}
	return domain.ParseDate(raw)
}
