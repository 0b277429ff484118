package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/movie-orders/internal/domain/customer"
	"github.com/xenking/movie-orders/internal/domain/movie"
	"github.com/xenking/movie-orders/internal/domain/order"
	"github.com/xenking/movie-orders/internal/domain/shipping"
)

// errorResponse is the JSON body for every error the API returns.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeError maps domain errors to client-facing responses. Anything outside
// the known taxonomy is logged and reported as a generic 500 so internal
// detail never leaks.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if status, ok := statusFor(err); ok {
		writeJSON(w, status, errorResponse{Code: status, Message: err.Error()})
		return
	}

	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Code:    http.StatusInternalServerError,
		Message: "internal server error",
	})
}

// statusFor returns the HTTP status for a taxonomy error, or false for
// errors that must not reach the client.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, movie.ErrNotFound):
		return http.StatusNotFound, true

	case errors.Is(err, order.ErrOrderFull),
		errors.Is(err, order.ErrEmptyOrder):
		return http.StatusUnprocessableEntity, true

	case errors.Is(err, order.ErrVersionConflict):
		return http.StatusConflict, true

	case errors.Is(err, shipping.ErrAddressRequired),
		errors.Is(err, movie.ErrSearchTooBroad):
		return http.StatusBadRequest, true
	}

	var (
		invalidQty  *order.InvalidQuantityError
		notOnOrder  *order.ItemNotFoundError
		stateErr    *order.StateError
		invalidAddr *shipping.InvalidAddressError
	)
	switch {
	// Removing a movie that is not on the order is a validation failure on
	// an existing order, not a missing resource: 404 on the items route
	// already means the order id itself is unknown.
	case errors.As(err, &invalidQty), errors.As(err, &notOnOrder):
		return http.StatusUnprocessableEntity, true
	case errors.As(err, &stateErr):
		return http.StatusConflict, true
	case errors.As(err, &invalidAddr):
		return http.StatusBadRequest, true
	}

	return 0, false
}

// writeBadRequest reports a request parsing/validation failure.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}
