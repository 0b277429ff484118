// Package handler exposes the order placement API over HTTP.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/movie-orders/internal/domain/customer"
	"github.com/xenking/movie-orders/internal/domain/movie"
	"github.com/xenking/movie-orders/internal/domain/order"
)

// Metrics holds the instruments the handler records.
type Metrics struct {
	// OrdersCreated counts successfully created orders.
	OrdersCreated metric.Int64Counter
	// OrdersCompleted counts successfully completed orders.
	OrdersCompleted metric.Int64Counter
}

// Handler serves the REST API, delegating business logic to the order
// service and the catalog/customer repositories.
type Handler struct {
	orders    *order.Service
	movies    movie.Repository
	customers customer.Repository
	metrics   Metrics
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders *order.Service,
	movies movie.Repository,
	customers customer.Repository,
	metrics Metrics,
) *Handler {
	return &Handler{
		orders:    orders,
		movies:    movies,
		customers: customers,
		metrics:   metrics,
	}
}

// Routes returns the chi router for the API, intended to be mounted under
// /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.SearchOrders)
		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", h.GetOrder)
			r.Post("/items", h.AddOrderItem)
			r.Delete("/items/{movieID}", h.RemoveOrderItem)
			r.Post("/complete", h.CompleteOrder)
			r.Post("/cancel", h.CancelOrder)
		})
	})

	r.Route("/movies", func(r chi.Router) {
		r.Get("/", h.SearchMovies)
		r.Get("/{movieID}", h.GetMovie)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.SearchCustomers)
		r.Get("/{customerID}", h.GetCustomer)
	})

	return r
}

// writeJSON encodes v with the given status. Encoding failures are ignored:
// the status line is already on the wire.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
