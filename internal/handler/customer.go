package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xenking/movie-orders/internal/domain/customer"
)

type customerResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DateOfBirth  string  `json:"dateOfBirth"`
	DateHired    string  `json:"dateHired"`
	AnnualSalary float64 `json:"annualSalary"`
}

// GetCustomer handles GET /customers/{customerID}.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "customerID"))
	if err != nil {
		writeBadRequest(w, "the supplied customer id is invalid")
		return
	}

	c, err := h.customers.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(*c))
}

// SearchCustomers handles GET /customers?name=.
func (h *Handler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeBadRequest(w, "name query parameter is required")
		return
	}

	found, err := h.customers.Search(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]customerResponse, len(found))
	for i, c := range found {
		resp[i] = toCustomerResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

func toCustomerResponse(c customer.Customer) customerResponse {
	return customerResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		DateOfBirth:  c.DateOfBirth.Format(dateOnly),
		DateHired:    c.DateHired.Format(dateOnly),
		AnnualSalary: c.AnnualSalary.InexactFloat64(),
	}
}
