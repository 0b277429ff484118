package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xenking/movie-orders/internal/domain/order"
	"github.com/xenking/movie-orders/internal/domain/shipping"
)

// addressPayload is the wire form of a shipping address.
type addressPayload struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

type createOrderRequest struct {
	CustomerID      string          `json:"customerId"`
	Type            string          `json:"type"`
	ShippingAddress *addressPayload `json:"shippingAddress,omitempty"`
}

type addOrderItemRequest struct {
	MovieID  string `json:"movieId"`
	Quantity int    `json:"quantity"`
}

type orderItemResponse struct {
	MovieID   string  `json:"movieId"`
	Year      string  `json:"movieYear,omitempty"`
	Metascore string  `json:"movieMetascore,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderDiscountResponse struct {
	Type    string  `json:"type"`
	Percent float64 `json:"percentDiscount"`
}

type orderCustomerResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"`
	DateHired   string `json:"dateHired"`
}

type orderResponse struct {
	ID              string                  `json:"id"`
	Status          string                  `json:"status"`
	Type            string                  `json:"type"`
	Customer        orderCustomerResponse   `json:"customer"`
	ShippingAddress *addressPayload         `json:"shippingAddress,omitempty"`
	Items           []orderItemResponse     `json:"items"`
	Discounts       []orderDiscountResponse `json:"discounts"`
	Shipping        float64                 `json:"shipping"`
	LineItemTotal   float64                 `json:"lineItemTotal"`
	DiscountTotal   float64                 `json:"discountTotal"`
	TotalCost       float64                 `json:"totalCost"`
	CreatedAt       time.Time               `json:"createdDateTimeUtc"`
	CompletedAt     *time.Time              `json:"completedDateTimeUtc,omitempty"`
	CancelledAt     *time.Time              `json:"cancelledDateTimeUtc,omitempty"`
}

// CreateOrder handles POST /orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		writeBadRequest(w, "the supplied customer id is invalid")
		return
	}

	orderType, ok := parseOrderType(req.Type)
	if !ok {
		writeBadRequest(w, "order type must be \"shipped\" or \"picked_up\"")
		return
	}

	o, err := h.orders.CreateOrder(r.Context(), order.CreateOrderRequest{
		CustomerID:      customerID,
		Type:            orderType,
		ShippingAddress: toDomainAddress(req.ShippingAddress),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.OrdersCreated.Add(r.Context(), 1)
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// GetOrder handles GET /orders/{orderID}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// SearchOrders handles GET /orders?customerId=&noOlderThan=.
func (h *Handler) SearchOrders(w http.ResponseWriter, r *http.Request) {
	var req order.SearchOrdersRequest

	if raw := r.URL.Query().Get("customerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeBadRequest(w, "the supplied customer id is invalid")
			return
		}
		req.CustomerID = &id
	}
	if raw := r.URL.Query().Get("noOlderThan"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "noOlderThan must be an RFC 3339 timestamp")
			return
		}
		req.NoOlderThan = &ts
	}

	found, err := h.orders.SearchOrders(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(found))
	for i, o := range found {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddOrderItem handles POST /orders/{orderID}/items.
func (h *Handler) AddOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	var req addOrderItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.MovieID == "" {
		writeBadRequest(w, "movieId is required")
		return
	}

	o, err := h.orders.AddItem(r.Context(), id, req.MovieID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// RemoveOrderItem handles DELETE /orders/{orderID}/items/{movieID}.
func (h *Handler) RemoveOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	o, err := h.orders.RemoveItem(r.Context(), id, chi.URLParam(r, "movieID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// CompleteOrder handles POST /orders/{orderID}/complete.
func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	o, err := h.orders.CompleteOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.OrdersCompleted.Add(r.Context(), 1)
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// CancelOrder handles POST /orders/{orderID}/cancel.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	o, err := h.orders.CancelOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func orderIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeBadRequest(w, "the supplied order id is invalid")
		return uuid.Nil, false
	}
	return id, true
}

func parseOrderType(raw string) (order.Type, bool) {
	switch order.Type(raw) {
	case order.TypeShipped:
		return order.TypeShipped, true
	case order.TypePickedUp:
		return order.TypePickedUp, true
	}
	return "", false
}

func toDomainAddress(p *addressPayload) *shipping.Address {
	if p == nil {
		return nil
	}
	return &shipping.Address{
		Line1:   p.Line1,
		Line2:   p.Line2,
		City:    p.City,
		State:   p.State,
		ZipCode: p.ZipCode,
	}
}

func toAddressPayload(a *shipping.Address) *addressPayload {
	if a == nil {
		return nil
	}
	return &addressPayload{
		Line1:   a.Line1,
		Line2:   a.Line2,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
	}
}

const dateOnly = "2006-01-02"

func toOrderResponse(o *order.Order) orderResponse {
	items := o.Items()
	respItems := make([]orderItemResponse, len(items))
	for i, item := range items {
		respItems[i] = orderItemResponse{
			MovieID:   item.MovieID,
			Year:      item.Year,
			Metascore: item.Metascore,
			Quantity:  item.Quantity,
			Price:     item.Price.InexactFloat64(),
		}
	}

	discounts := o.Discounts()
	respDiscounts := make([]orderDiscountResponse, len(discounts))
	for i, d := range discounts {
		respDiscounts[i] = orderDiscountResponse{
			Type:    string(d.Type),
			Percent: d.Percent.InexactFloat64(),
		}
	}

	return orderResponse{
		ID:     o.ID.String(),
		Status: string(o.Status),
		Type:   string(o.Type),
		Customer: orderCustomerResponse{
			ID:          o.Customer.ID.String(),
			Name:        o.Customer.Name,
			DateOfBirth: o.Customer.DateOfBirth.Format(dateOnly),
			DateHired:   o.Customer.DateHired.Format(dateOnly),
		},
		ShippingAddress: toAddressPayload(o.ShippingAddress),
		Items:           respItems,
		Discounts:       respDiscounts,
		Shipping:        o.Shipping.InexactFloat64(),
		LineItemTotal:   o.LineItemTotal.InexactFloat64(),
		DiscountTotal:   o.DiscountTotal.InexactFloat64(),
		TotalCost:       o.TotalCost().InexactFloat64(),
		CreatedAt:       o.CreatedAt,
		CompletedAt:     o.CompletedAt,
		CancelledAt:     o.CancelledAt,
	}
}
