//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"regexp"
	"testing"
)

// The OMDB stub serves a fixed title: 1994, metascore 82, so every item
// prices at 12 * 82/100 = 9.84.
const (
	stubMovieID    = "tt0111161"
	stubMoviePrice = 9.84
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func createPickupOrder(t *testing.T, customerID string) orderResponse {
	t.Helper()

	resp := doPost(t, "/api/orders", createOrderRequest{
		CustomerID: customerID,
		Type:       "picked_up",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[orderResponse](t, resp)
}

func addItem(t *testing.T, orderID string, quantity int) orderResponse {
	t.Helper()

	resp := doPost(t, "/api/orders/"+orderID+"/items", addItemRequest{
		MovieID:  stubMovieID,
		Quantity: quantity,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d", resp.StatusCode)
	}
	return decodeJSON[orderResponse](t, resp)
}

func TestCreateOrder_Pickup(t *testing.T) {
	c := findCustomer(t, "Bob Ferris")
	o := createPickupOrder(t, c.ID)

	if !uuidPattern.MatchString(o.ID) {
		t.Errorf("order id %q is not a UUID", o.ID)
	}
	if o.Status != "new" {
		t.Errorf("status: got %q, want new", o.Status)
	}
	if o.TotalCost != 0 {
		t.Errorf("total cost: got %v, want 0", o.TotalCost)
	}
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	resp := doPost(t, "/api/orders", createOrderRequest{
		CustomerID: "00000000-0000-4000-8000-000000000000",
		Type:       "picked_up",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_BadType(t *testing.T) {
	c := findCustomer(t, "Bob Ferris")

	resp := doPost(t, "/api/orders", createOrderRequest{
		CustomerID: c.ID,
		Type:       "teleported",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Message == "" {
		t.Error("error message is empty")
	}
}

func TestOrderLifecycle(t *testing.T) {
	// Bob: hired 2019, born 1990 — no discounts.
	c := findCustomer(t, "Bob Ferris")
	o := createPickupOrder(t, c.ID)

	o = addItem(t, o.ID, 2)
	if len(o.Items) != 1 {
		t.Fatalf("items: got %d, want 1", len(o.Items))
	}
	if o.Items[0].Quantity != 2 {
		t.Errorf("quantity: got %d, want 2", o.Items[0].Quantity)
	}
	if o.Items[0].Price != stubMoviePrice {
		t.Errorf("price: got %v, want %v", o.Items[0].Price, stubMoviePrice)
	}
	if want := 2 * stubMoviePrice; o.TotalCost != want {
		t.Errorf("total cost: got %v, want %v", o.TotalCost, want)
	}

	// Adding the same movie merges quantities.
	o = addItem(t, o.ID, 1)
	if len(o.Items) != 1 || o.Items[0].Quantity != 3 {
		t.Fatalf("merge: got %d items, quantity %d", len(o.Items), o.Items[0].Quantity)
	}

	resp := doPost(t, "/api/orders/"+o.ID+"/complete", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d", resp.StatusCode)
	}

	completed := decodeJSON[orderResponse](t, resp)
	if completed.Status != "completed" {
		t.Errorf("status: got %q, want completed", completed.Status)
	}
	if completed.CompletedAt == "" {
		t.Error("completedDateTimeUtc not set")
	}

	// Completing twice conflicts.
	resp2 := doPost(t, "/api/orders/"+o.ID+"/complete", nil)
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusConflict {
		t.Fatalf("re-complete: expected 409, got %d", resp2.StatusCode)
	}
}

func TestCancelOrder(t *testing.T) {
	c := findCustomer(t, "Bob Ferris")
	o := createPickupOrder(t, c.ID)

	resp := doPost(t, "/api/orders/"+o.ID+"/cancel", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d", resp.StatusCode)
	}

	cancelled := decodeJSON[orderResponse](t, resp)
	if cancelled.Status != "cancelled" {
		t.Errorf("status: got %q, want cancelled", cancelled.Status)
	}
	if cancelled.CancelledAt == "" {
		t.Error("cancelledDateTimeUtc not set")
	}

	// Cancelled orders reject mutation.
	resp2 := doPost(t, "/api/orders/"+o.ID+"/items", addItemRequest{MovieID: stubMovieID, Quantity: 1})
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusConflict {
		t.Fatalf("add to cancelled: expected 409, got %d", resp2.StatusCode)
	}
}

func TestCompleteOrder_Empty(t *testing.T) {
	c := findCustomer(t, "Bob Ferris")
	o := createPickupOrder(t, c.ID)

	resp := doPost(t, "/api/orders/"+o.ID+"/complete", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestAddItem_Validation(t *testing.T) {
	c := findCustomer(t, "Bob Ferris")
	o := createPickupOrder(t, c.ID)

	resp := doPost(t, "/api/orders/"+o.ID+"/items", addItemRequest{MovieID: stubMovieID, Quantity: 0})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("zero quantity: expected 422, got %d", resp.StatusCode)
	}

	resp2 := doPost(t, "/api/orders/"+o.ID+"/items", addItemRequest{MovieID: stubMovieID, Quantity: 21})
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("over cap: expected 422, got %d", resp2.StatusCode)
	}
}

func TestRemoveItem(t *testing.T) {
	c := findCustomer(t, "Bob Ferris")
	o := createPickupOrder(t, c.ID)
	addItem(t, o.ID, 1)

	resp := doDelete(t, "/api/orders/"+o.ID+"/items/"+stubMovieID)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d", resp.StatusCode)
	}

	got := decodeJSON[orderResponse](t, resp)
	if len(got.Items) != 0 {
		t.Errorf("items after remove: got %d, want 0", len(got.Items))
	}
	if got.TotalCost != 0 {
		t.Errorf("total cost after remove: got %v, want 0", got.TotalCost)
	}

	resp2 := doDelete(t, "/api/orders/"+o.ID+"/items/"+stubMovieID)
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("remove missing: expected 422, got %d", resp2.StatusCode)
	}
}

func TestSeniorCitizenDiscount(t *testing.T) {
	// Carla: born 1948, hired 2023 — senior citizen only.
	c := findCustomer(t, "Carla Dunne")
	o := createPickupOrder(t, c.ID)

	o = addItem(t, o.ID, 2)

	if len(o.Discounts) != 1 {
		t.Fatalf("discounts: got %d, want 1", len(o.Discounts))
	}
	if o.Discounts[0].Type != "senior_citizen" {
		t.Errorf("discount type: got %q, want senior_citizen", o.Discounts[0].Type)
	}
	// 0.15 * 19.68 = 2.952, banker's rounding to 2.95.
	if o.DiscountTotal != 2.95 {
		t.Errorf("discount total: got %v, want 2.95", o.DiscountTotal)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	resp := doGet(t, "/api/orders/00000000-0000-4000-8000-000000000000")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSearchOrders_ByCustomer(t *testing.T) {
	// Elena has no other activity in this suite, so her order count is stable.
	c := findCustomer(t, "Elena Vasquez")
	created := createPickupOrder(t, c.ID)

	resp := doGet(t, fmt.Sprintf("/api/orders?customerId=%s", c.ID))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", resp.StatusCode)
	}

	found := decodeJSON[[]orderResponse](t, resp)
	if len(found) != 1 {
		t.Fatalf("orders: got %d, want 1", len(found))
	}
	if found[0].ID != created.ID {
		t.Errorf("order id: got %q, want %q", found[0].ID, created.ID)
	}
}
