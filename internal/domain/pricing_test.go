package domain

import "testing"

func TestPriceOrderChargesFlatFeeBelowThreshold(t *testing.T) {
	got := PriceOrder(29999)
	want := OrderPricing{Subtotal: 29999, DeliveryFee: 3000, Total: 32999}
	if got != want {
		t.Fatalf("unexpected pricing: got %+v want %+v", got, want)
	}
}

func TestPriceOrderFreeShippingBoundaryInclusive(t *testing.T) {
	got := PriceOrder(30000)
	want := OrderPricing{Subtotal: 30000, DeliveryFee: 0, Total: 30000}
	if got != want {
		t.Fatalf("unexpected pricing: got %+v want %+v", got, want)
	}
}

func TestPriceOrderZeroSubtotal(t *testing.T) {
	got := PriceOrder(0)
	if got.DeliveryFee != StandardDeliveryFee {
		t.Fatalf("expected flat fee for empty subtotal, got %d", got.DeliveryFee)
	}
	if got.Total != StandardDeliveryFee {
		t.Fatalf("expected total %d, got %d", StandardDeliveryFee, got.Total)
	}
}

func TestCartTotals(t *testing.T) {
	cart := Cart{
		Lines: []CartLine{
			{ProductID: "1", UnitPrice: 4500, Quantity: 2},
			{ProductID: "2", UnitPrice: 3200, Quantity: 1},
		},
	}
	if got := cart.TotalItems(); got != 3 {
		t.Fatalf("expected 3 items, got %d", got)
	}
	if got := cart.TotalPrice(); got != 12200 {
		t.Fatalf("expected total 12200, got %d", got)
	}
}
