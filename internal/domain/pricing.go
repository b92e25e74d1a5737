package domain

// Delivery-fee policy constants. These are externally visible business
// behavior; the threshold is inclusive.
const (
	// FreeShippingThreshold is the subtotal at or above which delivery is free.
	FreeShippingThreshold int64 = 30000
	// StandardDeliveryFee is the flat fee charged below the threshold.
	StandardDeliveryFee int64 = 3000
)

// OrderPricing captures the monetary results of pricing a cart snapshot.
type OrderPricing struct {
	Subtotal    int64
	DeliveryFee int64
	Total       int64
}

// PriceOrder computes the delivery fee and grand total for a subtotal.
func PriceOrder(subtotal int64) OrderPricing {
	fee := StandardDeliveryFee
	if subtotal >= FreeShippingThreshold {
		fee = 0
	}
	return OrderPricing{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal + fee,
	}
}
