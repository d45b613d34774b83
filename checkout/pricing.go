package checkout

// Pricing holds the flat shipping policy.
type Pricing struct {
	ShippingFee           int64
	FreeShippingThreshold int64
}

var DefaultPricing = Pricing{
	ShippingFee:           300,
	FreeShippingThreshold: 5000,
}

// Summary is the price breakdown shown before payment.
type Summary struct {
	Subtotal     int64 `json:"subtotal"`
	Shipping     int64 `json:"shipping"`
	Total        int64 `json:"total"`
	FreeShipping bool  `json:"free_shipping"`
}

// Quote applies the shipping fee below the threshold and waives it at or above.
func (p Pricing) Quote(subtotal int64) Summary {
	shipping := p.ShippingFee
	if subtotal >= p.FreeShippingThreshold {
		shipping = 0
	}
	return Summary{
		Subtotal:     subtotal,
		Shipping:     shipping,
		Total:        subtotal + shipping,
		FreeShipping: shipping == 0,
	}
}
