// Package order defines the canonical representation of an e-commerce order
// delivered by webhook, and the normalizer that shapes raw payloads into it.
package order

import "encoding/json"

// Order is the webhook-delivered representation of a completed purchase.
// It is read-only within a single fulfillment run.
type Order struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Status string `json:"status"`
	IsPaid bool   `json:"isPaid"`
	Lines  []Line `json:"lines"`
	User   *Buyer `json:"user"`
}

// Line is one purchased item.
type Line struct {
	ID       string  `json:"id"`
	Quantity int     `json:"quantity"`
	Variant  Variant `json:"variant"`
}

// Variant carries the enrollment mode (variant name) and the product whose
// external reference identifies a course.
type Variant struct {
	Name    string  `json:"name"`
	Product Product `json:"product"`
}

// Product is the parent product of a purchased variant.
type Product struct {
	Name              string `json:"name"`
	ExternalReference string `json:"externalReference"`
}

// Buyer is the order's buyer identity reference.
type Buyer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Normalize shapes a decoded webhook order object into a canonical Order.
// An absent lines array becomes an empty slice and an absent user stays nil.
// It only shapes structure; downstream steps validate the fields they need.
func Normalize(raw json.RawMessage) (Order, error) {
	var ord Order
	if err := json.Unmarshal(raw, &ord); err != nil {
		return Order{}, err
	}
	if ord.Lines == nil {
		ord.Lines = []Line{}
	}
	return ord, nil
}
