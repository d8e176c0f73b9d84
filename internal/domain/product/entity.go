package product

import (
	"bytes"
	"encoding/json"
	"time"
)

// Product captures the state of an individual product.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SKU         *string   `json:"sku"`
	Description *string   `json:"description"`
	Price       Price     `json:"price"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Apply replaces every mutable field with the validated draft. ID and
// CreatedAt are left untouched.
func (p *Product) Apply(d Draft, now time.Time) {
	p.Name = d.Name
	p.SKU = d.SKU
	p.Description = d.Description
	p.Price = d.Price
	p.Quantity = d.Quantity
	p.UpdatedAt = now
}

// Clone returns a deep copy so stores never hand out shared pointers.
func (p *Product) Clone() *Product {
	c := *p
	if p.SKU != nil {
		sku := *p.SKU
		c.SKU = &sku
	}
	if p.Description != nil {
		desc := *p.Description
		c.Description = &desc
	}
	return &c
}

// Payload is a candidate product as submitted by a caller. Price and Quantity
// keep the caller's literal text so that no numeric conversion happens before
// validation.
type Payload struct {
	Name        string
	SKU         *string
	Description *string
	Price       string
	Quantity    string
}

// UnmarshalJSON accepts price and quantity as JSON numbers or strings and
// records their text verbatim.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name        string          `json:"name"`
		SKU         *string         `json:"sku"`
		Description *string         `json:"description"`
		Price       json.RawMessage `json:"price"`
		Quantity    json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Payload{
		Name:        raw.Name,
		SKU:         raw.SKU,
		Description: raw.Description,
		Price:       literal(raw.Price),
		Quantity:    literal(raw.Quantity),
	}
	return nil
}

// literal returns the text of a JSON scalar: the contents of a string, the
// digits of a number as written, or "" for null or absence.
func literal(data json.RawMessage) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ""
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			return s
		}
	}
	return string(data)
}

// Draft is a payload that passed Validate: trimmed, normalized and typed.
type Draft struct {
	Name        string
	SKU         *string
	Description *string
	Price       Price
	Quantity    int
}
