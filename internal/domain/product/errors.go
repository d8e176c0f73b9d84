package product

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates a product could not be located.
	ErrNotFound = errors.New("product not found")
	// ErrValidation signals a payload that failed field validation.
	ErrValidation = errors.New("product payload is invalid")
	// ErrDuplicateName signals name uniqueness constraint breaches.
	ErrDuplicateName = errors.New("product with name already exists")
	// ErrDuplicateSKU signals SKU uniqueness constraint breaches.
	ErrDuplicateSKU = errors.New("product with SKU already exists")
)

// Kind classifies a Rejection.
type Kind string

const (
	KindValidationFailed Kind = "validation_failed"
	KindDuplicateName    Kind = "duplicate_name"
	KindDuplicateSKU     Kind = "duplicate_sku"
)

// Reason is the machine-readable cause attached to a single field.
type Reason string

const (
	ReasonRequired        Reason = "required"
	ReasonEmpty           Reason = "empty"
	ReasonTooShort        Reason = "too_short"
	ReasonTooLong         Reason = "too_long"
	ReasonNotNumeric      Reason = "not_numeric"
	ReasonNotPositive     Reason = "not_positive"
	ReasonTooManyDecimals Reason = "too_many_decimals"
	ReasonOutOfRange      Reason = "out_of_range"
	ReasonNegative        Reason = "negative"
	ReasonNotInteger      Reason = "not_integer"
	ReasonDuplicate       Reason = "duplicate"
)

// FieldError describes why one field of a payload was refused.
type FieldError struct {
	Field   string `json:"-"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Rejection is returned instead of a stored record when a mutation is
// refused. The collection is guaranteed unchanged when one is returned.
type Rejection struct {
	Kind        Kind
	FieldErrors map[string]FieldError
}

func (r *Rejection) Error() string {
	fields := make([]string, 0, len(r.FieldErrors))
	for name := range r.FieldErrors {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, name := range fields {
		fe := r.FieldErrors[name]
		msgs = append(msgs, fe.Error())
	}
	return string(r.Kind) + ": " + strings.Join(msgs, "; ")
}

// Unwrap maps the rejection onto the sentinel of its kind so callers can use
// errors.Is.
func (r *Rejection) Unwrap() error {
	switch r.Kind {
	case KindDuplicateName:
		return ErrDuplicateName
	case KindDuplicateSKU:
		return ErrDuplicateSKU
	default:
		return ErrValidation
	}
}

// Field returns the error recorded for field, if any.
func (r *Rejection) Field(name string) (FieldError, bool) {
	fe, ok := r.FieldErrors[name]
	return fe, ok
}

func (r *Rejection) add(fe *FieldError) {
	if fe == nil {
		return
	}
	if r.FieldErrors == nil {
		r.FieldErrors = make(map[string]FieldError)
	}
	r.FieldErrors[fe.Field] = *fe
}

// DuplicateRejection builds the rejection for a uniqueness conflict. A name
// conflict decides the kind when both fields collide. It returns nil when
// neither flag is set.
func DuplicateRejection(nameTaken, skuTaken bool) *Rejection {
	if !nameTaken && !skuTaken {
		return nil
	}
	r := &Rejection{Kind: KindDuplicateSKU}
	if nameTaken {
		r.Kind = KindDuplicateName
		r.add(&FieldError{Field: FieldName, Reason: ReasonDuplicate, Message: "A product with that name already exists."})
	}
	if skuTaken {
		r.add(&FieldError{Field: FieldSKU, Reason: ReasonDuplicate, Message: "A product with that SKU already exists."})
	}
	return r
}
