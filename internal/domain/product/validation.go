package product

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// decimalLiteral matches plain decimal text: optional sign, digits, optional
// fraction. Exponent notation is refused so the fraction length can always be
// read from the text itself.
var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

var quantityLimit = decimal.NewFromInt(QuantityMax)

// ValidatePrice checks raw exactly as the caller supplied it. The number of
// fractional digits is counted on the text, never on a converted value.
func ValidatePrice(raw string) (Price, *FieldError) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Price{}, priceError(ReasonRequired, "Price is required and cannot be empty.")
	}
	if !decimalLiteral.MatchString(text) {
		return Price{}, priceError(ReasonNotNumeric, "The price must be a valid number.")
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return Price{}, priceError(ReasonNotNumeric, "The price must be a valid number.")
	}
	if !amount.IsPositive() {
		return Price{}, priceError(ReasonNotPositive, "The price must be greater than 0.")
	}
	if fractionDigits(text) > PriceDecimalPlaces {
		return Price{}, priceError(ReasonTooManyDecimals, "The price must have at most 2 decimal places.")
	}
	if amount.GreaterThan(maxPrice) {
		return Price{}, priceError(ReasonOutOfRange, "The price must be less than 1,000,000.00.")
	}
	return NewPrice(amount), nil
}

func fractionDigits(text string) int {
	_, frac, ok := strings.Cut(text, ".")
	if !ok {
		return 0
	}
	return len(frac)
}

func priceError(reason Reason, msg string) *FieldError {
	return &FieldError{Field: FieldPrice, Reason: reason, Message: msg}
}

// ValidateName returns the trimmed name.
func ValidateName(raw string) (string, *FieldError) {
	trimmed := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(trimmed)
	switch {
	case length == 0:
		return "", &FieldError{Field: FieldName, Reason: ReasonEmpty, Message: "Product name is required and cannot be empty."}
	case length < NameMinLength:
		return "", &FieldError{Field: FieldName, Reason: ReasonTooShort, Message: "Product name must be at least 2 characters long."}
	case utf8.RuneCountInString(raw) > NameMaxLength:
		return "", &FieldError{Field: FieldName, Reason: ReasonTooLong, Message: "Product name may not be greater than 255 characters."}
	}
	return trimmed, nil
}

// ValidateQuantity accepts whole numbers, including "5.0", in [0, QuantityMax].
func ValidateQuantity(raw string) (int, *FieldError) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return 0, quantityError(ReasonRequired, "The quantity field is required.")
	}
	if !decimalLiteral.MatchString(text) {
		return 0, quantityError(ReasonNotInteger, "The quantity must be an integer.")
	}
	n, err := decimal.NewFromString(text)
	if err != nil {
		return 0, quantityError(ReasonNotInteger, "The quantity must be an integer.")
	}
	if n.IsNegative() {
		return 0, quantityError(ReasonNegative, "The quantity must be at least 0.")
	}
	if !n.Equal(n.Truncate(0)) {
		return 0, quantityError(ReasonNotInteger, "The quantity must be an integer.")
	}
	if n.GreaterThan(quantityLimit) {
		return 0, quantityError(ReasonOutOfRange, "The quantity is too large.")
	}
	return int(n.IntPart()), nil
}

func quantityError(reason Reason, msg string) *FieldError {
	return &FieldError{Field: FieldQuantity, Reason: reason, Message: msg}
}

// ValidateSKU trims an optional SKU. Blank input is treated as absent.
func ValidateSKU(raw *string) (*string, *FieldError) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > SKUMaxLength {
		return nil, &FieldError{Field: FieldSKU, Reason: ReasonTooLong, Message: "The SKU may not be greater than 255 characters."}
	}
	return &trimmed, nil
}

// ValidateDescription carries no format rule; blank text becomes absent.
func ValidateDescription(raw *string) *string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	desc := *raw
	return &desc
}

// Validate runs every field rule and collects all failures into a single
// rejection. It touches no storage state.
func Validate(p Payload) (Draft, *Rejection) {
	var (
		d   Draft
		rej Rejection
		fe  *FieldError
	)
	d.Name, fe = ValidateName(p.Name)
	rej.add(fe)
	d.SKU, fe = ValidateSKU(p.SKU)
	rej.add(fe)
	d.Description = ValidateDescription(p.Description)
	d.Price, fe = ValidatePrice(p.Price)
	rej.add(fe)
	d.Quantity, fe = ValidateQuantity(p.Quantity)
	rej.add(fe)

	if len(rej.FieldErrors) > 0 {
		rej.Kind = KindValidationFailed
		return Draft{}, &rej
	}
	return d, nil
}
