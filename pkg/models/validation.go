package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseBatch decodes a JSON array of sales objects and validates every field of
// every record. Any violation fails the whole batch; all violations are reported
// together in a *ValidationError. An empty array returns ErrEmptyBatch.
func ParseBatch(body []byte) ([]SalesRecord, error) {
	var items []json.RawMessage
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' || json.Unmarshal(trimmed, &items) != nil {
		return nil, &ValidationError{Fields: []FieldError{{
			Index:      -1,
			Constraint: ConstraintArray,
			Message:    "request body must be a JSON array of sales objects",
		}}}
	}
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}

	verr := &ValidationError{}
	records := make([]SalesRecord, 0, len(items))
	for i, raw := range items {
		rec, ok := validateRecord(i, raw, verr)
		if ok {
			records = append(records, rec)
		}
	}
	if !verr.empty() {
		return nil, verr
	}
	return records, nil
}

// ValidateBatchSize rejects batches larger than max. A max of zero disables the check.
func ValidateBatchSize(records []SalesRecord, max int) error {
	if max > 0 && len(records) > max {
		return &ValidationError{Fields: []FieldError{{
			Index:      -1,
			Constraint: ConstraintMaxRecords,
			Message:    fmt.Sprintf("batch has %d records, at most %d are allowed", len(records), max),
		}}}
	}
	return nil
}

func validateRecord(index int, raw json.RawMessage, verr *ValidationError) (SalesRecord, bool) {
	var fields map[string]json.RawMessage
	if !isJSONObject(raw) || json.Unmarshal(raw, &fields) != nil {
		verr.add(FieldError{Index: index, Constraint: ConstraintObject, Message: "must be a JSON object"})
		return SalesRecord{}, false
	}

	before := len(verr.Fields)

	name, ferr := validateName(fields["name"])
	if ferr != nil {
		ferr.Index = index
		verr.add(*ferr)
	}
	price, ferr := validatePrice(fields["price"])
	if ferr != nil {
		ferr.Index = index
		verr.add(*ferr)
	}
	quantity, ferr := validateQuantity(fields["quantity"])
	if ferr != nil {
		ferr.Index = index
		verr.add(*ferr)
	}

	if len(verr.Fields) != before {
		return SalesRecord{}, false
	}
	return SalesRecord{Name: name, Price: price, Quantity: quantity}, true
}

func validateName(raw json.RawMessage) (string, *FieldError) {
	if isMissing(raw) {
		return "", required("name")
	}
	var name string
	if raw[0] != '"' || json.Unmarshal(raw, &name) != nil {
		return "", &FieldError{Field: "name", Constraint: ConstraintType, Message: "must be a string"}
	}
	if strings.TrimSpace(name) == "" {
		return "", &FieldError{Field: "name", Constraint: ConstraintNotEmpty, Message: "must not be empty"}
	}
	return name, nil
}

// 価格の上限と小数桁数の上限です。チャートの軸計算が有限の float64 に収まる範囲に制限します。
const (
	MaxPriceScale      = 12
	maxPriceExp        = 12
	maxPriceLiteralLen = 64
)

// MaxPrice is the largest accepted price.
var MaxPrice = decimal.New(1, maxPriceExp)

var errPriceRange = fmt.Sprintf("must be at most %s with at most %d decimal places", MaxPrice, MaxPriceScale)

func validatePrice(raw json.RawMessage) (decimal.Decimal, *FieldError) {
	if isMissing(raw) {
		return decimal.Zero, required("price")
	}
	if !isJSONNumber(raw) {
		return decimal.Zero, &FieldError{Field: "price", Constraint: ConstraintType, Message: "must be a number"}
	}
	if len(raw) > maxPriceLiteralLen {
		return decimal.Zero, priceRange()
	}
	// raw is already a valid JSON number here, so a parse failure means an exponent beyond int32.
	price, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, priceRange()
	}
	if !price.IsPositive() {
		return decimal.Zero, &FieldError{Field: "price", Constraint: ConstraintPositive, Message: "must be greater than zero"}
	}
	// 比較や丸めは指数を揃えるため、桁外れの指数はその前に弾きます。
	exp := price.Exponent()
	if exp > maxPriceExp || exp < -(maxPriceLiteralLen+MaxPriceScale) {
		return decimal.Zero, priceRange()
	}
	if price.GreaterThan(MaxPrice) || !price.Truncate(MaxPriceScale).Equal(price) {
		return decimal.Zero, priceRange()
	}
	return price, nil
}

func priceRange() *FieldError {
	return &FieldError{Field: "price", Constraint: ConstraintRange, Message: errPriceRange}
}

func validateQuantity(raw json.RawMessage) (int64, *FieldError) {
	if isMissing(raw) {
		return 0, required("quantity")
	}
	if !isJSONNumber(raw) {
		return 0, &FieldError{Field: "quantity", Constraint: ConstraintType, Message: "must be an integer"}
	}
	quantity, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, &FieldError{Field: "quantity", Constraint: ConstraintType, Message: "must be an integer"}
	}
	if quantity <= 0 {
		return 0, &FieldError{Field: "quantity", Constraint: ConstraintPositive, Message: "must be greater than zero"}
	}
	return quantity, nil
}

func required(field string) *FieldError {
	return &FieldError{Field: field, Constraint: ConstraintRequired, Message: "field required"}
}

// null は欠落として扱います。
func isMissing(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func isJSONObject(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '{'
}

func isJSONNumber(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}
