package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatchValid(t *testing.T) {
	body := []byte(`[{"name":"Widget","price":9.99,"quantity":3},{"name":"Gadget","price":20,"quantity":1,"sku":"ignored"}]`)

	records, err := ParseBatch(body)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Widget", records[0].Name)
	assert.Equal(t, "9.99", records[0].Price.String())
	assert.Equal(t, int64(3), records[0].Quantity)
	assert.Equal(t, "Gadget", records[1].Name)
	assert.Equal(t, "29.97", records[0].Subtotal().String())
	assert.Equal(t, "49.97", BatchTotal(records).String())
}

func TestParseBatchEmpty(t *testing.T) {
	_, err := ParseBatch([]byte(` [] `))
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestParseBatchNotAnArray(t *testing.T) {
	for _, body := range []string{``, `{"name":"A"}`, `[1,`, `"x"`} {
		_, err := ParseBatch([]byte(body))

		var verr *ValidationError
		require.True(t, errors.As(err, &verr), body)
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, -1, verr.Fields[0].Index)
		assert.Equal(t, ConstraintArray, verr.Fields[0].Constraint)
	}
}

func TestParseBatchFieldViolations(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		field      string
		constraint string
	}{
		{"negative price", `[{"name":"Bad","price":-1,"quantity":1}]`, "price", ConstraintPositive},
		{"zero price", `[{"name":"Bad","price":0,"quantity":1}]`, "price", ConstraintPositive},
		{"string price", `[{"name":"Bad","price":"9.99","quantity":1}]`, "price", ConstraintType},
		{"missing price", `[{"name":"Bad","quantity":1}]`, "price", ConstraintRequired},
		{"zero quantity", `[{"name":"Bad","price":1,"quantity":0}]`, "quantity", ConstraintPositive},
		{"fractional quantity", `[{"name":"Bad","price":1,"quantity":1.5}]`, "quantity", ConstraintType},
		{"null quantity", `[{"name":"Bad","price":1,"quantity":null}]`, "quantity", ConstraintRequired},
		{"empty name", `[{"name":"  ","price":1,"quantity":1}]`, "name", ConstraintNotEmpty},
		{"numeric name", `[{"name":7,"price":1,"quantity":1}]`, "name", ConstraintType},
		{"missing name", `[{"price":1,"quantity":1}]`, "name", ConstraintRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ParseBatch([]byte(tt.body))
			assert.Nil(t, records)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, 0, verr.Fields[0].Index)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Equal(t, tt.constraint, verr.Fields[0].Constraint)
		})
	}
}

func TestParseBatchRejectsWholeBatchAndListsEveryViolation(t *testing.T) {
	body := []byte(`[
		{"name":"Good","price":5,"quantity":2},
		{"name":"","price":-3,"quantity":0},
		"not an object"
	]`)

	records, err := ParseBatch(body)
	assert.Nil(t, records)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 4)

	assert.Equal(t, 1, verr.Fields[0].Index)
	assert.Equal(t, "name", verr.Fields[0].Field)
	assert.Equal(t, "price", verr.Fields[1].Field)
	assert.Equal(t, "quantity", verr.Fields[2].Field)
	assert.Equal(t, 2, verr.Fields[3].Index)
	assert.Equal(t, ConstraintObject, verr.Fields[3].Constraint)

	assert.Contains(t, err.Error(), "record 1: price: must be greater than zero")
}

func TestValidateBatchSize(t *testing.T) {
	records := make([]SalesRecord, 3)

	assert.NoError(t, ValidateBatchSize(records, 3))
	assert.NoError(t, ValidateBatchSize(records, 0))

	err := ValidateBatchSize(records, 2)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ConstraintMaxRecords, verr.Fields[0].Constraint)
}

func TestParseBatchPriceMagnitude(t *testing.T) {
	rejected := []struct {
		name       string
		price      string
		constraint string
	}{
		{"beyond float64", `1e400`, ConstraintRange},
		{"billion digit exponent", `1e1000000000`, ConstraintRange},
		{"exponent beyond int32", `1e99999999999`, ConstraintRange},
		{"upper case exponent", `2E13`, ConstraintRange},
		{"just above the maximum", `1000000000000.01`, ConstraintRange},
		{"tiny fraction", `0.0000000000001`, ConstraintRange},
		{"vanishing exponent", `1e-1000000000`, ConstraintRange},
		{"long literal", `1.00000000000000000000000000000000000000000000000000000000000000001`, ConstraintRange},
		{"huge negative", `-1e400`, ConstraintPositive},
	}

	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBatch([]byte(`[{"name":"Big","price":` + tt.price + `,"quantity":1}]`))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, "price", verr.Fields[0].Field)
			assert.Equal(t, tt.constraint, verr.Fields[0].Constraint)
		})
	}

	accepted := []struct {
		price string
		want  string
	}{
		{`1e12`, "1000000000000"},
		{`999999999999.999999999999`, "999999999999.999999999999"},
		{`0.000000000001`, "0.000000000001"},
		{`9.990000000000000000`, "9.99"},
		{`1.5e-3`, "0.0015"},
	}

	for _, tt := range accepted {
		t.Run(tt.price, func(t *testing.T) {
			records, err := ParseBatch([]byte(`[{"name":"Edge","price":` + tt.price + `,"quantity":9223372036854775807}]`))
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.True(t, records[0].Price.Equal(decimal.RequireFromString(tt.want)), records[0].Price.String())
		})
	}
}

func TestParseBatchQuantityOverflow(t *testing.T) {
	_, err := ParseBatch([]byte(`[{"name":"Many","price":1,"quantity":9223372036854775808}]`))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "quantity", verr.Fields[0].Field)
	assert.Equal(t, ConstraintType, verr.Fields[0].Constraint)
}
