package models

import "github.com/shopspring/decimal"

// SalesRecord は検証済みの販売明細1行を表します。
// ParseBatch からのみ生成され、生成後は変更されません。
type SalesRecord struct {
	Name     string
	Price    decimal.Decimal
	Quantity int64
}

// Subtotal returns price × quantity.
func (r SalesRecord) Subtotal() decimal.Decimal {
	return r.Price.Mul(decimal.NewFromInt(r.Quantity))
}

// BatchTotal はバッチ全体の売上合計を返します。
func BatchTotal(records []SalesRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Subtotal())
	}
	return total
}
