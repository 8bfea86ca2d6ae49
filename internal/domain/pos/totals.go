package pos

import (
	"github.com/erp/posgateway/internal/domain/finance"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineAmounts are the computed money figures of one line
type LineAmounts struct {
	Item     SaleLineItem
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Totals are the computed money figures of a sale
type Totals struct {
	Lines      []LineAmounts
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	Paid       decimal.Decimal
	Applied    decimal.Decimal // paid, capped at total
	Change     decimal.Decimal
	BalanceDue decimal.Decimal
	Status     finance.InvoiceStatus
}

// ComputeTotals prices every line and settles the payment against the total.
// Line subtotals and taxes are rounded to cents before summing so the header
// always equals the sum of its lines.
func ComputeTotals(items []SaleLineItem, paid decimal.Decimal) Totals {
	t := Totals{
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Paid:     paid,
	}
	for _, item := range items {
		subtotal := item.GrossAmount().Sub(item.Discount).Round(2)
		tax := subtotal.Mul(item.TaxRate).Div(hundred).Round(2)
		t.Lines = append(t.Lines, LineAmounts{
			Item:     item,
			Subtotal: subtotal,
			Tax:      tax,
			Total:    subtotal.Add(tax),
		})
		t.Subtotal = t.Subtotal.Add(subtotal)
		t.Tax = t.Tax.Add(tax)
	}
	t.Total = t.Subtotal.Add(t.Tax)
	t.Applied = decimal.Min(paid, t.Total)
	t.Change = decimal.Max(paid.Sub(t.Total), decimal.Zero)
	t.BalanceDue = decimal.Max(t.Total.Sub(paid), decimal.Zero)
	t.Status = finance.InvoiceStatusFor(paid, t.Total)
	return t
}
