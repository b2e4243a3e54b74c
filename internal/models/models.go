// Package models defines the record and table types exchanged between the
// parsing, matching and reporting layers.
//
// Input tables are schemaless: each row is an opaque bag of column values,
// and the caller declares which columns carry the semantic fields (order
// identifier, order amount, payment identifier, payment amount, optional
// commission) through ColumnRoles. The original row is carried untouched on
// every record so reports can echo all source columns back out.
package models

import (
	"fmt"
	"strconv"

	"payout-reconciliation-service/internal/normalize"

	"github.com/shopspring/decimal"
)

// Row maps column names to raw cell values.
type Row map[string]string

// Table is an ordered tabular dataset. Columns preserves the source column
// order; Rows preserves the source row order. Both orders are load-bearing:
// the matching phases and the batch grouper are greedy and their tie-breaks
// depend on deterministic iteration.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given column order.
func NewTable(columns []string) *Table {
	return &Table{Columns: columns}
}

// Append adds a row to the table.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	if t == nil || name == "" {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ColumnRoles declares which columns supply the semantic fields of the
// order and payment tables. Empty role values fall back to positional row
// indexes for identifiers and zero for amounts.
type ColumnRoles struct {
	OrderID       string `json:"order_id"`
	OrderAmount   string `json:"order_amount"`
	PaymentID     string `json:"payment_id"`
	PaymentAmount string `json:"payment_amount"`
	Commission    string `json:"commission,omitempty"`
}

// OrderRecord is one normalized order row: an amount owed.
// Immutable after creation; Fields carries the original row untouched.
type OrderRecord struct {
	ID       string
	Amount   decimal.Decimal
	RowIndex int
	Fields   Row
}

// String returns a string representation of the OrderRecord.
func (o *OrderRecord) String() string {
	return fmt.Sprintf("Order{ID: %s, Amount: %s}", o.ID, o.Amount.String())
}

// PaymentRecord is one normalized payment row: an amount settled.
// Commission defaults to zero when no commission column is declared.
type PaymentRecord struct {
	ID         string
	Amount     decimal.Decimal
	Commission decimal.Decimal
	RowIndex   int
	Fields     Row
}

// String returns a string representation of the PaymentRecord.
func (p *PaymentRecord) String() string {
	return fmt.Sprintf("Payment{ID: %s, Amount: %s, Commission: %s}",
		p.ID, p.Amount.String(), p.Commission.String())
}

// PayoutAssignment records the orders assigned to one bank-statement row.
type PayoutAssignment struct {
	BankRowID   int             `json:"bank_row_id"`
	Target      decimal.Decimal `json:"target"`
	OrderIDs    []string        `json:"orders"`
	AssignedSum decimal.Decimal `json:"sum"`
}

// BuildOrderRecords normalizes an order table into records, in row order.
// A missing identifier column falls back to the positional row index as
// text; a missing amount column falls back to zero.
func BuildOrderRecords(t *Table, roles ColumnRoles) []*OrderRecord {
	if t == nil {
		return nil
	}

	hasID := t.HasColumn(roles.OrderID)
	hasAmount := t.HasColumn(roles.OrderAmount)

	records := make([]*OrderRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		rec := &OrderRecord{
			RowIndex: i,
			Fields:   row,
			Amount:   decimal.Zero,
		}

		if hasID {
			rec.ID = normalize.Identifier(row[roles.OrderID])
		} else {
			rec.ID = strconv.Itoa(i)
		}
		if hasAmount {
			rec.Amount = normalize.ParseAmount(row[roles.OrderAmount])
		}

		records = append(records, rec)
	}
	return records
}

// BuildPaymentRecords normalizes a payment table into records, in row
// order, with the same fallbacks as BuildOrderRecords. A nil table yields
// an empty pool, which leaves every order unmatched.
func BuildPaymentRecords(t *Table, roles ColumnRoles) []*PaymentRecord {
	if t == nil {
		return nil
	}

	hasID := t.HasColumn(roles.PaymentID)
	hasAmount := t.HasColumn(roles.PaymentAmount)
	hasCommission := t.HasColumn(roles.Commission)

	records := make([]*PaymentRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		rec := &PaymentRecord{
			RowIndex:   i,
			Fields:     row,
			Amount:     decimal.Zero,
			Commission: decimal.Zero,
		}

		if hasID {
			rec.ID = normalize.Identifier(row[roles.PaymentID])
		} else {
			rec.ID = strconv.Itoa(i)
		}
		if hasAmount {
			rec.Amount = normalize.ParseAmount(row[roles.PaymentAmount])
		}
		if hasCommission {
			rec.Commission = normalize.ParseAmount(row[roles.Commission])
		}

		records = append(records, rec)
	}
	return records
}
