package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

var roles = ColumnRoles{
	OrderID:       "order_id",
	OrderAmount:   "price",
	PaymentID:     "ref",
	PaymentAmount: "credited",
	Commission:    "fee",
}

func TestBuildOrderRecords(t *testing.T) {
	table := NewTable([]string{"order_id", "price", "status"})
	table.Append(Row{"order_id": " ORD1 ", "price": "Rs. 1,000", "status": "shipped"})
	table.Append(Row{"order_id": "ORD2", "price": "bad", "status": "returned"})

	records := BuildOrderRecords(table, roles)

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	if records[0].ID != "ORD1" {
		t.Errorf("id = %q, want trimmed ORD1", records[0].ID)
	}
	if !records[0].Amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("amount = %s, want 1000", records[0].Amount)
	}
	if records[0].Fields["status"] != "shipped" {
		t.Errorf("fields not carried through: %v", records[0].Fields)
	}

	// Unparsable amounts normalize to zero instead of failing the run.
	if !records[1].Amount.IsZero() {
		t.Errorf("bad amount = %s, want 0", records[1].Amount)
	}
}

func TestBuildOrderRecordsPositionalFallback(t *testing.T) {
	table := NewTable([]string{"price"})
	table.Append(Row{"price": "10"})
	table.Append(Row{"price": "20"})

	records := BuildOrderRecords(table, ColumnRoles{OrderAmount: "price"})

	if records[0].ID != "0" || records[1].ID != "1" {
		t.Errorf("ids = %q, %q, want positional 0, 1", records[0].ID, records[1].ID)
	}
}

func TestBuildOrderRecordsMissingAmountColumn(t *testing.T) {
	table := NewTable([]string{"order_id"})
	table.Append(Row{"order_id": "ORD1"})

	records := BuildOrderRecords(table, roles)
	if !records[0].Amount.IsZero() {
		t.Errorf("amount = %s, want 0", records[0].Amount)
	}
}

func TestBuildOrderRecordsNilTable(t *testing.T) {
	if got := BuildOrderRecords(nil, roles); got != nil {
		t.Errorf("nil table gave %v", got)
	}
}

func TestBuildPaymentRecords(t *testing.T) {
	table := NewTable([]string{"ref", "credited", "fee"})
	table.Append(Row{"ref": "ORD1", "credited": "950", "fee": "50"})

	records := BuildPaymentRecords(table, roles)

	p := records[0]
	if p.ID != "ORD1" {
		t.Errorf("id = %q", p.ID)
	}
	if !p.Amount.Equal(decimal.NewFromInt(950)) {
		t.Errorf("amount = %s, want 950", p.Amount)
	}
	if !p.Commission.Equal(decimal.NewFromInt(50)) {
		t.Errorf("commission = %s, want 50", p.Commission)
	}
}

func TestBuildPaymentRecordsCommissionDefaultsToZero(t *testing.T) {
	table := NewTable([]string{"ref", "credited"})
	table.Append(Row{"ref": "ORD1", "credited": "950"})

	records := BuildPaymentRecords(table, roles)
	if !records[0].Commission.IsZero() {
		t.Errorf("commission = %s, want 0", records[0].Commission)
	}
}

func TestTableHasColumn(t *testing.T) {
	table := NewTable([]string{"a", "b"})

	if !table.HasColumn("a") {
		t.Error("expected column a")
	}
	if table.HasColumn("c") {
		t.Error("unexpected column c")
	}
	if table.HasColumn("") {
		t.Error("empty name must never match")
	}

	var nilTable *Table
	if nilTable.HasColumn("a") {
		t.Error("nil table must have no columns")
	}
	if nilTable.Len() != 0 {
		t.Error("nil table must have length 0")
	}
}
