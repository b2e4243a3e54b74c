package matcher

import (
	"testing"

	"payout-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

func order(id string, amount float64) *models.OrderRecord {
	return &models.OrderRecord{ID: id, Amount: decimal.NewFromFloat(amount)}
}

func payment(id string, amount float64) *models.PaymentRecord {
	return &models.PaymentRecord{ID: id, Amount: decimal.NewFromFloat(amount)}
}

func TestReconcileDirectID(t *testing.T) {
	orders := []*models.OrderRecord{
		order("ORD100", 250),
		order("ORD200", 99.5),
	}
	payments := []*models.PaymentRecord{
		payment("ORD200", 99.5),
		payment("ORD100", 250),
	}

	results := NewEngine(nil).Reconcile(orders, payments)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, r := range results {
		if r.Type != MatchDirectID {
			t.Errorf("result %d: type = %s, want direct_id", i, r.Type)
		}
		if r.Payment == nil || r.Payment.ID != r.Order.ID {
			t.Errorf("result %d: wrong payment attached", i)
		}
		if !r.AmountDifference.IsZero() {
			t.Errorf("result %d: amount difference = %s, want 0", i, r.AmountDifference)
		}
	}
}

func TestReconcileDirectIDConsumesPayment(t *testing.T) {
	// Two orders share an identifier but only one payment carries it.
	orders := []*models.OrderRecord{
		order("ORD100", 250),
		order("ORD100", 250),
	}
	payments := []*models.PaymentRecord{
		payment("ORD100", 250),
	}

	results := NewEngine(nil).Reconcile(orders, payments)

	if results[0].Type != MatchDirectID {
		t.Errorf("first order: type = %s, want direct_id", results[0].Type)
	}
	// The consumed payment is invisible to the id and amount phases, but
	// the non-exclusive fuzzy phase still links the identical identifier.
	if results[1].Type != MatchFuzzyID {
		t.Errorf("second order: type = %s, want fuzzy_id", results[1].Type)
	}
}

func TestReconcileAmountGreedy(t *testing.T) {
	orders := []*models.OrderRecord{
		order("A-1", 100),
	}
	payments := []*models.PaymentRecord{
		payment("X-9", 100.5),
	}

	results := NewEngine(nil).Reconcile(orders, payments)

	r := results[0]
	if r.Type != MatchAmountGreedy {
		t.Fatalf("type = %s, want amount_greedy", r.Type)
	}
	if !r.AmountDifference.Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("amount difference = %s, want 0.5", r.AmountDifference)
	}
}

func TestReconcileAmountToleranceBoundary(t *testing.T) {
	tests := []struct {
		name          string
		paymentAmount float64
		wantType      MatchType
	}{
		{"difference exactly at tolerance", 101, MatchAmountGreedy},
		{"difference just past tolerance", 101.01, MatchUnmatched},
		{"difference below tolerance", 100.99, MatchAmountGreedy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := []*models.OrderRecord{order("A-1", 100)}
			payments := []*models.PaymentRecord{payment("X-9", tt.paymentAmount)}

			results := NewEngine(nil).Reconcile(orders, payments)
			if results[0].Type != tt.wantType {
				t.Errorf("type = %s, want %s", results[0].Type, tt.wantType)
			}
		})
	}
}

func TestReconcileAmountTieBreak(t *testing.T) {
	// Both payments are 0.5 away from the order amount; the earlier one in
	// table order wins.
	orders := []*models.OrderRecord{order("A-1", 100)}
	payments := []*models.PaymentRecord{
		payment("X-1", 100.5),
		payment("X-2", 99.5),
	}

	results := NewEngine(nil).Reconcile(orders, payments)
	if results[0].Payment == nil || results[0].Payment.ID != "X-1" {
		t.Errorf("tie went to %v, want X-1", results[0].Payment)
	}
}

func TestReconcileAmountExclusive(t *testing.T) {
	// Two orders compete for one near-amount payment; input order decides.
	orders := []*models.OrderRecord{
		order("A-1", 100),
		order("A-2", 100),
	}
	payments := []*models.PaymentRecord{
		payment("X-9", 100),
	}

	results := NewEngine(nil).Reconcile(orders, payments)

	if results[0].Type != MatchAmountGreedy {
		t.Errorf("first order: type = %s, want amount_greedy", results[0].Type)
	}
	if results[1].Type != MatchUnmatched {
		t.Errorf("second order: type = %s, want unmatched", results[1].Type)
	}
}

func TestReconcileNegativeToleranceDisablesAmountPhase(t *testing.T) {
	config := DefaultMatchingConfig()
	config.AmountTolerance = decimal.NewFromInt(-1)

	orders := []*models.OrderRecord{order("A-1", 100)}
	payments := []*models.PaymentRecord{payment("X-9", 100)}

	results := NewEngine(config).Reconcile(orders, payments)
	if results[0].Type != MatchUnmatched {
		t.Errorf("type = %s, want unmatched", results[0].Type)
	}
}

func TestReconcileFuzzyID(t *testing.T) {
	// Identifiers one trailing character apart; amounts far outside the
	// tolerance so only the fuzzy phase can link them.
	orders := []*models.OrderRecord{order("ORD12345", 100)}
	payments := []*models.PaymentRecord{payment("ORD12346", 500)}

	results := NewEngine(nil).Reconcile(orders, payments)

	r := results[0]
	if r.Type != MatchFuzzyID {
		t.Fatalf("type = %s, want fuzzy_id", r.Type)
	}
	if r.Score != 0.875 {
		t.Errorf("score = %f, want 0.875", r.Score)
	}
	if got := r.Classification(); got != "fuzzy_id_0.88" {
		t.Errorf("classification = %q, want fuzzy_id_0.88", got)
	}
	if !r.AmountDifference.Equal(decimal.NewFromInt(400)) {
		t.Errorf("amount difference = %s, want 400", r.AmountDifference)
	}
}

func TestReconcileFuzzyBelowThreshold(t *testing.T) {
	// Ratio("ORD123", "ORD124") is 10/12, short of the 0.85 threshold.
	orders := []*models.OrderRecord{order("ORD123", 100)}
	payments := []*models.PaymentRecord{payment("ORD124", 500)}

	results := NewEngine(nil).Reconcile(orders, payments)
	if results[0].Type != MatchUnmatched {
		t.Errorf("type = %s, want unmatched", results[0].Type)
	}
}

func TestReconcileFuzzyNonExclusive(t *testing.T) {
	// Two orders both resemble the same payment identifier. By default the
	// fuzzy phase does not consume payments, so both link to it.
	orders := []*models.OrderRecord{
		order("ORD12345", 100),
		order("ORD12347", 200),
	}
	payments := []*models.PaymentRecord{payment("ORD12346", 900)}

	results := NewEngine(nil).Reconcile(orders, payments)

	for i, r := range results {
		if r.Type != MatchFuzzyID {
			t.Errorf("order %d: type = %s, want fuzzy_id", i, r.Type)
		}
		if r.Payment == nil || r.Payment.ID != "ORD12346" {
			t.Errorf("order %d: wrong payment", i)
		}
	}
}

func TestReconcileStrictFuzzyConsumes(t *testing.T) {
	config := DefaultMatchingConfig()
	config.StrictFuzzy = true

	orders := []*models.OrderRecord{
		order("ORD12345", 100),
		order("ORD12347", 200),
	}
	payments := []*models.PaymentRecord{payment("ORD12346", 900)}

	results := NewEngine(config).Reconcile(orders, payments)

	if results[0].Type != MatchFuzzyID {
		t.Errorf("first order: type = %s, want fuzzy_id", results[0].Type)
	}
	if results[1].Type != MatchUnmatched {
		t.Errorf("second order: type = %s, want unmatched", results[1].Type)
	}
}

func TestReconcilePhaseOrder(t *testing.T) {
	// The direct-id payment also happens to be the closest by amount; the
	// id phase must claim it before the amount phase runs.
	orders := []*models.OrderRecord{
		order("ORD100", 100),
		order("ZZZ999", 100),
	}
	payments := []*models.PaymentRecord{
		payment("ORD100", 100),
		payment("UNRELATED", 100.2),
	}

	results := NewEngine(nil).Reconcile(orders, payments)

	if results[0].Type != MatchDirectID || results[0].Payment.ID != "ORD100" {
		t.Errorf("first order: got %s/%v", results[0].Type, results[0].Payment)
	}
	if results[1].Type != MatchAmountGreedy || results[1].Payment.ID != "UNRELATED" {
		t.Errorf("second order: got %s/%v", results[1].Type, results[1].Payment)
	}
}

func TestReconcileEmptyInputs(t *testing.T) {
	engine := NewEngine(nil)

	if got := engine.Reconcile(nil, nil); len(got) != 0 {
		t.Errorf("nil inputs: got %d results", len(got))
	}

	orders := []*models.OrderRecord{order("A-1", 100)}
	results := engine.Reconcile(orders, nil)
	if len(results) != 1 || results[0].Type != MatchUnmatched {
		t.Errorf("empty payments: got %+v", results)
	}
}

func TestMatchingConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MatchingConfig)
		wantErr bool
	}{
		{"defaults", func(c *MatchingConfig) {}, false},
		{"threshold too high", func(c *MatchingConfig) { c.FuzzyThreshold = 1.5 }, true},
		{"threshold negative", func(c *MatchingConfig) { c.FuzzyThreshold = -0.1 }, true},
		{"unknown algorithm", func(c *MatchingConfig) { c.SimilarityAlgorithm = "bogus" }, true},
		{"negative tolerance allowed", func(c *MatchingConfig) { c.AmountTolerance = decimal.NewFromInt(-5) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultMatchingConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestMatchTypeString(t *testing.T) {
	tests := []struct {
		mt   MatchType
		want string
	}{
		{MatchUnmatched, "unmatched"},
		{MatchDirectID, "direct_id"},
		{MatchAmountGreedy, "amount_greedy"},
		{MatchFuzzyID, "fuzzy_id"},
	}

	for _, tt := range tests {
		if got := tt.mt.String(); got != tt.want {
			t.Errorf("MatchType(%d).String() = %q, want %q", tt.mt, got, tt.want)
		}
	}
}
