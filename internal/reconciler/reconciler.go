// Package reconciler orchestrates a full reconciliation run: record
// normalization, the matching phases, and summary aggregation.
package reconciler

import (
	"time"

	"payout-reconciliation-service/internal/matcher"
	"payout-reconciliation-service/internal/models"
	"payout-reconciliation-service/pkg/errors"
	"payout-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Service runs reconciliation passes with a fixed matching configuration.
type Service struct {
	matchingConfig *matcher.MatchingConfig
	logger         logger.Logger
}

// Summary aggregates the outcome of one reconciliation run.
type Summary struct {
	TotalOrders   int `json:"total_orders"`
	TotalPayments int `json:"total_payments"`

	DirectMatches int `json:"direct_matches"`
	AmountMatches int `json:"amount_matches"`
	FuzzyMatches  int `json:"fuzzy_matches"`
	Unmatched     int `json:"unmatched"`

	// MatchedPercent is the share of orders that found a payment, 0-100.
	MatchedPercent float64 `json:"matched_percent"`

	// PayoutDifference is the sum of attached payment amounts minus the sum
	// of all order amounts. A negative value means money is missing against
	// the order book.
	PayoutDifference decimal.Decimal `json:"payout_difference"`
}

// RunResult is the complete output of one reconciliation run.
type RunResult struct {
	Results        []*matcher.MatchResult `json:"results"`
	Summary        Summary                `json:"summary"`
	OrderColumns   []string               `json:"order_columns"`
	PaymentColumns []string               `json:"payment_columns"`
	ProcessedAt    time.Time              `json:"processed_at"`
}

// NewService creates a reconciliation service. A nil config selects the
// defaults; an invalid config is rejected up front.
func NewService(config *matcher.MatchingConfig) (*Service, error) {
	if config == nil {
		config = matcher.DefaultMatchingConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError("matching", config.String(), err)
	}

	return &Service{
		matchingConfig: config,
		logger:         logger.GetGlobalLogger().WithComponent("reconciler"),
	}, nil
}

// ReconcileOrders matches the order table against the payment table and
// returns per-order results plus a summary. The orders table is required;
// a nil or empty payments table is a legitimate run in which every order
// ends up unmatched.
func (s *Service) ReconcileOrders(orders, payments *models.Table, roles models.ColumnRoles) (*RunResult, error) {
	if orders == nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "orders", nil, nil)
	}

	orderRecords := models.BuildOrderRecords(orders, roles)
	paymentRecords := models.BuildPaymentRecords(payments, roles)

	s.logger.WithFields(logger.Fields{
		"orders":   len(orderRecords),
		"payments": len(paymentRecords),
	}).Info("starting reconciliation")

	engine := matcher.NewEngine(s.matchingConfig)
	results := engine.Reconcile(orderRecords, paymentRecords)

	result := &RunResult{
		Results:      results,
		Summary:      buildSummary(results, paymentRecords),
		OrderColumns: orders.Columns,
		ProcessedAt:  time.Now(),
	}
	if payments != nil {
		result.PaymentColumns = payments.Columns
	}

	s.logger.WithFields(logger.Fields{
		"matched_percent":   result.Summary.MatchedPercent,
		"payout_difference": result.Summary.PayoutDifference.String(),
	}).Info("reconciliation complete")

	return result, nil
}

// ReconcileOrders is a convenience wrapper running one pass with the default
// configuration and the given amount tolerance.
func ReconcileOrders(orders, payments *models.Table, roles models.ColumnRoles, amountTolerance decimal.Decimal) (*RunResult, error) {
	config := matcher.DefaultMatchingConfig()
	config.AmountTolerance = amountTolerance

	service, err := NewService(config)
	if err != nil {
		return nil, err
	}
	return service.ReconcileOrders(orders, payments, roles)
}

func buildSummary(results []*matcher.MatchResult, payments []*models.PaymentRecord) Summary {
	summary := Summary{
		TotalOrders:      len(results),
		TotalPayments:    len(payments),
		PayoutDifference: decimal.Zero,
	}

	orderTotal := decimal.Zero
	attachedTotal := decimal.Zero
	for _, r := range results {
		orderTotal = orderTotal.Add(r.Order.Amount)

		switch r.Type {
		case matcher.MatchDirectID:
			summary.DirectMatches++
		case matcher.MatchAmountGreedy:
			summary.AmountMatches++
		case matcher.MatchFuzzyID:
			summary.FuzzyMatches++
		default:
			summary.Unmatched++
		}

		if r.Payment != nil {
			attachedTotal = attachedTotal.Add(r.Payment.Amount)
		}
	}

	matched := summary.TotalOrders - summary.Unmatched
	if summary.TotalOrders > 0 {
		summary.MatchedPercent = float64(matched) / float64(summary.TotalOrders) * 100.0
	}
	summary.PayoutDifference = attachedTotal.Sub(orderTotal)

	return summary
}
