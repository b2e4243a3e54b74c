// Package matcher implements the three-phase order/payment matching engine.
//
// The phases run in strict sequence, each operating only on the residue the
// previous phase left unmatched:
//  1. exact identifier join
//  2. greedy amount matching within a tolerance band
//  3. fuzzy identifier matching above a similarity threshold
//
// Phases 1 and 2 assign each payment to at most one order, tracked by an
// explicit used-marker pool scoped to one Reconcile call. Phase 3 scans the
// full payment set and does not consume payments, so one payment can back
// several fuzzy matches; MatchingConfig.StrictFuzzy opts into exclusive
// fuzzy assignment.
//
// Amount matching is greedy in input row order, not a globally optimal
// assignment: when several orders compete for the same near-amount payment
// the earliest order wins, and reordering the input can change the overall
// pairing. Ties on the amount difference go to the first payment in table
// order.
package matcher

import (
	"fmt"

	"payout-reconciliation-service/internal/models"
	"payout-reconciliation-service/internal/similarity"
	"payout-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Engine runs the matching phases over one pair of record sets.
type Engine struct {
	config *MatchingConfig
	scorer *similarity.Scorer
	logger logger.Logger
}

// MatchResult is the outcome for a single order. Exactly one result is
// produced per input order, in input order.
type MatchResult struct {
	Order   *models.OrderRecord
	Payment *models.PaymentRecord
	Type    MatchType

	// Score is the identifier similarity for fuzzy matches, zero otherwise.
	Score float64

	// AmountDifference is payment amount minus order amount when a payment
	// is attached, zero otherwise.
	AmountDifference decimal.Decimal
}

// Classification returns the label carried on output rows. Fuzzy matches
// embed the similarity score to two decimals, e.g. "fuzzy_id_0.88".
func (mr *MatchResult) Classification() string {
	if mr.Type == MatchFuzzyID {
		return fmt.Sprintf("fuzzy_id_%.2f", mr.Score)
	}
	return mr.Type.String()
}

// NewEngine creates a matching engine with the given configuration, or the
// defaults when config is nil.
func NewEngine(config *MatchingConfig) *Engine {
	if config == nil {
		config = DefaultMatchingConfig()
	}

	return &Engine{
		config: config,
		scorer: similarity.NewScorer(config.SimilarityAlgorithm),
		logger: logger.GetGlobalLogger().WithComponent("matcher"),
	}
}

// Reconcile matches every order against the payment pool and returns one
// result per order, in input order. Degenerate inputs are normal outcomes:
// an empty payment pool leaves every order unmatched, and a negative
// tolerance simply disables phase 2.
func (e *Engine) Reconcile(orders []*models.OrderRecord, payments []*models.PaymentRecord) []*MatchResult {
	results := make([]*MatchResult, len(orders))
	for i, order := range orders {
		results[i] = &MatchResult{
			Order:            order,
			Type:             MatchUnmatched,
			AmountDifference: decimal.Zero,
		}
	}

	// One used-marker slot per payment, scoped to this run. Phases 1 and 2
	// consume slots; phase 3 only does so in strict mode.
	used := make([]bool, len(payments))

	e.matchByID(results, payments, used)
	e.matchByAmount(results, payments, used)
	e.matchByFuzzyID(results, payments, used)

	counts := map[string]int{}
	for _, r := range results {
		counts[r.Type.String()]++
	}
	e.logger.WithFields(logger.Fields{
		"orders":        len(orders),
		"payments":      len(payments),
		"direct_id":     counts[MatchDirectID.String()],
		"amount_greedy": counts[MatchAmountGreedy.String()],
		"fuzzy_id":      counts[MatchFuzzyID.String()],
		"unmatched":     counts[MatchUnmatched.String()],
	}).Debug("matching pass complete")

	return results
}

// matchByID links orders to payments with byte-equal normalized
// identifiers. When duplicate payment identifiers exist, the first payment
// in table order holds the identifier; an order arriving after that payment
// was consumed falls through to the amount phase.
func (e *Engine) matchByID(results []*MatchResult, payments []*models.PaymentRecord, used []bool) {
	index := make(map[string]int, len(payments))
	for i, p := range payments {
		if _, ok := index[p.ID]; !ok {
			index[p.ID] = i
		}
	}

	for _, r := range results {
		if r.Type != MatchUnmatched {
			continue
		}
		i, ok := index[r.Order.ID]
		if !ok || used[i] {
			continue
		}
		e.attach(r, payments[i], MatchDirectID, 0)
		used[i] = true
	}
}

// matchByAmount greedily links each remaining order to the unused payment
// minimizing the absolute amount difference, provided the minimum is within
// the tolerance. First-come-first-served over orders; ties on the minimum
// go to the earliest payment in table order.
func (e *Engine) matchByAmount(results []*MatchResult, payments []*models.PaymentRecord, used []bool) {
	tolerance := e.config.AmountTolerance

	for _, r := range results {
		if r.Type != MatchUnmatched {
			continue
		}

		best := -1
		var bestDiff decimal.Decimal
		for i, p := range payments {
			if used[i] {
				continue
			}
			diff := p.Amount.Sub(r.Order.Amount).Abs()
			if diff.GreaterThan(tolerance) {
				continue
			}
			if best == -1 || diff.LessThan(bestDiff) {
				best, bestDiff = i, diff
			}
		}
		if best == -1 {
			continue
		}

		e.attach(r, payments[best], MatchAmountGreedy, 0)
		used[best] = true
	}
}

// matchByFuzzyID links each remaining order to the payment whose identifier
// is most similar, when that similarity strictly exceeds the threshold. The
// scan covers the full payment set and leaves payments unconsumed unless
// StrictFuzzy is set. Ties on the maximum go to the earliest payment.
func (e *Engine) matchByFuzzyID(results []*MatchResult, payments []*models.PaymentRecord, used []bool) {
	for _, r := range results {
		if r.Type != MatchUnmatched {
			continue
		}

		best := -1
		bestScore := 0.0
		for i, p := range payments {
			if e.config.StrictFuzzy && used[i] {
				continue
			}
			score := e.scorer.Score(r.Order.ID, p.ID)
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best == -1 || bestScore <= e.config.FuzzyThreshold {
			continue
		}

		e.attach(r, payments[best], MatchFuzzyID, bestScore)
		if e.config.StrictFuzzy {
			used[best] = true
		}
	}
}

func (e *Engine) attach(r *MatchResult, p *models.PaymentRecord, mt MatchType, score float64) {
	r.Payment = p
	r.Type = mt
	r.Score = score
	r.AmountDifference = p.Amount.Sub(r.Order.Amount)
}

// GetConfiguration returns a copy of the engine's configuration.
func (e *Engine) GetConfiguration() *MatchingConfig {
	return e.config.Clone()
}
