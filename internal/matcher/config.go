package matcher

import (
	"fmt"

	"payout-reconciliation-service/internal/similarity"

	"github.com/shopspring/decimal"
)

// MatchType classifies how an order was linked to a payment. Types are
// assigned in phase order and never overwritten by a later phase.
type MatchType int

const (
	// MatchUnmatched means no phase found a payment for the order.
	MatchUnmatched MatchType = iota

	// MatchDirectID means the normalized identifiers were equal (phase 1).
	MatchDirectID

	// MatchAmountGreedy means the payment amount fell within the tolerance
	// band and won the greedy scan (phase 2).
	MatchAmountGreedy

	// MatchFuzzyID means the identifier similarity exceeded the fuzzy
	// threshold (phase 3).
	MatchFuzzyID
)

// String returns the classification label for the match type.
func (mt MatchType) String() string {
	switch mt {
	case MatchDirectID:
		return "direct_id"
	case MatchAmountGreedy:
		return "amount_greedy"
	case MatchFuzzyID:
		return "fuzzy_id"
	default:
		return "unmatched"
	}
}

// MatchingConfig holds the tunable parameters of the matching engine.
type MatchingConfig struct {
	// AmountTolerance bounds |payment amount - order amount| in phase 2.
	// Zero accepts only exact amounts; a negative tolerance disables amount
	// matching entirely, which is degenerate but well defined.
	AmountTolerance decimal.Decimal `json:"amount_tolerance"`

	// FuzzyThreshold is the exclusive lower bound on identifier similarity
	// for a phase-3 match.
	FuzzyThreshold float64 `json:"fuzzy_threshold"`

	// StrictFuzzy makes phase 3 consume payments the way phases 1 and 2 do.
	// The default leaves fuzzy matching non-exclusive: one payment can back
	// several fuzzy matches.
	StrictFuzzy bool `json:"strict_fuzzy"`

	// SimilarityAlgorithm selects the identifier scorer.
	SimilarityAlgorithm similarity.Algorithm `json:"similarity_algorithm"`
}

// DefaultMatchingConfig returns a configuration with the business defaults:
// one currency unit of rounding noise, the 0.85 fuzzy threshold, and
// non-exclusive fuzzy matching.
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		AmountTolerance:     decimal.NewFromInt(1),
		FuzzyThreshold:      0.85,
		StrictFuzzy:         false,
		SimilarityAlgorithm: similarity.AlgorithmRatio,
	}
}

// StrictMatchingConfig returns a configuration for strict matching: exact
// amounts only, a higher fuzzy bar, and exclusive fuzzy assignment.
func StrictMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		AmountTolerance:     decimal.Zero,
		FuzzyThreshold:      0.95,
		StrictFuzzy:         true,
		SimilarityAlgorithm: similarity.AlgorithmRatio,
	}
}

// Validate checks if the matching configuration is valid. A negative
// amount tolerance is permitted: it yields no amount matches rather than
// an error.
func (mc *MatchingConfig) Validate() error {
	if mc.FuzzyThreshold < 0.0 || mc.FuzzyThreshold > 1.0 {
		return fmt.Errorf("fuzzy threshold must be between 0.0 and 1.0: %f", mc.FuzzyThreshold)
	}

	if !mc.SimilarityAlgorithm.IsValid() {
		return fmt.Errorf("unknown similarity algorithm: %s", mc.SimilarityAlgorithm)
	}

	return nil
}

// Clone creates a deep copy of the matching configuration.
func (mc *MatchingConfig) Clone() *MatchingConfig {
	if mc == nil {
		return nil
	}

	return &MatchingConfig{
		AmountTolerance:     mc.AmountTolerance,
		FuzzyThreshold:      mc.FuzzyThreshold,
		StrictFuzzy:         mc.StrictFuzzy,
		SimilarityAlgorithm: mc.SimilarityAlgorithm,
	}
}

// String returns a human-readable description of the configuration.
func (mc *MatchingConfig) String() string {
	return fmt.Sprintf("MatchingConfig{AmountTolerance: %s, FuzzyThreshold: %.2f, StrictFuzzy: %t, Similarity: %s}",
		mc.AmountTolerance.String(), mc.FuzzyThreshold, mc.StrictFuzzy, mc.SimilarityAlgorithm)
}
