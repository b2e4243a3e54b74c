// Package config builds component configurations from CLI flag values.
package config

import (
	"fmt"

	"payout-reconciliation-service/internal/batch"
	"payout-reconciliation-service/internal/matcher"
	"payout-reconciliation-service/internal/parsers"
	"payout-reconciliation-service/internal/reporter"
	"payout-reconciliation-service/internal/similarity"

	"github.com/shopspring/decimal"
)

// CreateMatchingConfig builds a matching configuration from flag values.
func CreateMatchingConfig(amountTolerance float64, fuzzyThreshold float64, strictFuzzy bool, algorithm string) (*matcher.MatchingConfig, error) {
	config := matcher.DefaultMatchingConfig()
	config.AmountTolerance = decimal.NewFromFloat(amountTolerance)
	config.FuzzyThreshold = fuzzyThreshold
	config.StrictFuzzy = strictFuzzy
	if algorithm != "" {
		config.SimilarityAlgorithm = similarity.Algorithm(algorithm)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching configuration: %w", err)
	}
	return config, nil
}

// CreateBatchConfig builds a payout grouper configuration from flag values.
func CreateBatchConfig(minBandwidth, bandwidthPercent, stopRatio float64) (*batch.Config, error) {
	config := batch.DefaultConfig()
	config.MinBandwidth = decimal.NewFromFloat(minBandwidth)
	config.BandwidthPercent = decimal.NewFromFloat(bandwidthPercent)
	config.StopRatio = decimal.NewFromFloat(stopRatio)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batch configuration: %w", err)
	}
	return config, nil
}

// CreateReportConfig builds a report configuration from the output format
// flag.
func CreateReportConfig(outputFormat string, includeUnmatched bool) (*reporter.ReportConfig, error) {
	format := reporter.OutputFormat(outputFormat)
	if !format.IsValid() {
		return nil, fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	return &reporter.ReportConfig{
		Format:           format,
		IncludeUnmatched: includeUnmatched,
	}, nil
}

// CreateParseConfig builds a CSV parse configuration from flag values.
func CreateParseConfig(delimiter string, noHeader bool) (*parsers.ParseConfig, error) {
	config := parsers.DefaultParseConfig()
	config.HasHeader = !noHeader

	if delimiter != "" {
		runes := []rune(delimiter)
		if len(runes) != 1 {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
		}
		config.Delimiter = runes[0]
	}

	return config, nil
}
