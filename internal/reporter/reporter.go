// Package reporter renders reconciliation and payout-grouping results to
// console, JSON and CSV.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"payout-reconciliation-service/internal/matcher"
	"payout-reconciliation-service/internal/models"
	"payout-reconciliation-service/internal/reconciler"
	"payout-reconciliation-service/pkg/errors"
	"payout-reconciliation-service/pkg/logger"
)

// OutputFormat selects the report rendering.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported.
func (f OutputFormat) IsValid() bool {
	return f == FormatConsole || f == FormatJSON || f == FormatCSV
}

// ReportConfig holds report rendering options.
type ReportConfig struct {
	Format OutputFormat

	// IncludeUnmatched keeps unmatched orders in row-level output.
	IncludeUnmatched bool
}

// DefaultReportConfig returns console output with unmatched rows included.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:           FormatConsole,
		IncludeUnmatched: true,
	}
}

// ReportGenerator renders run results.
type ReportGenerator struct {
	config *ReportConfig
	logger logger.Logger
}

// NewReportGenerator creates a generator with the given configuration, or
// the defaults when config is nil.
func NewReportGenerator(config *ReportConfig) *ReportGenerator {
	if config == nil {
		config = DefaultReportConfig()
	}
	return &ReportGenerator{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("reporter"),
	}
}

// GenerateMatchReport writes the reconciliation result to w in the
// configured format.
func (rg *ReportGenerator) GenerateMatchReport(result *reconciler.RunResult, w io.Writer) error {
	switch rg.config.Format {
	case FormatJSON:
		return rg.writeMatchJSON(result, w)
	case FormatCSV:
		return rg.writeMatchCSV(result, w)
	case FormatConsole:
		return rg.writeMatchConsole(result, w)
	default:
		return errors.ConfigurationError("output_format", string(rg.config.Format), nil)
	}
}

func (rg *ReportGenerator) writeMatchConsole(result *reconciler.RunResult, w io.Writer) error {
	s := result.Summary

	fmt.Fprintln(w, "Reconciliation Summary")
	fmt.Fprintln(w, "======================")
	fmt.Fprintf(w, "Orders:            %d\n", s.TotalOrders)
	fmt.Fprintf(w, "Payments:          %d\n", s.TotalPayments)
	fmt.Fprintf(w, "Direct matches:    %d\n", s.DirectMatches)
	fmt.Fprintf(w, "Amount matches:    %d\n", s.AmountMatches)
	fmt.Fprintf(w, "Fuzzy matches:     %d\n", s.FuzzyMatches)
	fmt.Fprintf(w, "Unmatched:         %d\n", s.Unmatched)
	fmt.Fprintf(w, "Matched:           %.1f%%\n", s.MatchedPercent)
	fmt.Fprintf(w, "Payout difference: %s\n", s.PayoutDifference.String())
	fmt.Fprintln(w)

	for _, r := range result.Results {
		if r.Type == matcher.MatchUnmatched && !rg.config.IncludeUnmatched {
			continue
		}
		if r.Payment != nil {
			fmt.Fprintf(w, "%-20s %12s  %-14s payment %s (%s)  diff %s\n",
				r.Order.ID, r.Order.Amount.String(), r.Classification(),
				r.Payment.ID, r.Payment.Amount.String(), r.AmountDifference.String())
		} else {
			fmt.Fprintf(w, "%-20s %12s  %-14s\n",
				r.Order.ID, r.Order.Amount.String(), r.Classification())
		}
	}

	return nil
}

func (rg *ReportGenerator) writeMatchJSON(result *reconciler.RunResult, w io.Writer) error {
	type jsonRow struct {
		Order            models.Row `json:"order"`
		Payment          models.Row `json:"payment,omitempty"`
		MatchType        string     `json:"match_type"`
		AmountDifference string     `json:"amount_difference"`
	}

	out := struct {
		Summary reconciler.Summary `json:"summary"`
		Rows    []jsonRow          `json:"rows"`
	}{
		Summary: result.Summary,
		Rows:    make([]jsonRow, 0, len(result.Results)),
	}

	for _, r := range result.Results {
		if r.Type == matcher.MatchUnmatched && !rg.config.IncludeUnmatched {
			continue
		}
		row := jsonRow{
			Order:            r.Order.Fields,
			MatchType:        r.Classification(),
			AmountDifference: r.AmountDifference.String(),
		}
		if r.Payment != nil {
			row.Payment = r.Payment.Fields
		}
		out.Rows = append(out.Rows, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// writeMatchCSV echoes every order column, the payment columns prefixed
// with "payment_", and the match classification and amount difference.
func (rg *ReportGenerator) writeMatchCSV(result *reconciler.RunResult, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(result.OrderColumns)+len(result.PaymentColumns)+2)
	header = append(header, result.OrderColumns...)
	for _, c := range result.PaymentColumns {
		header = append(header, "payment_"+c)
	}
	header = append(header, "match_type", "amount_difference")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range result.Results {
		if r.Type == matcher.MatchUnmatched && !rg.config.IncludeUnmatched {
			continue
		}

		record := make([]string, 0, len(header))
		for _, c := range result.OrderColumns {
			record = append(record, r.Order.Fields[c])
		}
		for _, c := range result.PaymentColumns {
			if r.Payment != nil {
				record = append(record, r.Payment.Fields[c])
			} else {
				record = append(record, "")
			}
		}
		record = append(record, r.Classification(), r.AmountDifference.String())
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// GenerateBatchReport writes the payout grouping to w in the configured
// format. Bank rows are emitted in ascending row order.
func (rg *ReportGenerator) GenerateBatchReport(mapping map[int]*models.PayoutAssignment, w io.Writer) error {
	keys := make([]int, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	switch rg.config.Format {
	case FormatJSON:
		ordered := make([]*models.PayoutAssignment, 0, len(keys))
		for _, k := range keys {
			ordered = append(ordered, mapping[k])
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ordered)

	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"bank_row_id", "target", "assigned_sum", "order_count", "order_ids"}); err != nil {
			return err
		}
		for _, k := range keys {
			a := mapping[k]
			record := []string{
				fmt.Sprintf("%d", a.BankRowID),
				a.Target.String(),
				a.AssignedSum.String(),
				fmt.Sprintf("%d", len(a.OrderIDs)),
				strings.Join(a.OrderIDs, ";"),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()

	case FormatConsole:
		fmt.Fprintln(w, "Payout Grouping")
		fmt.Fprintln(w, "===============")
		for _, k := range keys {
			a := mapping[k]
			fmt.Fprintf(w, "bank row %d: target %s, assigned %s (%d orders)\n",
				a.BankRowID, a.Target.String(), a.AssignedSum.String(), len(a.OrderIDs))
			for _, id := range a.OrderIDs {
				fmt.Fprintf(w, "  - %s\n", id)
			}
		}
		return nil

	default:
		return errors.ConfigurationError("output_format", string(rg.config.Format), nil)
	}
}
