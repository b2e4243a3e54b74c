// Package batch groups orders into payout batches against bank statement
// credits.
//
// Settlement providers pay out many orders as one lump-sum bank credit. The
// grouper approximates the inverse mapping: for each bank row it picks a
// subset of orders whose amounts sum close to the credited amount. The
// subset-sum selection is greedy over amounts in descending order, not an
// exact solver, so the result is a plausible attribution rather than a
// provable one.
package batch

import (
	"fmt"
	"sort"
	"strings"

	"payout-reconciliation-service/internal/models"
	"payout-reconciliation-service/internal/normalize"
	"payout-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Config holds the tunable parameters of the payout grouper.
type Config struct {
	// MinBandwidth is the floor on the per-row tolerance band around the
	// target amount.
	MinBandwidth decimal.Decimal `json:"min_bandwidth"`

	// BandwidthPercent scales the tolerance band with the target: the band
	// is max(MinBandwidth, target * BandwidthPercent).
	BandwidthPercent decimal.Decimal `json:"bandwidth_percent"`

	// StopRatio stops accumulation once the running sum reaches
	// target * StopRatio.
	StopRatio decimal.Decimal `json:"stop_ratio"`
}

// DefaultConfig returns the business defaults: a one-unit floor, a 2%
// proportional band, and a 98% stop ratio.
func DefaultConfig() *Config {
	return &Config{
		MinBandwidth:     decimal.NewFromInt(1),
		BandwidthPercent: decimal.NewFromFloat(0.02),
		StopRatio:        decimal.NewFromFloat(0.98),
	}
}

// Validate checks if the grouper configuration is valid.
func (c *Config) Validate() error {
	if c.MinBandwidth.IsNegative() {
		return fmt.Errorf("minimum bandwidth must not be negative: %s", c.MinBandwidth)
	}
	if c.BandwidthPercent.IsNegative() {
		return fmt.Errorf("bandwidth percent must not be negative: %s", c.BandwidthPercent)
	}
	if c.StopRatio.IsNegative() || c.StopRatio.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("stop ratio must be between 0 and 1: %s", c.StopRatio)
	}
	return nil
}

// Clone creates a deep copy of the grouper configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	return &Config{
		MinBandwidth:     c.MinBandwidth,
		BandwidthPercent: c.BandwidthPercent,
		StopRatio:        c.StopRatio,
	}
}

// Grouper assigns orders to bank statement rows.
type Grouper struct {
	config *Config
	logger logger.Logger
}

// NewGrouper creates a payout grouper with the given configuration, or the
// defaults when config is nil.
func NewGrouper(config *Config) *Grouper {
	if config == nil {
		config = DefaultConfig()
	}
	return &Grouper{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("batch"),
	}
}

// GroupOrders maps each bank statement row to a payout assignment. Bank
// rows are keyed by zero-based position in the statement. Every row gets
// an assignment, possibly empty; orders are not consumed across rows, so
// the same order can appear under several bank rows.
func (g *Grouper) GroupOrders(orders, bankRows *models.Table, roles models.ColumnRoles) map[int]*models.PayoutAssignment {
	records := models.BuildOrderRecords(orders, roles)

	// Descending by amount, stable so equal amounts keep input row order.
	sorted := make([]*models.OrderRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})

	mapping := make(map[int]*models.PayoutAssignment, bankRows.Len())
	if bankRows == nil {
		return mapping
	}

	for i, row := range bankRows.Rows {
		target := rowTarget(bankRows.Columns, row)
		mapping[i] = g.assign(i, target, sorted)
	}

	g.logger.WithFields(logger.Fields{
		"orders":    len(records),
		"bank_rows": bankRows.Len(),
	}).Debug("payout grouping complete")

	return mapping
}

// rowTarget extracts the credited amount from a bank row. The row is
// rendered as "column value" pairs in column order and the first numeral of
// that rendering wins, so the leftmost numeric-looking column sets the
// target even when later columns also carry numbers.
func rowTarget(columns []string, row models.Row) decimal.Decimal {
	var sb strings.Builder
	for _, c := range columns {
		sb.WriteString(c)
		sb.WriteByte(' ')
		sb.WriteString(row[c])
		sb.WriteByte(' ')
	}
	return normalize.ParseAmount(sb.String())
}

// assign greedily accumulates orders toward the target. An order is taken
// when the new sum lands inside the tolerance band around the target, or
// when it still undershoots the target. Accumulation stops once the sum
// reaches the stop ratio of the target.
func (g *Grouper) assign(bankRowID int, target decimal.Decimal, sorted []*models.OrderRecord) *models.PayoutAssignment {
	band := target.Mul(g.config.BandwidthPercent)
	if band.LessThan(g.config.MinBandwidth) {
		band = g.config.MinBandwidth
	}
	stop := target.Mul(g.config.StopRatio)

	assignment := &models.PayoutAssignment{
		BankRowID:   bankRowID,
		Target:      target,
		OrderIDs:    []string{},
		AssignedSum: decimal.Zero,
	}

	for _, order := range sorted {
		next := assignment.AssignedSum.Add(order.Amount)
		if next.Sub(target).Abs().LessThanOrEqual(band) || next.LessThanOrEqual(target) {
			assignment.OrderIDs = append(assignment.OrderIDs, order.ID)
			assignment.AssignedSum = next
		}
		if assignment.AssignedSum.GreaterThanOrEqual(stop) {
			break
		}
	}

	return assignment
}

// GroupOrdersByPayoutBatch groups orders against bank statement rows using
// the default configuration, reading amounts from the named order column.
func GroupOrdersByPayoutBatch(orders, bankRows *models.Table, orderAmountColumn string) map[int]*models.PayoutAssignment {
	roles := models.ColumnRoles{OrderAmount: orderAmountColumn}
	return NewGrouper(nil).GroupOrders(orders, bankRows, roles)
}
