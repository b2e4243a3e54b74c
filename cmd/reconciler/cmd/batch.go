package cmd

import (
	"fmt"
	"os"

	"payout-reconciliation-service/cmd/reconciler/config"
	"payout-reconciliation-service/internal/batch"
	"payout-reconciliation-service/internal/models"
	"payout-reconciliation-service/internal/parsers"
	"payout-reconciliation-service/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the batch command
var (
	batchOrdersFile  string
	bankFile         string
	batchOutputFmt   string
	batchOutputFile  string
	minBandwidth     float64
	bandwidthPercent float64
	stopRatio        float64
	batchAmountCol   string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Group orders into payout batches against bank statements",
	Long: `Batch assigns orders to bank statement credits: for each statement row
it greedily selects a subset of orders whose amounts sum close to the
credited amount.

The credited amount is taken as the first number found in each statement
row, scanning columns left to right. The grouping is an approximation for
investigation, not an exact attribution: the same order may appear under
several statement rows.

Examples:
  reconciler batch --orders-file orders.csv --bank-file statement.csv
  reconciler batch --orders-file orders.csv --bank-file statement.csv \
    --order-amount-column "Supplier Discounted Price" --output-format json`,

	PreRunE: validateBatchFlags,
	RunE:    runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Required flags
	batchCmd.Flags().StringVar(&batchOrdersFile, "orders-file", "", "path to order export CSV file (required)")
	batchCmd.Flags().StringVar(&bankFile, "bank-file", "", "path to bank statement CSV file (required)")

	// Output flags
	batchCmd.Flags().StringVar(&batchOutputFmt, "output-format", "console", "output format: console, json, csv")
	batchCmd.Flags().StringVar(&batchOutputFile, "output-file", "", "output file path (default: stdout)")

	// Grouping configuration flags
	batchCmd.Flags().Float64Var(&minBandwidth, "min-bandwidth", 1.0, "floor on the per-row tolerance band in currency units")
	batchCmd.Flags().Float64Var(&bandwidthPercent, "bandwidth-percent", 0.02, "tolerance band as a fraction of the target amount")
	batchCmd.Flags().Float64Var(&stopRatio, "stop-ratio", 0.98, "stop accumulating once the sum reaches this fraction of the target")

	// Column role override
	batchCmd.Flags().StringVar(&batchAmountCol, "order-amount-column", "", "order amount column (autodetected)")

	// Mark required flags
	batchCmd.MarkFlagRequired("orders-file")
	batchCmd.MarkFlagRequired("bank-file")
}

func validateBatchFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(batchOrdersFile, "order export file"); err != nil {
		return err
	}
	if err := validateFileExists(bankFile, "bank statement file"); err != nil {
		return err
	}
	if _, err := config.CreateReportConfig(batchOutputFmt, true); err != nil {
		return err
	}
	if _, err := config.CreateBatchConfig(minBandwidth, bandwidthPercent, stopRatio); err != nil {
		return err
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	parser := parsers.NewTableParser(nil)

	orders, _, err := parser.ParseFile(batchOrdersFile)
	if err != nil {
		return err
	}
	bankRows, _, err := parser.ParseFile(bankFile)
	if err != nil {
		return err
	}

	roles := models.ColumnRoles{OrderAmount: batchAmountCol}
	roles = parsers.DetectColumnRoles(roles, orders.Columns, nil)

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Grouping %d orders against %d bank rows (amount column %q)\n",
			orders.Len(), bankRows.Len(), roles.OrderAmount)
	}

	batchConfig, err := config.CreateBatchConfig(minBandwidth, bandwidthPercent, stopRatio)
	if err != nil {
		return err
	}
	grouper := batch.NewGrouper(batchConfig)
	mapping := grouper.GroupOrders(orders, bankRows, roles)

	reportConfig, err := config.CreateReportConfig(batchOutputFmt, true)
	if err != nil {
		return err
	}
	generator := reporter.NewReportGenerator(reportConfig)

	output, cleanup, err := openOutput(batchOutputFile)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := generator.GenerateBatchReport(mapping, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	return nil
}
