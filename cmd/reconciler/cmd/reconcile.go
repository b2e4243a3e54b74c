package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"payout-reconciliation-service/cmd/reconciler/config"
	"payout-reconciliation-service/internal/models"
	"payout-reconciliation-service/internal/parsers"
	"payout-reconciliation-service/internal/reconciler"
	"payout-reconciliation-service/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	ordersFile   string
	paymentsFile string
	outputFormat string
	outputFile   string

	amountTolerance float64
	fuzzyThreshold  float64
	strictFuzzy     bool
	similarityAlgo  string

	delimiter string
	noHeader  bool

	// Column role overrides; autodetected when empty
	orderIDColumn       string
	orderAmountColumn   string
	paymentIDColumn     string
	paymentAmountColumn string
	commissionColumn    string
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile marketplace orders with payment settlements",
	Long: `Reconcile links order records with payment settlement records in three
passes: exact identifier match, amount match within a tolerance, and fuzzy
identifier match above a similarity threshold.

This command requires:
- An order export file (CSV format)
- A payment settlement file (CSV format)

Column roles are autodetected from the headers; use the --*-column flags to
override the detection.

Examples:
  # Basic reconciliation
  reconciler reconcile --orders-file orders.csv --payments-file payments.csv

  # Custom tolerance and output
  reconciler reconcile --orders-file orders.csv --payments-file payments.csv \
    --amount-tolerance 0.5 --output-format csv --output-file report.csv

  # Explicit column roles
  reconciler reconcile --orders-file orders.csv --payments-file payments.csv \
    --order-id-column "Sub Order No" --payment-amount-column "Amount Credited"`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVarP(&ordersFile, "orders-file", "s", "", "path to order export CSV file (required)")
	reconcileCmd.Flags().StringVarP(&paymentsFile, "payments-file", "p", "", "path to payment settlement CSV file (required)")

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Matching configuration flags
	reconcileCmd.Flags().Float64VarP(&amountTolerance, "amount-tolerance", "a", 1.0, "amount matching tolerance in currency units")
	reconcileCmd.Flags().Float64Var(&fuzzyThreshold, "fuzzy-threshold", 0.85, "similarity threshold for fuzzy identifier matching (0.0-1.0)")
	reconcileCmd.Flags().BoolVar(&strictFuzzy, "strict-fuzzy", false, "make fuzzy matches consume payments exclusively")
	reconcileCmd.Flags().StringVar(&similarityAlgo, "similarity", "ratio", "similarity algorithm: ratio, levenshtein")

	// Parsing flags
	reconcileCmd.Flags().StringVar(&delimiter, "delimiter", ",", "CSV field delimiter")
	reconcileCmd.Flags().BoolVar(&noHeader, "no-header", false, "treat the first row as data, not column names")

	// Column role overrides
	reconcileCmd.Flags().StringVar(&orderIDColumn, "order-id-column", "", "order identifier column (autodetected)")
	reconcileCmd.Flags().StringVar(&orderAmountColumn, "order-amount-column", "", "order amount column (autodetected)")
	reconcileCmd.Flags().StringVar(&paymentIDColumn, "payment-id-column", "", "payment identifier column (autodetected)")
	reconcileCmd.Flags().StringVar(&paymentAmountColumn, "payment-amount-column", "", "payment amount column (autodetected)")
	reconcileCmd.Flags().StringVar(&commissionColumn, "commission-column", "", "commission column (autodetected)")

	// Mark required flags
	reconcileCmd.MarkFlagRequired("orders-file")
	reconcileCmd.MarkFlagRequired("payments-file")

	// Bind flags to viper
	viper.BindPFlag("orders-file", reconcileCmd.Flags().Lookup("orders-file"))
	viper.BindPFlag("payments-file", reconcileCmd.Flags().Lookup("payments-file"))
	viper.BindPFlag("output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("amount-tolerance", reconcileCmd.Flags().Lookup("amount-tolerance"))
	viper.BindPFlag("fuzzy-threshold", reconcileCmd.Flags().Lookup("fuzzy-threshold"))
	viper.BindPFlag("strict-fuzzy", reconcileCmd.Flags().Lookup("strict-fuzzy"))
	viper.BindPFlag("similarity", reconcileCmd.Flags().Lookup("similarity"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	ordersFile = viper.GetString("orders-file")
	paymentsFile = viper.GetString("payments-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	amountTolerance = viper.GetFloat64("amount-tolerance")
	fuzzyThreshold = viper.GetFloat64("fuzzy-threshold")
	strictFuzzy = viper.GetBool("strict-fuzzy")
	similarityAlgo = viper.GetString("similarity")

	// Validate required flags
	if ordersFile == "" {
		return fmt.Errorf("orders-file is required")
	}
	if paymentsFile == "" {
		return fmt.Errorf("payments-file is required")
	}

	// Validate file existence
	if err := validateFileExists(ordersFile, "order export file"); err != nil {
		return err
	}
	if err := validateFileExists(paymentsFile, "payment settlement file"); err != nil {
		return err
	}

	// Validate output format
	if _, err := config.CreateReportConfig(outputFormat, true); err != nil {
		return err
	}

	// Validate matching configuration
	if _, err := config.CreateMatchingConfig(amountTolerance, fuzzyThreshold, strictFuzzy, similarityAlgo); err != nil {
		return err
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting reconciliation...\n")
		fmt.Fprintf(os.Stderr, "Orders file: %s\n", ordersFile)
		fmt.Fprintf(os.Stderr, "Payments file: %s\n", paymentsFile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	// Parse input tables
	parseConfig, err := config.CreateParseConfig(delimiter, noHeader)
	if err != nil {
		return err
	}
	parser := parsers.NewTableParser(parseConfig)

	orders, _, err := parser.ParseFile(ordersFile)
	if err != nil {
		return err
	}
	payments, _, err := parser.ParseFile(paymentsFile)
	if err != nil {
		return err
	}

	// Resolve column roles: explicit flags win over detection
	roles := models.ColumnRoles{
		OrderID:       orderIDColumn,
		OrderAmount:   orderAmountColumn,
		PaymentID:     paymentIDColumn,
		PaymentAmount: paymentAmountColumn,
		Commission:    commissionColumn,
	}
	roles = parsers.DetectColumnRoles(roles, orders.Columns, payments.Columns)

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Column roles: order id=%q amount=%q, payment id=%q amount=%q commission=%q\n",
			roles.OrderID, roles.OrderAmount, roles.PaymentID, roles.PaymentAmount, roles.Commission)
	}

	// Run reconciliation
	matchingConfig, err := config.CreateMatchingConfig(amountTolerance, fuzzyThreshold, strictFuzzy, similarityAlgo)
	if err != nil {
		return err
	}
	service, err := reconciler.NewService(matchingConfig)
	if err != nil {
		return err
	}
	result, err := service.ReconcileOrders(orders, payments, roles)
	if err != nil {
		return err
	}

	// Generate report
	reportConfig, err := config.CreateReportConfig(outputFormat, true)
	if err != nil {
		return err
	}
	generator := reporter.NewReportGenerator(reportConfig)

	output, cleanup, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := generator.GenerateMatchReport(result, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nReconciliation completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Processed %d orders and %d payments.\n",
			result.Summary.TotalOrders, result.Summary.TotalPayments)
		fmt.Fprintf(os.Stderr, "Matched %.1f%% (direct %d, amount %d, fuzzy %d), %d unmatched.\n",
			result.Summary.MatchedPercent, result.Summary.DirectMatches,
			result.Summary.AmountMatches, result.Summary.FuzzyMatches,
			result.Summary.Unmatched)
	}

	return nil
}

// openOutput returns the report destination and a cleanup func. Stdout is
// used when path is empty.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() { file.Close() }, nil
}
