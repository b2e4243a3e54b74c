package cmd

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReconcileCommand(t *testing.T) {
	dir := t.TempDir()

	ordersPath := writeTempCSV(t, dir, "orders.csv",
		"Sub Order No,Supplier Discounted Price\nORD100,250\nLOST11,5000\n")
	paymentsPath := writeTempCSV(t, dir, "payments.csv",
		"Sub Order No,Total Sale Amount\nORD100,250\n")
	outputPath := filepath.Join(dir, "report.csv")

	rootCmd.SetArgs([]string{
		"reconcile",
		"--orders-file", ordersPath,
		"--payments-file", paymentsPath,
		"--output-format", "csv",
		"--output-file", outputPath,
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	file, err := os.Open(outputPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("invalid report CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header plus 2 rows", len(records))
	}

	matchTypeCol := len(records[0]) - 2
	if records[1][matchTypeCol] != "direct_id" {
		t.Errorf("first row match type = %q, want direct_id", records[1][matchTypeCol])
	}
	if records[2][matchTypeCol] != "unmatched" {
		t.Errorf("second row match type = %q, want unmatched", records[2][matchTypeCol])
	}
}

func TestReconcileCommandMissingFile(t *testing.T) {
	dir := t.TempDir()
	paymentsPath := writeTempCSV(t, dir, "payments.csv", "id,amount\nX,1\n")

	rootCmd.SetArgs([]string{
		"reconcile",
		"--orders-file", filepath.Join(dir, "missing.csv"),
		"--payments-file", paymentsPath,
	})

	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error for missing orders file")
	}
}
