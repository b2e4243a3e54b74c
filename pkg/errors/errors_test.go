package errors

import (
	"fmt"
	"testing"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     int
	}{
		{CategoryFile, 2},
		{CategoryParse, 3},
		{CategoryValidation, 3},
		{CategoryConfiguration, 4},
		{CategoryReconciliation, 5},
		{CategoryInternal, 5},
		{ErrorCategory("other"), 1},
	}

	for _, tt := range tests {
		err := New(tt.category, CodeUnexpectedError, "boom")
		if got := err.GetExitCode(); got != tt.want {
			t.Errorf("%s exit code = %d, want %d", tt.category, got, tt.want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := New(CategoryFile, CodeFileNotFound, "file not found: x.csv")
	if err.Error() != "file not found: x.csv" {
		t.Errorf("Error() = %q", err.Error())
	}

	err = err.WithSuggestion("check the path")
	if err.Error() != "file not found: x.csv (suggestion: check the path)" {
		t.Errorf("Error() with suggestion = %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Wrap(cause, CategoryParse, CodeInvalidFormat, "bad row")

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want cause", err.Unwrap())
	}
	if err.StackTrace == nil {
		t.Error("expected a stack trace")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CategoryParse, CodeInvalidFormat, "x") != nil {
		t.Error("wrapping nil must return nil")
	}
}

func TestAsReconcilerError(t *testing.T) {
	inner := FileError(CodeFileNotFound, "orders.csv", nil)
	wrapped := fmt.Errorf("loading input: %w", inner)

	got, ok := AsReconcilerError(wrapped)
	if !ok {
		t.Fatal("AsReconcilerError failed on wrapped error")
	}
	if got.Code != CodeFileNotFound {
		t.Errorf("code = %s, want file_not_found", got.Code)
	}
	if got.Context["file_path"] != "orders.csv" {
		t.Errorf("context = %v", got.Context)
	}

	if _, ok := AsReconcilerError(fmt.Errorf("plain")); ok {
		t.Error("plain error must not convert")
	}
}

func TestIsReconcilerError(t *testing.T) {
	if !IsReconcilerError(New(CategoryInternal, CodeUnexpectedError, "x")) {
		t.Error("expected true for ReconcilerError")
	}
	if IsReconcilerError(fmt.Errorf("plain")) {
		t.Error("expected false for plain error")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name         string
		err          *ReconcilerError
		wantCategory ErrorCategory
		wantCode     ErrorCode
	}{
		{
			name:         "file error",
			err:          FileError(CodeFilePermission, "x.csv", nil),
			wantCategory: CategoryFile,
			wantCode:     CodeFilePermission,
		},
		{
			name:         "parse error",
			err:          ParseError(CodeEmptyTable, "x.csv", 0, nil),
			wantCategory: CategoryParse,
			wantCode:     CodeEmptyTable,
		},
		{
			name:         "validation error",
			err:          ValidationError(CodeMissingField, "orders", nil, nil),
			wantCategory: CategoryValidation,
			wantCode:     CodeMissingField,
		},
		{
			name:         "configuration error",
			err:          ConfigurationError("tolerance", -1, nil),
			wantCategory: CategoryConfiguration,
			wantCode:     CodeInvalidConfig,
		},
		{
			name:         "reconciliation error",
			err:          ReconciliationError("matching", fmt.Errorf("boom")),
			wantCategory: CategoryReconciliation,
			wantCode:     CodeProcessingError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Category != tt.wantCategory {
				t.Errorf("category = %s, want %s", tt.err.Category, tt.wantCategory)
			}
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.Suggestion == "" {
				t.Error("constructors must attach a suggestion")
			}
		})
	}
}

func TestWithContext(t *testing.T) {
	err := New(CategoryInternal, CodeUnexpectedError, "x").
		WithContext("a", 1).
		WithContext("b", "two")

	if err.Context["a"] != 1 || err.Context["b"] != "two" {
		t.Errorf("context = %v", err.Context)
	}
}
