package parsers

import (
	"strings"

	"payout-reconciliation-service/internal/models"
)

// Keyword lists for column-role detection, in priority order. Marketplace
// exports rename these columns between report versions, so detection works
// on case-insensitive substrings rather than exact names.
var (
	orderIDKeywords       = []string{"sub order", "order id", "sub order no", "packet id", "order no"}
	orderAmountKeywords   = []string{"supplier discounted price", "supplier listed price", "amount", "price", "order value"}
	paymentIDKeywords     = []string{"order id", "sub order", "packet id"}
	paymentAmountKeywords = []string{"amount", "paid", "credited", "settlement"}
	commissionKeywords    = []string{"commission", "fee", "charge"}
)

// findLike returns the first column whose lowercased name contains one of
// the keywords. Keywords are tried in priority order, so an earlier keyword
// beats a better-positioned column.
func findLike(columns []string, keywords []string) string {
	for _, kw := range keywords {
		for _, c := range columns {
			if strings.Contains(strings.ToLower(c), kw) {
				return c
			}
		}
	}
	return ""
}

// DetectColumnRoles fills the unset roles by keyword detection against the
// order and payment column sets. Roles already set by the caller are kept,
// so explicit flags always beat detection. Roles with no plausible column
// stay empty and fall back to the positional defaults downstream.
func DetectColumnRoles(roles models.ColumnRoles, orderColumns, paymentColumns []string) models.ColumnRoles {
	if roles.OrderID == "" {
		roles.OrderID = findLike(orderColumns, orderIDKeywords)
	}
	if roles.OrderAmount == "" {
		roles.OrderAmount = findLike(orderColumns, orderAmountKeywords)
	}
	if roles.PaymentID == "" {
		roles.PaymentID = findLike(paymentColumns, paymentIDKeywords)
	}
	if roles.PaymentAmount == "" {
		roles.PaymentAmount = findLike(paymentColumns, paymentAmountKeywords)
	}
	if roles.Commission == "" {
		roles.Commission = findLike(paymentColumns, commissionKeywords)
	}
	return roles
}
