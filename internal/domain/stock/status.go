package stock

import "github.com/shopspring/decimal"

// Stock health statuses derived from quantity and thresholds.
const (
	StatusOK  = "ok"
	StatusLow = "low"
	StatusOut = "out"
)

// Classifier maps (current stock, min stock) to a status (domain service).
// DefaultMinStock is the system-wide low-stock threshold; a per-item
// MinStock > 0 always overrides it, never the reverse.
type Classifier struct {
	DefaultMinStock decimal.Decimal
}

// NewClassifier builds a classifier with the given system-wide default.
func NewClassifier(defaultMinStock decimal.Decimal) Classifier {
	return Classifier{DefaultMinStock: defaultMinStock}
}

// Classify returns "out" if current <= 0, "low" if 0 < current <= min,
// otherwise "ok". The same path serves single-item responses and bulk
// low-stock queries.
func (c Classifier) Classify(current, minStock decimal.Decimal) string {
	if current.LessThanOrEqual(decimal.Zero) {
		return StatusOut
	}
	threshold := minStock
	if threshold.LessThanOrEqual(decimal.Zero) {
		threshold = c.DefaultMinStock
	}
	if current.LessThanOrEqual(threshold) {
		return StatusLow
	}
	return StatusOK
}

// ValidStatus reports whether s is a known status (for list filters).
func ValidStatus(s string) bool {
	return s == StatusOK || s == StatusLow || s == StatusOut
}
