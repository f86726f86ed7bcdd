package validation

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/diewo77/go-crm/internal/apperrors"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Err returns nil when there are no violations, otherwise an InvalidInput
// error listing them in field order.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + v[f]
	}
	return apperrors.WithMetadata(apperrors.CodeInvalidInput, "invalid input ("+strings.Join(parts, ", ")+")", v)
}

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s.]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// Email expects the local@domain.tld shape.
func Email(field, value string, v Violations) {
	if !emailRe.MatchString(strings.TrimSpace(value)) {
		v[field] = "invalid_email"
	}
}

// Phone expects an optional leading + followed by 10 to 15 digits.
func Phone(field, value string, v Violations) {
	if !phoneRe.MatchString(strings.TrimSpace(value)) {
		v[field] = "invalid_phone"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		v[field] = "invalid_amount"
		return
	}
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func NonNegativeInt(field string, val int, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}
