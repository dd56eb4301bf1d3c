/*
errors.go - Centralized error types for the statutory calculators

PURPOSE:
  All error types in one place for consistency and discoverability.
  The calculators themselves clamp and continue on numeric edge cases;
  errors exist only for input-contract violations caught at the boundary.

USAGE:
  Callers can classify errors:

    if errors.Is(err, statutory.ErrInvalidPolicy) {
        // reject the configuration, do not run the payroll batch
    }

SEE ALSO:
  - policy.go: Validate() produces ErrInvalidPolicy
  - reconciler.go: below-floor contracts yield an inapplicable result,
    not an error
*/
package statutory

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPolicy is returned when a CompanyPolicy fails boundary
	// validation (negative percentages, inverted basic bounds).
	ErrInvalidPolicy = errors.New("invalid company policy")

	// ErrInvalidContract is returned for malformed contract terms
	// (negative wage).
	ErrInvalidContract = errors.New("invalid contract terms")

	// ErrInvalidWorkedDays is returned when the worked-day buckets cannot
	// form a proration denominator (zero or negative total).
	ErrInvalidWorkedDays = errors.New("invalid worked days")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PolicyFieldError reports which policy field failed validation.
type PolicyFieldError struct {
	Field  string
	Value  decimal.Decimal
	Detail string
}

func (e *PolicyFieldError) Error() string {
	return fmt.Sprintf("policy field %s = %s: %s", e.Field, e.Value, e.Detail)
}

func (e *PolicyFieldError) Unwrap() error { return ErrInvalidPolicy }
