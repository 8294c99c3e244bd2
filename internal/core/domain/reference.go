package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ReferenceFamily is the prefix of a generated business reference.
type ReferenceFamily string

const (
	FamilyRequest     ReferenceFamily = "DEM"
	FamilyStatement   ReferenceFamily = "REL"
	FamilyPayment     ReferenceFamily = "PAY"
	FamilyReceipt     ReferenceFamily = "REC"
	FamilyCheque      ReferenceFamily = "CHQ"
	FamilyExpenseLine ReferenceFamily = "DEP"
)

// ReferenceScope identifies one counter: a family, optionally narrowed to a period.
// Only expense lines are scoped; their sequence restarts every month.
type ReferenceScope struct {
	Family ReferenceFamily
	Period *Period
}

// Key is the counter name ("DEM", "DEP-2024-03").
func (s ReferenceScope) Key() string {
	if s.Period == nil {
		return string(s.Family)
	}
	return fmt.Sprintf("%s-%s", s.Family, s.Period)
}

// Prefix is the text every reference of this scope starts with, separator included.
func (s ReferenceScope) Prefix() string {
	return s.Key() + "-"
}

// Width is the zero padded digit count.
func (s ReferenceScope) Width() int {
	if s.Period != nil {
		return 4
	}
	return 6
}

// Max is the largest sequence number the width can render.
func (s ReferenceScope) Max() int64 {
	if s.Period != nil {
		return 9999
	}
	return 999999
}

// Format renders sequence n ("DEM-000001", "DEP-2024-03-0001").
func (s ReferenceScope) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", s.Prefix(), s.Width(), n)
}

// Sequence extracts the numeric suffix of ref, or false when ref is not in this scope.
func (s ReferenceScope) Sequence(ref string) (int64, bool) {
	suffix, ok := strings.CutPrefix(ref, s.Prefix())
	if !ok || len(suffix) != s.Width() {
		return 0, false
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ScopeOf is the unscoped counter of a family.
func ScopeOf(f ReferenceFamily) ReferenceScope {
	return ReferenceScope{Family: f}
}

// ExpenseLineScope is the monthly expense line counter.
func ExpenseLineScope(p Period) ReferenceScope {
	return ReferenceScope{Family: FamilyExpenseLine, Period: &p}
}
