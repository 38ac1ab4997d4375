package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed identifiers for deterministic tests.
var (
	TenantID = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	AgentID  = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	NotaryID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	BankID   = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	SaleID   = uuid.MustParse("00000000-0000-0000-0000-000000000020")
)

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FixedClock returns a clock function that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
