package visit

import (
	"errors"
	"fmt"
)

// Failure modes of the visit ledger. Handlers map these onto HTTP statuses;
// anything else coming out of the service is a store failure.
var (
	// ErrCycleComplete means the visitor's latest log already has both
	// times set; a scan must wait for a new log row.
	ErrCycleComplete = errors.New("already timed in and out")

	// ErrNoOpenLog means no log row matched either conditional update.
	ErrNoOpenLog = errors.New("no log found to update time in or out")

	// ErrNoVisitsToday means the visitor has zero office visits created
	// today, so there is nothing to clear before timing out.
	ErrNoVisitsToday = errors.New("no office visits found for today for this visitor")

	// ErrNoVisitFound means the visitor has no office visit rows at all.
	ErrNoVisitFound = errors.New("no visit found for this visitorsID")

	// ErrDepartmentMismatch means the scanning office is not the one on
	// the visitor's latest office visit.
	ErrDepartmentMismatch = errors.New("department mismatch")
)

// NoVisitsTodayError blocks a gated time-out when the visitor created no
// office visits on the census day. Date is the day that was checked, so
// the caller reports the same day the count ran against.
type NoVisitsTodayError struct {
	Date string
}

func (e *NoVisitsTodayError) Error() string {
	return ErrNoVisitsToday.Error()
}

// Is lets errors.Is match the sentinel.
func (e *NoVisitsTodayError) Is(target error) bool {
	return target == ErrNoVisitsToday
}

// IncompleteTaggingError blocks a gated time-out while some of today's
// office visits remain untagged. Tagged and Total are surfaced so the
// caller can show progress.
type IncompleteTaggingError struct {
	Tagged int
	Total  int
	Date   string
}

func (e *IncompleteTaggingError) Error() string {
	return fmt.Sprintf("not all offices have been tagged for today (%d/%d)", e.Tagged, e.Total)
}
