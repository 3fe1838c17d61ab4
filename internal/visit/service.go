package visit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ScanDirection reports which half of the attendance cycle a scan advanced.
type ScanDirection string

const (
	ScanTimeIn  ScanDirection = "in"
	ScanTimeOut ScanDirection = "out"
)

// ScanResult is the outcome of a successful badge scan.
type ScanResult struct {
	Direction ScanDirection
	Time      string
}

// Service owns the lifecycle of a visitor's daily attendance log and the
// gating between office-visit tagging and log time-out.
//
// All time-of-day strings it emits, and the "today" used for the tagging
// census, are computed in the configured location (Asia/Manila by default);
// the day boundary is an interface contract, not server locale behavior.
type Service struct {
	repo   *Repository
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the ledger service.
func NewService(repo *Repository, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, loc: loc, logger: logger, now: time.Now}
}

func (s *Service) clock() string { return s.now().In(s.loc).Format("15:04:05") }
func (s *Service) today() string { return s.now().In(s.loc).Format("2006-01-02") }

// CreateLog opens a new log row for the visitor and returns its logid.
func (s *Service) CreateLog(ctx context.Context, visitorsID string) (int64, error) {
	if visitorsID == "" {
		return 0, errors.New("visitorsID is required")
	}
	return s.repo.CreateLog(ctx, visitorsID)
}

// ScanAttendance is the idempotent badge-scan entry point used when the
// caller does not know which half of the cycle the visitor is in. The order
// is a deliberate tie-break: completed-cycle check, then time-in, then
// time-out, then not-found. The pre-check on the latest log is advisory
// fast-fail only; correctness rests on the conditional UPDATEs.
func (s *Service) ScanAttendance(ctx context.Context, visitorsID string) (ScanResult, error) {
	if visitorsID == "" {
		return ScanResult{}, errors.New("visitorsID is required")
	}
	latest, err := s.repo.LatestLog(ctx, visitorsID)
	if err != nil {
		return ScanResult{}, err
	}
	if latest != nil && filled(latest.TimeIn) && filled(latest.TimeOut) {
		return ScanResult{}, ErrCycleComplete
	}

	now := s.clock()
	affected, err := s.repo.MarkTimeIn(ctx, visitorsID, now)
	if err != nil {
		return ScanResult{}, err
	}
	if affected > 0 {
		s.logger.Info("time in recorded", zap.String("visitorsID", visitorsID), zap.String("timeIn", now))
		return ScanResult{Direction: ScanTimeIn, Time: now}, nil
	}

	affected, err = s.repo.MarkTimeOut(ctx, visitorsID, now)
	if err != nil {
		return ScanResult{}, err
	}
	if affected > 0 {
		s.logger.Info("time out recorded", zap.String("visitorsID", visitorsID), zap.String("timeOut", now))
		return ScanResult{Direction: ScanTimeOut, Time: now}, nil
	}

	return ScanResult{}, ErrNoOpenLog
}

// RecordTimeIn is the front-desk time-in: an unscoped write keyed by
// visitorsID alone. With multiple log rows it touches whichever rows the
// UPDATE reaches.
func (s *Service) RecordTimeIn(ctx context.Context, visitorsID string) (string, error) {
	if visitorsID == "" {
		return "", errors.New("visitorsID is required")
	}
	now := s.clock()
	if err := s.repo.SetTimeInAll(ctx, visitorsID, now); err != nil {
		return "", err
	}
	return now, nil
}

// RequestTimeOut is the gated front-desk time-out. It refuses to write the
// time-out until every office visit the visitor created today is tagged.
// It deliberately does not require timeIn to have been set first.
func (s *Service) RequestTimeOut(ctx context.Context, visitorsID string) (string, error) {
	if visitorsID == "" {
		return "", errors.New("visitorsID is required")
	}
	day := s.today()
	total, tagged, err := s.repo.TagCensus(ctx, visitorsID, day)
	if err != nil {
		return "", err
	}
	if total == 0 {
		return "", &NoVisitsTodayError{Date: day}
	}
	if tagged < total {
		return "", &IncompleteTaggingError{Tagged: tagged, Total: total, Date: day}
	}

	now := s.clock()
	if err := s.repo.SetTimeOutAll(ctx, visitorsID, now); err != nil {
		return "", err
	}
	s.logger.Info("time out recorded",
		zap.String("visitorsID", visitorsID),
		zap.String("timeOut", now),
		zap.Int("tagged", tagged),
		zap.Int("total", total))
	return now, nil
}

// TagOfficeVisit confirms the visitor's presence at an office. Only the
// latest visit row is ever the target, whatever its tag state; offices
// tagging out of insertion order can leave earlier rows unreachable.
// Re-tagging an already tagged latest row succeeds.
func (s *Service) TagOfficeVisit(ctx context.Context, visitorsID, deptID string) (int64, error) {
	if visitorsID == "" || deptID == "" {
		return 0, errors.New("visitorsID and dept_id are required")
	}
	latest, err := s.repo.LatestOfficeVisit(ctx, visitorsID)
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 0, ErrNoVisitFound
	}
	if latest.DeptID != deptID {
		s.logger.Warn("department mismatch on tag",
			zap.String("visitorsID", visitorsID),
			zap.String("visit_dept", latest.DeptID),
			zap.String("scanner_dept", deptID))
		return 0, ErrDepartmentMismatch
	}
	affected, err := s.repo.TagByID(ctx, latest.ID)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrNoVisitFound
	}
	return latest.ID, nil
}

func filled(s *string) bool { return s != nil && *s != "" }
