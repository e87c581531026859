package service

import (
	"context"
	"time"

	"github.com/jabana-gov/case-service/internal/domain"
	"github.com/jabana-gov/case-service/internal/repository"
	apperrors "github.com/jabana-gov/case-service/pkg/util/errorutil"
)

// CategoryStats aggregates outcomes for one service category.
type CategoryStats struct {
	Category          string  `json:"category"`
	Total             int     `json:"total"`
	Resolved          int     `json:"resolved"`
	AvgResolutionDays float64 `json:"avg_resolution_days"`
}

// CaseReport is the executive summary over a reporting period.
type CaseReport struct {
	PeriodFrom  time.Time                   `json:"period_from"`
	PeriodTo    time.Time                   `json:"period_to"`
	Total       int                         `json:"total"`
	ByStatus    map[domain.CaseStatus]int   `json:"by_status"`
	ByType      map[domain.CaseType]int     `json:"by_type"`
	ByPriority  map[domain.CasePriority]int `json:"by_priority"`
	ByCategory  []CategoryStats             `json:"by_category"`
	StaffLoads  []domain.StaffCaseLoad      `json:"staff_loads"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

// ReportQuery scopes a report request. Zero times default to the last 30 days.
type ReportQuery struct {
	From     time.Time
	To       time.Time
	Status   string
	Priority string
	Type     string
	Search   string
}

// ReportService builds management summaries for executives.
type ReportService struct {
	cases repository.CaseRepository
	staff repository.StaffRepository
	now   func() time.Time
}

// ReportDependencies wires the report service.
type ReportDependencies struct {
	CaseRepo  repository.CaseRepository
	StaffRepo repository.StaffRepository
}

// NewReportService builds the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{cases: deps.CaseRepo, staff: deps.StaffRepo, now: time.Now}
}

// Generate fetches all cases in the period and aggregates them in memory,
// applying any narrowing query before counting.
func (s *ReportService) Generate(ctx context.Context, q ReportQuery) (*CaseReport, error) {
	now := s.now()
	from, to := q.From, q.To
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if from.After(to) {
		return nil, apperrors.NewValidationError("report period start must precede its end", map[string]any{
			"from": from, "to": to,
		})
	}

	cases, err := s.cases.ListWithFilter(ctx, repository.CaseFilter{
		CreatedFrom: &from,
		CreatedTo:   &to,
		Limit:       -1,
	})
	if err != nil {
		return nil, err
	}

	cases = domain.FilterCases(cases, domain.CaseQuery{
		Search:   q.Search,
		Status:   domain.CaseStatus(q.Status),
		Priority: domain.CasePriority(q.Priority),
		Type:     domain.CaseType(q.Type),
	})

	report := &CaseReport{
		PeriodFrom:  from,
		PeriodTo:    to,
		Total:       len(cases),
		ByStatus:    make(map[domain.CaseStatus]int),
		ByType:      make(map[domain.CaseType]int),
		ByPriority:  make(map[domain.CasePriority]int),
		GeneratedAt: now,
	}

	type catAccum struct {
		total     int
		resolved  int
		totalDays float64
	}
	categories := make(map[string]*catAccum)
	order := make([]string, 0)

	for _, c := range cases {
		report.ByStatus[c.Status]++
		report.ByType[c.Type]++
		report.ByPriority[c.Priority]++

		acc, ok := categories[c.Category]
		if !ok {
			acc = &catAccum{}
			categories[c.Category] = acc
			order = append(order, c.Category)
		}
		acc.total++
		if c.Status == domain.CaseStatusResolved && c.ResolvedAt != nil {
			acc.resolved++
			acc.totalDays += c.ResolvedAt.Sub(c.CreatedAt).Hours() / 24
		}
	}

	for _, category := range order {
		acc := categories[category]
		stats := CategoryStats{Category: category, Total: acc.total, Resolved: acc.resolved}
		if acc.resolved > 0 {
			stats.AvgResolutionDays = acc.totalDays / float64(acc.resolved)
		}
		report.ByCategory = append(report.ByCategory, stats)
	}

	loads, err := s.staff.ListWithCaseLoad(ctx)
	if err != nil {
		return nil, err
	}
	report.StaffLoads = loads

	return report, nil
}

// StatusCounts returns the current open/closed breakdown across all cases,
// independent of any reporting period.
func (s *ReportService) StatusCounts(ctx context.Context) (map[domain.CaseStatus]int, error) {
	return s.cases.CountByStatus(ctx)
}
