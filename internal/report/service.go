// Package report runs compiled report query families against a repository and assembles the
// structured result.
package report

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/facet"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/fanout"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report/querybuild"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/repository"
)

// Consistency selects how the queries of one report are executed.
type Consistency string

const (
	// Snapshot runs every query sequentially inside one read-only repeatable-read transaction.
	Snapshot Consistency = "snapshot"
	// Concurrent runs the queries in parallel on the pool; totals may drift under writes.
	Concurrent Consistency = "concurrent"
)

// ParseConsistency maps a config value to a mode, defaulting to Snapshot.
func ParseConsistency(s string) (Consistency, error) {
	switch Consistency(strings.ToLower(strings.TrimSpace(s))) {
	case "", Snapshot:
		return Snapshot, nil
	case Concurrent:
		return Concurrent, nil
	}
	return "", fmt.Errorf("unknown report consistency %q", s)
}

// Request is one report request as received from a caller.
type Request struct {
	TenantID int64
	Kind     domain.ReportKind
	Values   url.Values
}

type Service struct {
	repo        repository.ReportRepository
	assembler   *querybuild.Assembler
	normalizer  *facet.Normalizer
	logger      *zap.Logger
	consistency Consistency
	timeout     time.Duration
	newID       func() uuid.UUID
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithConsistency(c Consistency) Option {
	return func(s *Service) {
		if c != "" {
			s.consistency = c
		}
	}
}

// WithTimeout bounds the execution of one report. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func NewService(repo repository.ReportRepository, assembler *querybuild.Assembler, normalizer *facet.Normalizer, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		assembler:   assembler,
		normalizer:  normalizer,
		logger:      zap.NewNop(),
		consistency: Snapshot,
		newID:       uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Normalize converts request input into the filter state and detail page.
func (s *Service) Normalize(req Request) (domain.FilterState, int, error) {
	state, err := s.normalizer.Normalize(req.TenantID, req.Values)
	if err != nil {
		return domain.FilterState{}, 0, err
	}
	return state, facet.Page(req.Values), nil
}

// Build normalizes the request and runs its report.
func (s *Service) Build(ctx context.Context, req Request) (*domain.Report, error) {
	state, page, err := s.Normalize(req)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, req.Kind, state, page)
}

// Explain compiles the query family without executing it.
func (s *Service) Explain(req Request) (querybuild.Family, error) {
	state, page, err := s.Normalize(req)
	if err != nil {
		return querybuild.Family{}, err
	}
	return s.assembler.Assemble(state, req.Kind, page)
}

type result struct {
	summary    []domain.EntitySummary
	breakdowns [][]domain.BreakdownRow
	components []domain.ComponentRow
	total      int64
	rows       []domain.DetailRow
}

// Run executes the family for one page of the state.
func (s *Service) Run(ctx context.Context, kind domain.ReportKind, state domain.FilterState, page int) (*domain.Report, error) {
	fam, err := s.assembler.Assemble(state, kind, page)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var res *result
	switch s.consistency {
	case Concurrent:
		res, err = s.runConcurrent(ctx, s.repo, fam)
	default:
		err = s.repo.Snapshot(ctx, func(tx repository.ReportRepository) error {
			var runErr error
			res, runErr = runSequential(ctx, tx, fam)
			return runErr
		})
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("report built",
		zap.String("kind", string(kind)),
		zap.Int64("tenant_id", state.TenantID),
		zap.String("range", string(state.Range.Mode)),
		zap.Bool("range_fell_back", state.Range.FellBack),
		zap.Int64("total", res.total),
		zap.Int("page", fam.Page),
		zap.Duration("duration", time.Since(start)))

	return s.assemble(kind, state, fam, res), nil
}

// Collect runs the report and gathers every detail page, for exports. In snapshot mode all
// pages are read from the same transaction.
func (s *Service) Collect(ctx context.Context, kind domain.ReportKind, state domain.FilterState) (*domain.Report, error) {
	fam, err := s.assembler.Assemble(state, kind, 1)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	collect := func(repo repository.ReportRepository) (*result, error) {
		res, err := runSequential(ctx, repo, fam)
		if err != nil {
			return nil, err
		}
		for page := 2; int64(len(res.rows)) < res.total; page++ {
			next, err := s.assembler.Assemble(state, kind, page)
			if err != nil {
				return nil, err
			}
			rows, err := repo.Detail(ctx, next.Detail, next.Components)
			if err != nil {
				return nil, err
			}
			if len(rows) == 0 {
				break
			}
			res.rows = append(res.rows, rows...)
		}
		return res, nil
	}

	var res *result
	if s.consistency == Concurrent {
		res, err = collect(s.repo)
	} else {
		err = s.repo.Snapshot(ctx, func(tx repository.ReportRepository) error {
			var runErr error
			res, runErr = collect(tx)
			return runErr
		})
	}
	if err != nil {
		return nil, err
	}

	report := s.assemble(kind, state, fam, res)
	report.PageSize = len(res.rows)
	return report, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Service) assemble(kind domain.ReportKind, state domain.FilterState, fam querybuild.Family, res *result) *domain.Report {
	var breakdowns []domain.BreakdownRow
	for _, rows := range res.breakdowns {
		breakdowns = append(breakdowns, rows...)
	}
	rows := res.rows
	if rows == nil {
		rows = []domain.DetailRow{}
	}
	return &domain.Report{
		ID:       s.newID(),
		Kind:     kind,
		Filter:   domain.NewFilterUsed(state),
		Summary:  fanout.Merge(res.summary, breakdowns, res.components),
		Total:    res.total,
		Page:     fam.Page,
		PageSize: fam.PageSize,
		Rows:     rows,

		Components: fam.Components,
	}
}

func runSequential(ctx context.Context, repo repository.ReportRepository, fam querybuild.Family) (*result, error) {
	res := &result{breakdowns: make([][]domain.BreakdownRow, len(fam.Breakdowns))}
	var err error

	if res.summary, err = repo.Summary(ctx, fam.Summary); err != nil {
		return nil, err
	}
	for i, q := range fam.Breakdowns {
		if res.breakdowns[i], err = repo.Breakdown(ctx, q); err != nil {
			return nil, err
		}
	}
	if res.components, err = repo.Components(ctx, fam.Revenue); err != nil {
		return nil, err
	}
	if res.total, err = repo.Count(ctx, fam.Count); err != nil {
		return nil, err
	}
	if res.rows, err = repo.Detail(ctx, fam.Detail, fam.Components); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) runConcurrent(ctx context.Context, repo repository.ReportRepository, fam querybuild.Family) (*result, error) {
	res := &result{breakdowns: make([][]domain.BreakdownRow, len(fam.Breakdowns))}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		res.summary, err = repo.Summary(gctx, fam.Summary)
		return err
	})
	for i, q := range fam.Breakdowns {
		i, q := i, q
		g.Go(func() (err error) {
			res.breakdowns[i], err = repo.Breakdown(gctx, q)
			return err
		})
	}
	g.Go(func() (err error) {
		res.components, err = repo.Components(gctx, fam.Revenue)
		return err
	})
	g.Go(func() (err error) {
		res.total, err = repo.Count(gctx, fam.Count)
		return err
	})
	g.Go(func() (err error) {
		res.rows, err = repo.Detail(gctx, fam.Detail, fam.Components)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
