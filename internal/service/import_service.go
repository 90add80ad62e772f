package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/events"
	"github.com/spec-kit/ops-portal/internal/importer"
	"github.com/spec-kit/ops-portal/internal/repository"
	"github.com/spec-kit/ops-portal/internal/scope"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

// ImportService loads performance and salary spreadsheets and serves staff
// their own records.
type ImportService struct {
	store  repository.Store
	events publisher
	logger *zap.Logger
}

// ImportDependencies bundles collaborators for the import service.
type ImportDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// NewImportService constructs the service.
func NewImportService(deps ImportDependencies) *ImportService {
	logger := loggerOrNop(deps.Logger)
	return &ImportService{
		store:  deps.Store,
		events: publisher{dispatcher: deps.Dispatcher, logger: logger, now: clockOrNow(deps.Clock)},
		logger: logger,
	}
}

// SkippedRow is a row whose employee id matched no account.
type SkippedRow struct {
	Row        int    `json:"row"`
	EmployeeID string `json:"employee_id"`
}

// ImportResult summarises a completed import.
type ImportResult struct {
	Kind    importer.Kind `json:"kind"`
	Created int           `json:"created"`
	Skipped []SkippedRow  `json:"skipped"`
}

// ImportPerformance upserts one record per (employee, month). actor is nil
// for command-line imports; otherwise it must be an admin.
func (s *ImportService) ImportPerformance(ctx context.Context, actor *domain.User, r io.Reader) (*ImportResult, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	records, err := importer.ParsePerformance(r)
	if err != nil {
		return nil, importFailure(err)
	}
	result := &ImportResult{Kind: importer.KindPerformance, Skipped: []SkippedRow{}}
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		result.Created, result.Skipped = 0, result.Skipped[:0]
		for _, rec := range records {
			user, err := s.employee(ctx, tx, rec.EmployeeID)
			if err != nil {
				return err
			}
			if user == nil {
				result.Skipped = append(result.Skipped, SkippedRow{Row: rec.Row, EmployeeID: rec.EmployeeID})
				continue
			}
			value := rec.Value
			value.EmployeeID = user.ID
			if err := tx.Payroll().UpsertPerformance(ctx, &value); err != nil {
				return fmt.Errorf("row %d: %w", rec.Row, err)
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.finish(ctx, actor, result)
	return result, nil
}

// ImportSalary creates one salary slip per row.
func (s *ImportService) ImportSalary(ctx context.Context, actor *domain.User, r io.Reader) (*ImportResult, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	records, err := importer.ParseSalary(r)
	if err != nil {
		return nil, importFailure(err)
	}
	result := &ImportResult{Kind: importer.KindSalary, Skipped: []SkippedRow{}}
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		result.Created, result.Skipped = 0, result.Skipped[:0]
		for _, rec := range records {
			user, err := s.employee(ctx, tx, rec.EmployeeID)
			if err != nil {
				return err
			}
			if user == nil {
				result.Skipped = append(result.Skipped, SkippedRow{Row: rec.Row, EmployeeID: rec.EmployeeID})
				continue
			}
			slip := rec.Value
			slip.EmployeeID = user.ID
			if err := tx.Payroll().CreateSalarySlip(ctx, &slip); err != nil {
				return fmt.Errorf("row %d: %w", rec.Row, err)
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.finish(ctx, actor, result)
	return result, nil
}

// Import dispatches on kind.
func (s *ImportService) Import(ctx context.Context, actor *domain.User, kind importer.Kind, r io.Reader) (*ImportResult, error) {
	switch kind {
	case importer.KindPerformance:
		return s.ImportPerformance(ctx, actor, r)
	case importer.KindSalary:
		return s.ImportSalary(ctx, actor, r)
	default:
		return nil, apperrors.NewValidationError("unknown import kind", map[string]any{"kind": kind})
	}
}

func (s *ImportService) authorize(actor *domain.User) error {
	if actor == nil {
		return nil
	}
	return requireAdmin(scope.Subject{User: actor})
}

// employee resolves an external employee id; unknown ids yield nil.
func (s *ImportService) employee(ctx context.Context, tx repository.Store, employeeID string) (*domain.User, error) {
	user, err := tx.Users().GetByEmployeeID(ctx, employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (s *ImportService) finish(ctx context.Context, actor *domain.User, result *ImportResult) {
	skipped := make([]string, 0, len(result.Skipped))
	for _, row := range result.Skipped {
		s.logger.Warn("import row skipped: unknown employee",
			zap.String("kind", string(result.Kind)),
			zap.Int("row", row.Row),
			zap.String("employee_id", row.EmployeeID))
		skipped = append(skipped, row.EmployeeID)
	}
	s.logger.Info("import completed",
		zap.String("kind", string(result.Kind)),
		zap.Int("created", result.Created),
		zap.Int("skipped", len(result.Skipped)))
	s.events.publish(ctx, events.Event{
		Type:    events.EventImportCompleted,
		Actor:   events.ActorFrom(actor),
		Payload: events.ImportCompletedPayload{Kind: string(result.Kind), Created: result.Created, Skipped: skipped},
	})
}

func importFailure(err error) error {
	var missing *importer.MissingColumnsError
	if errors.As(err, &missing) {
		return apperrors.NewImportError(err.Error(), map[string]any{"missing_columns": missing.Missing})
	}
	var problems *importer.ProblemsError
	if errors.As(err, &problems) {
		return apperrors.NewImportError(err.Error(), map[string]any{"problems": problems.Problems})
	}
	return apperrors.NewImportError(err.Error(), nil)
}

// MyPerformance lists the caller's performance records, newest month first.
func (s *ImportService) MyPerformance(ctx context.Context, actor scope.Subject) ([]domain.StaffPerformance, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	records, err := s.store.Payroll().ListPerformance(ctx, actor.User.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

// MySalarySlips lists the caller's salary slips.
func (s *ImportService) MySalarySlips(ctx context.Context, actor scope.Subject) ([]domain.SalarySlip, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	slips, err := s.store.Payroll().ListSalarySlips(ctx, actor.User.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return slips, nil
}
