package payroll

import (
	"context"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/hrmax/backend/internal/domain/payroll"
	"github.com/hrmax/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunService executes payroll calculations: single-employee previews and
// batch runs over a whole period. Batches fan out over a bounded worker
// pool; one employee failing never takes the batch down with it.
type RunService struct {
	runRepo      payroll.PayrollRunRepository
	employeeRepo payroll.EmployeeRepository
	periodRepo   payroll.PeriodRepository
	incidentRepo payroll.IncidentRepository
	catalog      *CatalogService
	logger       *zap.Logger
	workers      int
}

// RunServiceOption configures a RunService.
type RunServiceOption func(*RunService)

// WithWorkers overrides the batch worker pool size
func WithWorkers(n int) RunServiceOption {
	return func(s *RunService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRunLogger sets the logger
func WithRunLogger(logger *zap.Logger) RunServiceOption {
	return func(s *RunService) {
		s.logger = logger
	}
}

// NewRunService creates a run service. The pool defaults to one worker
// per CPU.
func NewRunService(
	runRepo payroll.PayrollRunRepository,
	employeeRepo payroll.EmployeeRepository,
	periodRepo payroll.PeriodRepository,
	incidentRepo payroll.IncidentRepository,
	catalog *CatalogService,
	opts ...RunServiceOption,
) *RunService {
	s := &RunService{
		runRepo:      runRepo,
		employeeRepo: employeeRepo,
		periodRepo:   periodRepo,
		incidentRepo: incidentRepo,
		catalog:      catalog,
		logger:       zap.NewNop(),
		workers:      runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preview calculates one employee's payslip without persisting anything.
// Intended for the "what would this person take home" check before a run.
func (s *RunService) Preview(ctx context.Context, tenantID, employeeID, periodID uuid.UUID) (*payroll.Result, error) {
	employee, err := s.employeeRepo.FindByIDForTenant(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	if employee.Status != payroll.EmployeeActive {
		return nil, shared.ErrInactiveEmployee
	}
	period, err := s.periodRepo.FindByIDForTenant(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	incidents, err := s.incidentRepo.FindForEmployee(ctx, tenantID, periodID, employeeID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.catalog.Snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return payroll.NewCalculator(snapshot).Calculate(*employee, *period, incidents)
}

// Execute runs payroll for every active employee of the period and
// persists the run with its payslips. The returned run reflects the
// final tally, including per-employee errors.
func (s *RunService) Execute(ctx context.Context, tenantID, periodID uuid.UUID) (*payroll.PayrollRun, error) {
	period, err := s.periodRepo.FindByIDForTenant(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	employees, err := s.employeeRepo.FindActiveForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, shared.NewDomainError("EMPTY_RUN", "no active employees for this period")
	}
	snapshot, err := s.catalog.Snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	incidents, err := s.incidentRepo.FindForPeriod(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	byEmployee := groupIncidents(incidents)

	runNumber, err := s.runRepo.NextRunNumber(ctx, tenantID, period.Year)
	if err != nil {
		return nil, err
	}
	run := payroll.NewPayrollRun(tenantID, periodID, runNumber, len(employees))
	if err := run.Start(); err != nil {
		return nil, err
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, err
	}

	calculator := payroll.NewCalculator(snapshot)

	var mu sync.Mutex
	payslips := make([]*payroll.Payslip, 0, len(employees))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)
	for _, employee := range employees {
		group.Go(func() error {
			// Cooperative cancellation between employees; a calculation
			// itself is pure CPU and runs to completion.
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result, err := calculator.Calculate(employee, *period, byEmployee[employee.ID])

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				run.RecordFailure(employee.ID, err)
				s.logger.Warn("employee calculation failed",
					zap.String("run_number", run.RunNumber),
					zap.String("employee_id", employee.ID.String()),
					zap.Error(err))
				return nil
			}
			run.RecordSuccess(result)
			payslips = append(payslips, payroll.NewPayslip(tenantID, run.ID, result))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		run.Cancel()
		if saveErr := s.runRepo.Save(ctx, run); saveErr != nil {
			s.logger.Error("failed to persist cancelled run",
				zap.String("run_number", run.RunNumber), zap.Error(saveErr))
		}
		return nil, err
	}

	if err := run.Complete(); err != nil {
		return nil, err
	}
	if err := s.runRepo.SavePayslips(ctx, payslips); err != nil {
		return nil, err
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, err
	}

	s.logger.Info("payroll run completed",
		zap.String("run_number", run.RunNumber),
		zap.String("status", string(run.Status)),
		zap.Int("succeeded", run.Succeeded),
		zap.Int("failed", run.Failed))
	return run, nil
}

// GetRun returns a run by ID for a tenant
func (s *RunService) GetRun(ctx context.Context, tenantID, runID uuid.UUID) (*payroll.PayrollRun, error) {
	return s.runRepo.FindByIDForTenant(ctx, tenantID, runID)
}

// ListRuns returns the tenant's runs, optionally filtered by period
func (s *RunService) ListRuns(ctx context.Context, tenantID uuid.UUID, periodID *uuid.UUID) ([]payroll.PayrollRun, error) {
	return s.runRepo.FindAllForTenant(ctx, tenantID, periodID)
}

// GetPayslips returns every payslip of a run
func (s *RunService) GetPayslips(ctx context.Context, tenantID, runID uuid.UUID) ([]payroll.Payslip, error) {
	return s.runRepo.FindPayslipsForRun(ctx, tenantID, runID)
}

// GetPayslip returns one employee's payslip inside a run
func (s *RunService) GetPayslip(ctx context.Context, tenantID, runID, employeeID uuid.UUID) (*payroll.Payslip, error) {
	return s.runRepo.FindPayslipForEmployee(ctx, tenantID, runID, employeeID)
}

// groupIncidents indexes a period's incidents by employee
func groupIncidents(incidents []payroll.Incident) map[uuid.UUID][]payroll.Incident {
	grouped := make(map[uuid.UUID][]payroll.Incident)
	for _, inc := range incidents {
		grouped[inc.EmployeeID] = append(grouped[inc.EmployeeID], inc)
	}
	return grouped
}
