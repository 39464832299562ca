package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hrmax/backend/internal/domain/payroll"
	"github.com/hrmax/backend/internal/domain/shared"
	"github.com/hrmax/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRunTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.PayrollRunModel{}, &models.PayslipModel{})
	require.NoError(t, err)

	return db
}

func testRunResult(employeeID, periodID uuid.UUID) *payroll.Result {
	return &payroll.Result{
		EmployeeID: employeeID,
		PeriodID:   periodID,
		Earnings: []payroll.EarningLine{
			{
				Code:    "P001",
				Name:    "Sueldo",
				Amount:  decimal.NewFromInt(9000),
				Taxable: decimal.NewFromInt(9000),
				Exempt:  decimal.Zero,
			},
		},
		Deductions: []payroll.DeductionLine{
			{Code: "D001", Name: "ISR", Amount: decimal.RequireFromString("1099.34")},
		},
		OtherPayments:      []payroll.OtherPaymentLine{},
		TotalEarnings:      decimal.NewFromInt(9000),
		TotalDeductions:    decimal.RequireFromString("1099.34"),
		TotalOtherPayments: decimal.Zero,
		TaxableBase:        decimal.NewFromInt(9000),
		NetPay:             decimal.RequireFromString("7900.66"),
		Trail: []payroll.TrailEntry{
			{Phase: payroll.PhaseTotals, Action: "totales calculados"},
		},
	}
}

func TestPayrollRunRepository_Save(t *testing.T) {
	db := setupRunTestDB(t)
	repo := NewGormPayrollRunRepository(db)
	ctx := context.Background()

	t.Run("round-trips a run with errors", func(t *testing.T) {
		tenantID := uuid.New()
		periodID := uuid.New()
		failedEmployee := uuid.New()

		run := payroll.NewPayrollRun(tenantID, periodID, "NOM-2025-001", 3)
		require.NoError(t, run.Start())
		run.RecordSuccess(testRunResult(uuid.New(), periodID))
		run.RecordSuccess(testRunResult(uuid.New(), periodID))
		run.RecordFailure(failedEmployee, payroll.NewMissingInputError("SALARIO_DIARIO"))
		require.NoError(t, run.Complete())

		require.NoError(t, repo.Save(ctx, run))

		found, err := repo.FindByIDForTenant(ctx, tenantID, run.ID)
		require.NoError(t, err)
		assert.Equal(t, "NOM-2025-001", found.RunNumber)
		assert.Equal(t, payroll.RunCompletedWithErrs, found.Status)
		assert.Equal(t, 2, found.Succeeded)
		assert.Equal(t, 1, found.Failed)
		assert.True(t, found.TotalNetPay.Equal(decimal.RequireFromString("15801.32")))
		require.Len(t, found.Errors, 1)
		assert.Equal(t, failedEmployee, found.Errors[0].EmployeeID)
		assert.Equal(t, payroll.ErrKindMissingInput, found.Errors[0].Kind)
		assert.NotNil(t, found.StartedAt)
		assert.NotNil(t, found.CompletedAt)
	})

	t.Run("run numbers are scoped per tenant", func(t *testing.T) {
		tenantA := uuid.New()
		tenantB := uuid.New()
		runA := payroll.NewPayrollRun(tenantA, uuid.New(), "NOM-2025-044", 1)
		runB := payroll.NewPayrollRun(tenantB, uuid.New(), "NOM-2025-044", 1)

		require.NoError(t, repo.Save(ctx, runA))
		require.NoError(t, repo.Save(ctx, runB))

		foundA, err := repo.FindByIDForTenant(ctx, tenantA, runA.ID)
		require.NoError(t, err)
		foundB, err := repo.FindByIDForTenant(ctx, tenantB, runB.ID)
		require.NoError(t, err)
		assert.Equal(t, foundA.RunNumber, foundB.RunNumber)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		tenantID := uuid.New()
		run := payroll.NewPayrollRun(tenantID, uuid.New(), "NOM-2025-009", 1)
		require.NoError(t, run.Start())
		require.NoError(t, repo.Save(ctx, run))

		stale := *run
		require.NoError(t, run.Complete())
		require.NoError(t, repo.Save(ctx, run))

		require.NoError(t, stale.Cancel())
		err := repo.Save(ctx, &stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("another tenant cannot see the run", func(t *testing.T) {
		tenantID := uuid.New()
		run := payroll.NewPayrollRun(tenantID, uuid.New(), "NOM-2025-001", 1)
		require.NoError(t, repo.Save(ctx, run))

		_, err := repo.FindByIDForTenant(ctx, uuid.New(), run.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPayrollRunRepository_FindAllForTenant(t *testing.T) {
	db := setupRunTestDB(t)
	repo := NewGormPayrollRunRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	periodA := uuid.New()
	periodB := uuid.New()

	require.NoError(t, repo.Save(ctx, payroll.NewPayrollRun(tenantID, periodA, "NOM-2025-001", 1)))
	require.NoError(t, repo.Save(ctx, payroll.NewPayrollRun(tenantID, periodA, "NOM-2025-002", 1)))
	require.NoError(t, repo.Save(ctx, payroll.NewPayrollRun(tenantID, periodB, "NOM-2025-003", 1)))

	t.Run("all runs", func(t *testing.T) {
		runs, err := repo.FindAllForTenant(ctx, tenantID, nil)
		require.NoError(t, err)
		assert.Len(t, runs, 3)
	})

	t.Run("filtered by period", func(t *testing.T) {
		runs, err := repo.FindAllForTenant(ctx, tenantID, &periodA)
		require.NoError(t, err)
		assert.Len(t, runs, 2)
	})
}

func TestPayrollRunRepository_NextRunNumber(t *testing.T) {
	db := setupRunTestDB(t)
	repo := NewGormPayrollRunRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()

	first, err := repo.NextRunNumber(ctx, tenantID, 2025)
	require.NoError(t, err)
	assert.Equal(t, "NOM-2025-001", first)

	require.NoError(t, repo.Save(ctx, payroll.NewPayrollRun(tenantID, uuid.New(), first, 1)))

	second, err := repo.NextRunNumber(ctx, tenantID, 2025)
	require.NoError(t, err)
	assert.Equal(t, "NOM-2025-002", second)

	// Another fiscal year restarts the sequence
	other, err := repo.NextRunNumber(ctx, tenantID, 2024)
	require.NoError(t, err)
	assert.Equal(t, "NOM-2024-001", other)
}

func TestPayrollRunRepository_Payslips(t *testing.T) {
	db := setupRunTestDB(t)
	repo := NewGormPayrollRunRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	periodID := uuid.New()
	run := payroll.NewPayrollRun(tenantID, periodID, "NOM-2025-001", 2)
	require.NoError(t, repo.Save(ctx, run))

	employeeA := uuid.New()
	employeeB := uuid.New()
	payslips := []*payroll.Payslip{
		payroll.NewPayslip(tenantID, run.ID, testRunResult(employeeA, periodID)),
		payroll.NewPayslip(tenantID, run.ID, testRunResult(employeeB, periodID)),
	}
	require.NoError(t, repo.SavePayslips(ctx, payslips))

	t.Run("finds every payslip of the run", func(t *testing.T) {
		found, err := repo.FindPayslipsForRun(ctx, tenantID, run.ID)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("round-trips lines and trail", func(t *testing.T) {
		slip, err := repo.FindPayslipForEmployee(ctx, tenantID, run.ID, employeeA)
		require.NoError(t, err)
		require.Len(t, slip.Earnings, 1)
		assert.Equal(t, "P001", slip.Earnings[0].Code)
		assert.True(t, slip.Earnings[0].Amount.Equal(decimal.NewFromInt(9000)))
		require.Len(t, slip.Deductions, 1)
		assert.Equal(t, "D001", slip.Deductions[0].Code)
		assert.Empty(t, slip.OtherPayments)
		require.Len(t, slip.Trail, 1)
		assert.Equal(t, payroll.PhaseTotals, slip.Trail[0].Phase)
		assert.True(t, slip.NetPay.Equal(decimal.RequireFromString("7900.66")))
	})

	t.Run("missing employee reports not found", func(t *testing.T) {
		_, err := repo.FindPayslipForEmployee(ctx, tenantID, run.ID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.SavePayslips(ctx, nil))
	})
}
