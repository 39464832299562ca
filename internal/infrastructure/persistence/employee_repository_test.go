package persistence

import (
	"context"
	"testing"
	"time"

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

func setupEmployeeTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.EmployeeModel{})
	require.NoError(t, err)

	return db
}

func testRepoEmployee(number string, status payroll.EmployeeStatus) *payroll.Employee {
	return &payroll.Employee{
		ID:             uuid.New(),
		EmployeeNumber: number,
		Name:           "Empleado " + number,
		DailySalary:    decimal.NewFromInt(600),
		SBCDaily:       decimal.NewFromInt(690),
		HireDate:       time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:         status,
	}
}

func TestEmployeeRepository_Save(t *testing.T) {
	db := setupEmployeeTestDB(t)
	repo := NewGormEmployeeRepository(db)
	ctx := context.Background()

	t.Run("saves and reloads an employee", func(t *testing.T) {
		tenantID := uuid.New()
		employee := testRepoEmployee("EMP-001", payroll.EmployeeActive)

		require.NoError(t, repo.Save(ctx, tenantID, employee))

		found, err := repo.FindByIDForTenant(ctx, tenantID, employee.ID)
		require.NoError(t, err)
		assert.Equal(t, "EMP-001", found.EmployeeNumber)
		assert.True(t, found.DailySalary.Equal(decimal.NewFromInt(600)))
		assert.True(t, found.SBCDaily.Equal(decimal.NewFromInt(690)))
		assert.Equal(t, payroll.EmployeeActive, found.Status)
	})

	t.Run("finds by employee number", func(t *testing.T) {
		tenantID := uuid.New()
		employee := testRepoEmployee("EMP-002", payroll.EmployeeActive)
		require.NoError(t, repo.Save(ctx, tenantID, employee))

		found, err := repo.FindByNumberForTenant(ctx, tenantID, "EMP-002")
		require.NoError(t, err)
		assert.Equal(t, employee.ID, found.ID)
	})
}

func TestEmployeeRepository_FindActiveForTenant(t *testing.T) {
	db := setupEmployeeTestDB(t)
	repo := NewGormEmployeeRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	require.NoError(t, repo.Save(ctx, tenantID, testRepoEmployee("EMP-002", payroll.EmployeeActive)))
	require.NoError(t, repo.Save(ctx, tenantID, testRepoEmployee("EMP-001", payroll.EmployeeActive)))
	require.NoError(t, repo.Save(ctx, tenantID, testRepoEmployee("EMP-003", payroll.EmployeeInactive)))
	require.NoError(t, repo.Save(ctx, uuid.New(), testRepoEmployee("EMP-004", payroll.EmployeeActive)))

	employees, err := repo.FindActiveForTenant(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "EMP-001", employees[0].EmployeeNumber)
	assert.Equal(t, "EMP-002", employees[1].EmployeeNumber)
}

func TestEmployeeRepository_NotFound(t *testing.T) {
	db := setupEmployeeTestDB(t)
	repo := NewGormEmployeeRepository(db)
	ctx := context.Background()

	_, err := repo.FindByIDForTenant(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByNumberForTenant(ctx, uuid.New(), "EMP-999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
