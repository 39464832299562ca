package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hrmax/backend/internal/domain/payroll"
	"github.com/hrmax/backend/internal/domain/shared"
	"github.com/hrmax/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupConceptTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.ConceptModel{})
	require.NoError(t, err)

	return db
}

func TestConceptRepository_Save(t *testing.T) {
	db := setupConceptTestDB(t)
	repo := NewGormConceptRepository(db)
	ctx := context.Background()

	t.Run("saves and reloads a concept", func(t *testing.T) {
		tenantID := uuid.New()
		concept := payroll.DefaultConcepts(tenantID)[0]

		require.NoError(t, repo.Save(ctx, &concept))

		found, err := repo.FindByIDForTenant(ctx, tenantID, concept.ID)
		require.NoError(t, err)
		assert.Equal(t, concept.Code, found.Code)
		assert.Equal(t, concept.FormulaSrc, found.FormulaSrc)
		assert.Equal(t, concept.Kind, found.Kind)
		assert.True(t, found.Active)
	})

	t.Run("updates an existing concept in place", func(t *testing.T) {
		tenantID := uuid.New()
		concept := payroll.DefaultConcepts(tenantID)[0]
		require.NoError(t, repo.Save(ctx, &concept))

		concept.Name = "Sueldo base"
		concept.Active = false
		require.NoError(t, repo.Save(ctx, &concept))

		found, err := repo.FindByIDForTenant(ctx, tenantID, concept.ID)
		require.NoError(t, err)
		assert.Equal(t, "Sueldo base", found.Name)
		assert.False(t, found.Active)
	})
}

func TestConceptRepository_FindActiveForTenant(t *testing.T) {
	db := setupConceptTestDB(t)
	repo := NewGormConceptRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	otherTenant := uuid.New()

	for _, concept := range payroll.DefaultConcepts(tenantID) {
		c := concept
		require.NoError(t, repo.Save(ctx, &c))
	}
	for _, concept := range payroll.DefaultConcepts(otherTenant)[:3] {
		c := concept
		require.NoError(t, repo.Save(ctx, &c))
	}

	t.Run("returns only the tenant's active concepts in sort order", func(t *testing.T) {
		concepts, err := repo.FindActiveForTenant(ctx, tenantID)
		require.NoError(t, err)
		require.Len(t, concepts, 11)
		for i := 1; i < len(concepts); i++ {
			assert.LessOrEqual(t, concepts[i-1].SortOrder, concepts[i].SortOrder)
		}
		for _, c := range concepts {
			assert.Equal(t, tenantID, c.TenantID)
		}
	})

	t.Run("excludes deactivated concepts", func(t *testing.T) {
		concept, err := repo.FindByCodeForTenant(ctx, tenantID, "P006")
		require.NoError(t, err)
		concept.Active = false
		require.NoError(t, repo.Save(ctx, concept))

		concepts, err := repo.FindActiveForTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.Len(t, concepts, 10)

		all, err := repo.FindAllForTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.Len(t, all, 11)
	})
}

func TestConceptRepository_FindByCodeForTenant(t *testing.T) {
	db := setupConceptTestDB(t)
	repo := NewGormConceptRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	concept := payroll.DefaultConcepts(tenantID)[0]
	require.NoError(t, repo.Save(ctx, &concept))

	t.Run("finds by code", func(t *testing.T) {
		found, err := repo.FindByCodeForTenant(ctx, tenantID, concept.Code)
		require.NoError(t, err)
		assert.Equal(t, concept.ID, found.ID)
	})

	t.Run("another tenant cannot see it", func(t *testing.T) {
		_, err := repo.FindByCodeForTenant(ctx, uuid.New(), concept.Code)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestConceptRepository_Delete(t *testing.T) {
	db := setupConceptTestDB(t)
	repo := NewGormConceptRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	concept := payroll.DefaultConcepts(tenantID)[0]
	require.NoError(t, repo.Save(ctx, &concept))

	t.Run("deletes within the tenant", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, tenantID, concept.ID))

		_, err := repo.FindByIDForTenant(ctx, tenantID, concept.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("missing concept reports not found", func(t *testing.T) {
		err := repo.Delete(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
