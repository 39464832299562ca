package payroll

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hrmax/backend/internal/domain/payroll"
	"github.com/hrmax/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ConceptCache is the distributed cache for tenant catalogs. A nil result
// with a nil error is a miss. Implementations live in infrastructure.
type ConceptCache interface {
	GetConcepts(ctx context.Context, tenantID uuid.UUID) ([]payroll.Concept, error)
	SetConcepts(ctx context.Context, tenantID uuid.UUID, concepts []payroll.Concept) error
	Invalidate(ctx context.Context, tenantID uuid.UUID) error
}

// CatalogService owns the concept catalog lifecycle: CRUD, validation and
// the compiled snapshots the engine runs against. Snapshots are memoized
// per tenant until a catalog write invalidates them.
type CatalogService struct {
	conceptRepo payroll.ConceptRepository
	cache       ConceptCache
	logger      *zap.Logger

	mu        sync.RWMutex
	snapshots map[uuid.UUID]*payroll.CatalogSnapshot
}

// NewCatalogService creates a catalog service. The cache may be nil; the
// service then always reads through to the repository.
func NewCatalogService(conceptRepo payroll.ConceptRepository, cache ConceptCache, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		conceptRepo: conceptRepo,
		cache:       cache,
		logger:      logger,
		snapshots:   map[uuid.UUID]*payroll.CatalogSnapshot{},
	}
}

// Snapshot returns the compiled catalog snapshot for a tenant, loading
// and compiling it on first use. Every calculation in a batch shares the
// same snapshot instance.
func (s *CatalogService) Snapshot(ctx context.Context, tenantID uuid.UUID) (*payroll.CatalogSnapshot, error) {
	s.mu.RLock()
	snapshot, ok := s.snapshots[tenantID]
	s.mu.RUnlock()
	if ok {
		return snapshot, nil
	}

	concepts, err := s.loadConcepts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(concepts) == 0 {
		return nil, shared.ErrInvalidCatalog
	}

	snapshot, err = payroll.NewCatalogSnapshot(tenantID, concepts, payroll.DefaultFiscalYears())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snapshots[tenantID] = snapshot
	s.mu.Unlock()

	s.logger.Info("concept catalog compiled",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("concepts", snapshot.ConceptCount()))
	return snapshot, nil
}

// loadConcepts reads the active catalog, preferring the cache. Cache
// failures degrade to the repository instead of failing the batch.
func (s *CatalogService) loadConcepts(ctx context.Context, tenantID uuid.UUID) ([]payroll.Concept, error) {
	if s.cache != nil {
		concepts, err := s.cache.GetConcepts(ctx, tenantID)
		if err != nil {
			s.logger.Warn("concept cache read failed, falling back to repository",
				zap.String("tenant_id", tenantID.String()), zap.Error(err))
		} else if concepts != nil {
			return concepts, nil
		}
	}

	concepts, err := s.conceptRepo.FindActiveForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(concepts) > 0 {
		if err := s.cache.SetConcepts(ctx, tenantID, concepts); err != nil {
			s.logger.Warn("concept cache write failed",
				zap.String("tenant_id", tenantID.String()), zap.Error(err))
		}
	}
	return concepts, nil
}

// invalidate drops the memoized snapshot and the cache entry after any
// catalog write.
func (s *CatalogService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	s.mu.Lock()
	delete(s.snapshots, tenantID)
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, tenantID); err != nil {
			s.logger.Warn("concept cache invalidation failed",
				zap.String("tenant_id", tenantID.String()), zap.Error(err))
		}
	}
}

// SeedDefaults installs the built-in catalog for a tenant that has no
// concepts yet. Calling it on a populated tenant is a no-op.
func (s *CatalogService) SeedDefaults(ctx context.Context, tenantID uuid.UUID) (int, error) {
	existing, err := s.conceptRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	defaults := payroll.DefaultConcepts(tenantID)
	for i := range defaults {
		if err := s.conceptRepo.Save(ctx, &defaults[i]); err != nil {
			return 0, err
		}
	}
	s.invalidate(ctx, tenantID)
	s.logger.Info("default catalog seeded",
		zap.String("tenant_id", tenantID.String()), zap.Int("concepts", len(defaults)))
	return len(defaults), nil
}

// CreateConceptRequest is the payload for adding a catalog concept.
type CreateConceptRequest struct {
	Code             string `json:"codigo" binding:"required"`
	Name             string `json:"nombre" binding:"required"`
	Kind             string `json:"tipo" binding:"required"`
	Category         string `json:"categoria" binding:"required"`
	Formula          string `json:"formula" binding:"required"`
	ExemptionFormula string `json:"formulaExencion"`
	AnnualCapFormula string `json:"formulaTopeAnual"`
	TaxableForISR    bool   `json:"gravaISR"`
	IntegratesSBC    bool   `json:"integraSBC"`
	LegalBasis       string `json:"fundamentoLegal"`
	SortOrder        int    `json:"orden"`
}

// UpdateConceptRequest is the payload for editing a catalog concept.
type UpdateConceptRequest struct {
	Name             string `json:"nombre" binding:"required"`
	Formula          string `json:"formula" binding:"required"`
	ExemptionFormula string `json:"formulaExencion"`
	AnnualCapFormula string `json:"formulaTopeAnual"`
	TaxableForISR    bool   `json:"gravaISR"`
	IntegratesSBC    bool   `json:"integraSBC"`
	LegalBasis       string `json:"fundamentoLegal"`
	SortOrder        int    `json:"orden"`
	Active           bool   `json:"activo"`
}

// CreateConcept validates and stores a new concept. Validation compiles
// the whole prospective catalog, so a formula that would break the next
// payroll run is rejected here.
func (s *CatalogService) CreateConcept(ctx context.Context, tenantID uuid.UUID, req CreateConceptRequest) (*payroll.Concept, error) {
	concept := payroll.Concept{
		ID:               uuid.New(),
		TenantID:         tenantID,
		Code:             req.Code,
		Name:             req.Name,
		Kind:             payroll.ConceptKind(req.Kind),
		Category:         payroll.ConceptCategory(req.Category),
		FormulaSrc:       req.Formula,
		ExemptionFormula: req.ExemptionFormula,
		AnnualCapFormula: req.AnnualCapFormula,
		TaxableForISR:    req.TaxableForISR,
		IntegratesSBC:    req.IntegratesSBC,
		LegalBasis:       req.LegalBasis,
		Active:           true,
		SortOrder:        req.SortOrder,
	}

	if err := s.validateCatalogWith(ctx, tenantID, concept); err != nil {
		return nil, err
	}
	if err := s.conceptRepo.Save(ctx, &concept); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return &concept, nil
}

// UpdateConcept edits an existing concept and revalidates the catalog.
func (s *CatalogService) UpdateConcept(ctx context.Context, tenantID, id uuid.UUID, req UpdateConceptRequest) (*payroll.Concept, error) {
	concept, err := s.conceptRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	concept.Name = req.Name
	concept.FormulaSrc = req.Formula
	concept.ExemptionFormula = req.ExemptionFormula
	concept.AnnualCapFormula = req.AnnualCapFormula
	concept.TaxableForISR = req.TaxableForISR
	concept.IntegratesSBC = req.IntegratesSBC
	concept.LegalBasis = req.LegalBasis
	concept.SortOrder = req.SortOrder
	concept.Active = req.Active

	if concept.Active {
		if err := s.validateCatalogWith(ctx, tenantID, *concept); err != nil {
			return nil, err
		}
	}
	if err := s.conceptRepo.Save(ctx, concept); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return concept, nil
}

// DeactivateConcept retires a concept without deleting its history.
func (s *CatalogService) DeactivateConcept(ctx context.Context, tenantID, id uuid.UUID) error {
	concept, err := s.conceptRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !concept.Active {
		return nil
	}
	concept.Active = false
	if err := s.conceptRepo.Save(ctx, concept); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

// ListConcepts returns every concept of the tenant, active or not.
func (s *CatalogService) ListConcepts(ctx context.Context, tenantID uuid.UUID) ([]payroll.Concept, error) {
	return s.conceptRepo.FindAllForTenant(ctx, tenantID)
}

// validateCatalogWith compiles the active catalog as it would look with
// the candidate applied, replacing any existing concept of the same code.
func (s *CatalogService) validateCatalogWith(ctx context.Context, tenantID uuid.UUID, candidate payroll.Concept) error {
	actives, err := s.conceptRepo.FindActiveForTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	merged := make([]payroll.Concept, 0, len(actives)+1)
	for _, c := range actives {
		if c.Code != candidate.Code {
			merged = append(merged, c)
		}
	}
	merged = append(merged, candidate)

	_, err = payroll.NewCatalogSnapshot(tenantID, merged, payroll.DefaultFiscalYears())
	return err
}
