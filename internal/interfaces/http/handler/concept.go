package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppayroll "github.com/hrmax/backend/internal/application/payroll"
	"github.com/hrmax/backend/internal/interfaces/http/dto"
)

// ConceptHandler handles concept catalog API endpoints
type ConceptHandler struct {
	BaseHandler
	catalogService *apppayroll.CatalogService
}

// NewConceptHandler creates a new ConceptHandler
func NewConceptHandler(catalogService *apppayroll.CatalogService) *ConceptHandler {
	return &ConceptHandler{catalogService: catalogService}
}

// SeedResponse reports how many default concepts were installed
type SeedResponse struct {
	Seeded int `json:"seeded"`
}

// List returns every concept of the tenant, active or not
func (h *ConceptHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	concepts, err := h.catalogService.ListConcepts(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, concepts)
}

// Create validates and stores a new catalog concept
func (h *ConceptHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var req apppayroll.CreateConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	concept, err := h.catalogService.CreateConcept(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, concept)
}

// Update edits an existing catalog concept
func (h *ConceptHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	conceptID := uuid.MustParse(uri.ID)

	var req apppayroll.UpdateConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	concept, err := h.catalogService.UpdateConcept(c.Request.Context(), tenantID, conceptID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, concept)
}

// Deactivate retires a concept without deleting its history
func (h *ConceptHandler) Deactivate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.catalogService.DeactivateConcept(c.Request.Context(), tenantID, uuid.MustParse(uri.ID)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Seed installs the built-in catalog for a tenant with no concepts yet
func (h *ConceptHandler) Seed(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	seeded, err := h.catalogService.SeedDefaults(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, SeedResponse{Seeded: seeded})
}

// RegisterRoutes registers all concept catalog routes
func (h *ConceptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	concepts := rg.Group("/payroll/concepts")
	{
		concepts.GET("", h.List)
		concepts.POST("", h.Create)
		concepts.POST("/seed", h.Seed)
		concepts.PUT("/:id", h.Update)
		concepts.DELETE("/:id", h.Deactivate)
	}
}
