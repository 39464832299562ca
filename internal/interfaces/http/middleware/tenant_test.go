package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hrmax/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenant(t *testing.T) {
	tenantID := uuid.New()

	newEngine := func(cfg TenantMiddlewareConfig, handler gin.HandlerFunc) *gin.Engine {
		engine := gin.New()
		engine.Use(TenantWithConfig(cfg))
		engine.GET("/api/v1/payroll/concepts", handler)
		engine.GET("/health", handler)
		return engine
	}

	t.Run("extracts tenant from header", func(t *testing.T) {
		engine := newEngine(DefaultTenantConfig(), func(c *gin.Context) {
			got, err := GetTenantUUID(c)
			require.NoError(t, err)
			assert.Equal(t, tenantID, got)

			// The request context carries the tenant for the query logger
			assert.Equal(t, tenantID.String(), logger.GetTenantID(c.Request.Context()))
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/api/v1/payroll/concepts", nil)
		req.Header.Set(TenantHeaderKey, tenantID.String())
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects a missing tenant when required", func(t *testing.T) {
		engine := newEngine(DefaultTenantConfig(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/payroll/concepts", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_UNAUTHORIZED")
	})

	t.Run("rejects a malformed tenant ID", func(t *testing.T) {
		engine := newEngine(DefaultTenantConfig(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/api/v1/payroll/concepts", nil)
		req.Header.Set(TenantHeaderKey, "not-a-uuid")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("skips configured paths", func(t *testing.T) {
		engine := newEngine(DefaultTenantConfig(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("optional tenant lets the request through", func(t *testing.T) {
		cfg := DefaultTenantConfig()
		cfg.Required = false
		engine := newEngine(cfg, func(c *gin.Context) {
			assert.Empty(t, GetTenantID(c))
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/payroll/concepts", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
