package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/testhub-backend/internal/dto"
	"github.com/ignatzorin/testhub-backend/internal/pricing"
	"github.com/ignatzorin/testhub-backend/internal/service"
)

type CatalogHandler struct {
	catalogs *service.CatalogService
}

// NewCatalogHandler создаёт новый хэндлер.
func NewCatalogHandler(catalogs *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogs: catalogs}
}

// ListStatuses обрабатывает GET /catalog/statuses.
func (h *CatalogHandler) ListStatuses(c *gin.Context) {
	defs := h.catalogs.Catalog().All()
	c.JSON(http.StatusOK, gin.H{"statuses": defs})
}

// ListTestingTypes обрабатывает GET /catalog/testing-types.
// Отдаёт канонический прайс-лист видов тестирования в токенах.
func (h *CatalogHandler) ListTestingTypes(c *gin.Context) {
	costs := pricing.Catalog()

	items := make([]dto.TestingTypeResponse, 0, len(costs))
	for key, tokens := range costs {
		items = append(items, dto.TestingTypeResponse{Key: key, Tokens: tokens})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })

	c.JSON(http.StatusOK, gin.H{"testing_types": items})
}
