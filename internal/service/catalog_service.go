package service

import (
	"context"
	"sync"

	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
	"github.com/ignatzorin/testhub-backend/internal/logger"
	"github.com/ignatzorin/testhub-backend/internal/models"
)

// StatusDefinitionSource источник определений статусов.
type StatusDefinitionSource interface {
	ListStatusDefinitions(ctx context.Context) ([]models.StatusDefinition, error)
}

// CatalogService загружает справочник статусов и отдаёт его как неизменяемый
// снимок. Пустая или недоступная таблица не роняет сервис: используется
// встроенный справочник по умолчанию.
type CatalogService struct {
	source StatusDefinitionSource

	mu      sync.RWMutex
	catalog *valueobject.StatusCatalog
}

func NewCatalogService(source StatusDefinitionSource) *CatalogService {
	return &CatalogService{
		source:  source,
		catalog: valueobject.DefaultStatusCatalog(),
	}
}

// Load читает определения из базы и замещает снимок справочника.
func (s *CatalogService) Load(ctx context.Context) error {
	rows, err := s.source.ListStatusDefinitions(ctx)
	if err != nil {
		logger.WithModule("catalog").WithError(err).Warn("не удалось загрузить справочник статусов, используем встроенный")
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	defs := make([]valueobject.StatusDefinition, 0, len(rows))
	for _, row := range rows {
		defs = append(defs, valueobject.StatusDefinition{
			Code:           valueobject.StatusCode(row.Code),
			Label:          row.Label,
			Description:    row.Description,
			ProgressWeight: row.ProgressWeight,
			Terminal:       row.Terminal,
		})
	}

	s.mu.Lock()
	s.catalog = valueobject.NewStatusCatalog(defs)
	s.mu.Unlock()
	return nil
}

// Catalog возвращает текущий снимок справочника.
func (s *CatalogService) Catalog() *valueobject.StatusCatalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}
