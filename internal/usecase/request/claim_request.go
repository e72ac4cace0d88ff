package request

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/domain/entity"
	"github.com/ignatzorin/testhub-backend/internal/domain/repository"
	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
)

// StatusCatalogSource отдаёт актуальный снапшот справочника статусов.
// Снапшот запрашивается на каждый вызов, чтобы перезагрузка справочника
// сразу влияла на проверку терминальности.
type StatusCatalogSource interface {
	Catalog() *valueobject.StatusCatalog
}

// ClaimRequestUseCase самоназначение тестировщика на свободную заявку.
// Конкурирующие claim-ы одной заявки сериализуются CAS-проверкой версии в
// репозитории: побеждает ровно один, проигравший получает ClaimError
// AlreadyAssigned, тихое двойное назначение невозможно.
type ClaimRequestUseCase struct {
	requestRepo repository.RequestRepository
	catalogs    StatusCatalogSource
}

func NewClaimRequestUseCase(requestRepo repository.RequestRepository, catalogs StatusCatalogSource) *ClaimRequestUseCase {
	return &ClaimRequestUseCase{requestRepo: requestRepo, catalogs: catalogs}
}

func (uc *ClaimRequestUseCase) Execute(ctx context.Context, requestID, testerID uuid.UUID, testerName string) (*entity.TestingRequest, error) {
	req, err := uc.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	update, err := req.Claim(testerID, testerName, uc.catalogs.Catalog())
	if err != nil {
		return nil, err
	}

	if err := uc.requestRepo.Update(ctx, req); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			// Версию успел сдвинуть конкурент. Перечитываем: если заявку
			// забрали, возвращаем AlreadyAssigned, иначе отдаём конфликт выше.
			fresh, ferr := uc.requestRepo.FindByID(ctx, requestID)
			if ferr == nil && fresh.AssignedTesterID != nil {
				return nil, &entity.ClaimError{
					Kind:    entity.ClaimAlreadyAssigned,
					Message: "заявка уже назначена другому тестировщику",
				}
			}
		}
		return nil, err
	}

	if err := uc.requestRepo.AppendUpdate(ctx, update); err != nil {
		return nil, err
	}

	return req, nil
}
