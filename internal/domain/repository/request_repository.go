package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/domain/entity"
)

// ErrVersionConflict возвращается, когда compare-and-swap по версии не прошёл:
// заявку успел изменить конкурентный вызов.
var ErrVersionConflict = errors.New("request version conflict")

// RequestRepository хранилище агрегата заявки. Update обязан выполнять
// атомарную проверку версии, чтобы конкурирующие мутации одной заявки
// сериализовались: ровно один победитель, остальные получают ErrVersionConflict.
type RequestRepository interface {
	Create(ctx context.Context, req *entity.TestingRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TestingRequest, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*entity.TestingRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]*entity.TestingRequest, int, error)

	// Update сохраняет агрегат при совпадении версии и инкрементирует её.
	Update(ctx context.Context, req *entity.TestingRequest) error

	AppendUpdate(ctx context.Context, update *entity.Update) error
	FindUpdates(ctx context.Context, requestID uuid.UUID) ([]entity.Update, error)
}

// RequestFilter параметры выборки заявок.
type RequestFilter struct {
	Status     string
	Bucket     string
	CustomerID *uuid.UUID
	TesterID   *uuid.UUID
	Search     string
	Limit      int
	Offset     int
}
