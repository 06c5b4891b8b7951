package store

import (
	"context"
	"errors"
	"time"

	"cierrecaja/backend/internal/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidClosing = errors.New("invalid closing")
)

type Repository interface {
	SaveClosing(ctx context.Context, closing domain.Closing) (*domain.Closing, error)
	GetClosingByID(ctx context.Context, id string) (*domain.Closing, error)
	ListClosings(ctx context.Context, storeID string, limit int) ([]domain.Closing, error)
	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
