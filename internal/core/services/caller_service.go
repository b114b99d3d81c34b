package services

import (
	"context"
	"errors"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
)

// CallerService resolves authenticated identities against the user
// directory, so role and team always come from the directory rather than
// from token claims.
type CallerService struct {
	userRepo ports.UserRepository
}

var _ ports.CallerResolver = (*CallerService)(nil)

func NewCallerService(userRepo ports.UserRepository) ports.CallerResolver {
	return &CallerService{userRepo: userRepo}
}

// ResolveCaller looks the caller up by id, falling back to login when the
// token carries no id. A login that disagrees with the directory record is
// rejected.
func (s *CallerService) ResolveCaller(ctx context.Context, userID int64, login string) (*domain.User, error) {
	var (
		user *domain.User
		err  error
	)
	switch {
	case userID > 0:
		user, err = s.userRepo.GetByID(ctx, userID)
	case login != "":
		user, err = s.userRepo.GetByLogin(ctx, login)
	default:
		return nil, apperrors.ErrUnauthorized
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	if login != "" && !user.HasLogin(login) {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}
