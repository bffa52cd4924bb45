package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monzter50/api-gamification-finances/internal/platform/apierr"
	"github.com/monzter50/api-gamification-finances/internal/platform/logger"
	"github.com/monzter50/api-gamification-finances/internal/repos"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

type UserService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, firstName, lastName string) error
	GetProgress(ctx context.Context, userID uuid.UUID) (*types.UserProgress, error)
}

type userService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	progressRepo repos.UserProgressRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, progressRepo repos.UserProgressRepo) UserService {
	return &userService{
		db:           db,
		log:          baseLog.With("service", "UserService"),
		userRepo:     userRepo,
		progressRepo: progressRepo,
	}
}

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.UserNotFound(userID.String())
	}
	return users[0], nil
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, firstName, lastName string) error {
	fields := map[string]interface{}{}
	if name := strings.TrimSpace(firstName); name != "" {
		fields["first_name"] = name
	}
	if name := strings.TrimSpace(lastName); name != "" {
		fields["last_name"] = name
	}
	if len(fields) == 0 {
		return nil
	}
	if err := us.userRepo.UpdateFields(ctx, nil, userID, fields); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (us *userService) GetProgress(ctx context.Context, userID uuid.UUID) (*types.UserProgress, error) {
	progress, err := us.progressRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if progress == nil {
		return nil, apierr.UserNotFound(userID.String())
	}
	return progress, nil
}
