package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/logger"
	"gearrent-backend/internal/repository"
	"gearrent-backend/internal/security"
)

const minPasswordLength = 8

type userService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	emailSvc EmailService
	rules    RentalRules
}

func NewUserService(userRepo repository.UserRepository, tokens security.TokenManager, emailSvc EmailService, rules RentalRules) UserService {
	return &userService{
		userRepo: userRepo,
		tokens:   tokens,
		emailSvc: emailSvc,
		rules:    rules,
	}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	method := "userService.Register"
	logger.EnterMethod(method, "email", input.Email)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	role := input.Role
	if role == "" {
		role = domain.UserRoleMember
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrValidation, role)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	status := domain.VerificationPending
	if role == domain.UserRoleMember && s.rules.AutoApproveMembers {
		status = domain.VerificationApproved
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PhoneNumber:  input.PhoneNumber,
		Address:      input.Address,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		logger.ExitMethodWithError(method, err, "email", email)
		return nil, err
	}

	logger.InfoContext(ctx, "User registered", "userID", user.ID, "role", user.Role, "status", user.Status)
	logger.ExitMethod(method, "userID", user.ID)
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", time.Time{}, nil, domain.ErrInvalidCredentials
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		return "", time.Time{}, nil, domain.ErrInvalidCredentials
	}
	if user.Status != domain.VerificationApproved {
		return "", time.Time{}, nil, domain.ErrAccountNotApproved
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID int32) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) ListUsers(ctx context.Context, status domain.VerificationStatus) ([]domain.User, error) {
	return s.userRepo.ListByStatus(ctx, status)
}

func (s *userService) VerifyUser(ctx context.Context, adminID, userID int32, status domain.VerificationStatus) (*domain.User, error) {
	if status != domain.VerificationApproved && status != domain.VerificationRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Status = status
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "User verification updated", "adminID", adminID, "userID", userID, "status", status)

	if s.emailSvc != nil {
		if err := s.emailSvc.SendAccountStatusNotification(ctx, user.Email, user.Name, status); err != nil {
			logger.WarnContext(ctx, "Failed to send account status notification", "userID", userID, "error", err)
		}
	}
	return user, nil
}
