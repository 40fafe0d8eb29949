package users

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"geo-survey/survey-portal/survey-portal-backend/pkg/apperrors"
)

// Requests

type CreateUserRequest struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone"`
	CIN       string     `json:"cin"`
	Role      string     `json:"role"`
	CityID    *uuid.UUID `json:"city_id"`

	LicenseNumber  *string `json:"license_number"`
	Specialization *string `json:"specialization"`

	SkillLevel   *string    `json:"skill_level"`
	Specialties  []string   `json:"specialties"`
	TopographeID *uuid.UUID `json:"topographe_id"`

	ClientType  *string `json:"client_type"`
	CompanyName *string `json:"company_name"`
}

type UpdateUserRequest struct {
	Email     *string    `json:"email"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Phone     *string    `json:"phone"`
	CityID    *uuid.UUID `json:"city_id"`

	Specialization *string  `json:"specialization"`
	SkillLevel     *string  `json:"skill_level"`
	Specialties    []string `json:"specialties"`
	ClientType     *string  `json:"client_type"`
	CompanyName    *string  `json:"company_name"`
}

// UserResponse is a user plus display fields resolved at read time
type UserResponse struct {
	User
	CityName string `json:"city_name,omitempty"`
}

// WelcomeNotifier is the email collaborator; failures there never
// propagate back into user creation
type WelcomeNotifier interface {
	SendWelcomeEmail(ctx context.Context, to, firstName, username string)
}

// CityResolver resolves a city id to a display name
type CityResolver interface {
	CityDisplayName(ctx context.Context, id uuid.UUID) string
}

// Service provides user management for all roles
type Service struct {
	repo     Repository
	cities   CityResolver
	notifier WelcomeNotifier
	logger   *zap.Logger
}

func NewService(repo Repository, cities CityResolver, notifier WelcomeNotifier, logger *zap.Logger) *Service {
	return &Service{repo: repo, cities: cities, notifier: notifier, logger: logger}
}

// CreateUser validates and persists a new account, then fires the welcome
// email for topographe accounts
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := validateCreateRequest(&req); err != nil {
		return nil, err
	}

	user := &User{
		Username:       req.Username,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		CIN:            req.CIN,
		Role:           req.Role,
		IsActive:       true,
		CityID:         req.CityID,
		LicenseNumber:  req.LicenseNumber,
		Specialization: req.Specialization,
		SkillLevel:     req.SkillLevel,
		TopographeID:   req.TopographeID,
		ClientType:     req.ClientType,
		CompanyName:    req.CompanyName,
	}

	if len(req.Specialties) > 0 {
		raw, err := json.Marshal(req.Specialties)
		if err != nil {
			return nil, fmt.Errorf("encoding specialties: %w", err)
		}
		user.Specialties = raw
	}

	if req.Role == RoleTechnicien {
		if err := s.checkSupervisingTopographe(ctx, req.TopographeID); err != nil {
			return nil, err
		}
	}

	if field, err := s.repo.FindConflictingField(ctx, user); err != nil {
		return nil, err
	} else if field != "" {
		return nil, apperrors.Duplicatef("%s already in use", field)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	user.Password = string(hash)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if user.Role == RoleTopographe {
		s.notifier.SendWelcomeEmail(ctx, user.Email, user.FirstName, user.Username)
	}

	return user, nil
}

// GetUser fetches one user or fails with NotFound
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	if user == nil {
		return nil, apperrors.NotFoundf("user %s not found", id)
	}
	return user, nil
}

// GetActiveByRole fetches a user and checks it carries the expected role
// and is active; other domains use this to validate references
func (s *Service) GetActiveByRole(ctx context.Context, id uuid.UUID, role string) (*User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != role {
		return nil, apperrors.Validationf("user %s is not a %s", id, role)
	}
	if !user.IsActive {
		return nil, apperrors.Validationf("%s %s is not active", role, user.FullName())
	}
	return user, nil
}

// ListUsers returns a filtered page plus the total row count
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]User, int64, error) {
	return s.repo.List(ctx, filter)
}

// UpdateUser applies the optional fields and revalidates role payload
// consistency and uniqueness
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.CityID != nil {
		user.CityID = req.CityID
	}
	if req.Specialization != nil {
		user.Specialization = req.Specialization
	}
	if req.SkillLevel != nil {
		if user.Role != RoleTechnicien {
			return nil, apperrors.Validationf("skill level only applies to technicians")
		}
		if !validSkillLevel(*req.SkillLevel) {
			return nil, apperrors.Validationf("unknown skill level %s", *req.SkillLevel)
		}
		user.SkillLevel = req.SkillLevel
	}
	if req.Specialties != nil {
		raw, err := json.Marshal(req.Specialties)
		if err != nil {
			return nil, fmt.Errorf("encoding specialties: %w", err)
		}
		user.Specialties = raw
	}
	if req.ClientType != nil {
		if user.Role != RoleClient {
			return nil, apperrors.Validationf("client type only applies to clients")
		}
		if !validClientType(*req.ClientType) {
			return nil, apperrors.Validationf("unknown client type %s", *req.ClientType)
		}
		user.ClientType = req.ClientType
	}
	if req.CompanyName != nil {
		user.CompanyName = req.CompanyName
	}

	if err := validateClientCompanyName(user.Role, user.ClientType, user.CompanyName); err != nil {
		return nil, err
	}

	if field, err := s.repo.FindConflictingField(ctx, user); err != nil {
		return nil, err
	} else if field != "" {
		return nil, apperrors.Duplicatef("%s already in use", field)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

// SetActive toggles the active flag
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ToResponse resolves the display fields for one user at read time
func (s *Service) ToResponse(ctx context.Context, user *User) UserResponse {
	resp := UserResponse{User: *user}
	if user.CityID != nil {
		resp.CityName = s.cities.CityDisplayName(ctx, *user.CityID)
	}
	return resp
}

func (s *Service) checkSupervisingTopographe(ctx context.Context, topographeID *uuid.UUID) error {
	if topographeID == nil {
		return apperrors.Validationf("technician requires a supervising topographe")
	}
	topographe, err := s.repo.GetByID(ctx, *topographeID)
	if err != nil {
		return fmt.Errorf("fetching topographe: %w", err)
	}
	if topographe == nil {
		return apperrors.NotFoundf("topographe %s not found", *topographeID)
	}
	if topographe.Role != RoleTopographe {
		return apperrors.Validationf("user %s is not a topographe", *topographeID)
	}
	if !topographe.IsActive {
		return apperrors.Validationf("topographe %s is not active", topographe.FullName())
	}
	return nil
}

func validateCreateRequest(req *CreateUserRequest) error {
	switch {
	case req.Username == "":
		return apperrors.Validationf("username is required")
	case req.Email == "":
		return apperrors.Validationf("email is required")
	case req.Password == "":
		return apperrors.Validationf("password is required")
	case req.FirstName == "" || req.LastName == "":
		return apperrors.Validationf("first and last name are required")
	case req.Phone == "":
		return apperrors.Validationf("phone is required")
	case req.CIN == "":
		return apperrors.Validationf("cin is required")
	}

	switch req.Role {
	case RoleAdmin:
	case RoleTopographe:
		if req.LicenseNumber == nil || *req.LicenseNumber == "" {
			return apperrors.Validationf("topographe requires a license number")
		}
	case RoleTechnicien:
		if req.SkillLevel == nil || !validSkillLevel(*req.SkillLevel) {
			return apperrors.Validationf("technician requires a valid skill level")
		}
	case RoleClient:
		if req.ClientType == nil || !validClientType(*req.ClientType) {
			return apperrors.Validationf("client requires a valid client type")
		}
		if err := validateClientCompanyName(RoleClient, req.ClientType, req.CompanyName); err != nil {
			return err
		}
	default:
		return apperrors.Validationf("unknown role %s", req.Role)
	}
	return nil
}

func validateClientCompanyName(role string, clientType, companyName *string) error {
	if role != RoleClient || clientType == nil {
		return nil
	}
	if *clientType == ClientCompany || *clientType == ClientGovernment {
		if companyName == nil || *companyName == "" {
			return apperrors.Validationf("company name is required for %s clients", *clientType)
		}
	}
	return nil
}

func validSkillLevel(level string) bool {
	return level == SkillJunior || level == SkillSenior || level == SkillExpert
}

func validClientType(t string) bool {
	return t == ClientIndividual || t == ClientCompany || t == ClientGovernment
}
