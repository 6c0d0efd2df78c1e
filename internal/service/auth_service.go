package service

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vehiculos/internal/auth"
	"vehiculos/internal/db"
	apperrors "vehiculos/internal/errors"
	"vehiculos/internal/lifecycle"
	"vehiculos/internal/repository"
)

type RegisterRequest struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	EmployeeNumber string `json:"employee_number"`
	Phone          string `json:"phone"`
	Password       string `json:"password"`
}

type UserAuthService interface {
	Register(req RegisterRequest) error
	Login(email, password string) (string, error)
	Profile(userID int) (*db.User, error)
}

type userAuthService struct {
	repo        repository.UserRepository
	jwtSecret   string
	emailDomain string
}

func NewUserAuthService(repo repository.UserRepository, jwtSecret, emailDomain string) UserAuthService {
	return &userAuthService{repo: repo, jwtSecret: jwtSecret, emailDomain: emailDomain}
}

// Register creates a standard-role account. Only institutional addresses are
// accepted.
func (s *userAuthService) Register(req RegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return fmt.Errorf("%w: email and password are required", apperrors.ErrInvalidRequest)
	}
	if !strings.HasSuffix(email, "@"+s.emailDomain) {
		return fmt.Errorf("%w: el correo debe ser institucional (@%s)", apperrors.ErrInvalidRequest, s.emailDomain)
	}

	existing, err := s.repo.GetByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: ya existe un usuario con ese correo", apperrors.ErrInvalidRequest)
	}

	user := &db.User{
		FullName:       req.FullName,
		Email:          email,
		EmployeeNumber: req.EmployeeNumber,
		Phone:          req.Phone,
		Role:           string(lifecycle.RoleStandard),
	}
	return s.repo.Create(user, req.Password)
}

func (s *userAuthService) Login(email, password string) (string, error) {
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperrors.ErrUnauthorized("credenciales inválidas")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.ErrUnauthorized("credenciales inválidas")
	}

	return auth.GenerateToken(s.jwtSecret, user.ID, lifecycle.Role(user.Role), user.Email, time.Hour)
}

func (s *userAuthService) Profile(userID int) (*db.User, error) {
	return s.repo.GetByID(userID)
}
