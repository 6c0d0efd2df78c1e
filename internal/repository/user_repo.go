package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"vehiculos/internal/db"
	apperrors "vehiculos/internal/errors"
)

type UserRepository interface {
	GetByEmail(email string) (*db.User, error)
	GetByID(id int) (*db.User, error)
	Create(user *db.User, password string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(database *sql.DB) UserRepository {
	return &userRepository{db: database}
}

func (r *userRepository) GetByEmail(email string) (*db.User, error) {
	var u db.User
	err := r.db.QueryRow(
		`SELECT id, full_name, email, employee_number, role, password_hash, phone, created_at
		 FROM users WHERE LOWER(email) = LOWER($1)`,
		email,
	).Scan(&u.ID, &u.FullName, &u.Email, &u.EmployeeNumber, &u.Role, &u.PasswordHash, &u.Phone, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(id int) (*db.User, error) {
	var u db.User
	err := r.db.QueryRow(
		`SELECT id, full_name, email, employee_number, role, password_hash, phone, created_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.FullName, &u.Email, &u.EmployeeNumber, &u.Role, &u.PasswordHash, &u.Phone, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) Create(user *db.User, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	query := `
		INSERT INTO users (full_name, email, employee_number, role, password_hash, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at`
	return r.db.QueryRow(query,
		user.FullName, user.Email, user.EmployeeNumber, user.Role, string(hashed), user.Phone,
	).Scan(&user.ID, &user.CreatedAt)
}
