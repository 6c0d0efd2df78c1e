package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"vehiculos/internal/entities"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// GetPendingReservationIDsOlderThan busca reservas pendientes creadas antes
// del corte, para el recordatorio diario a administradores.
func (r *JobRepository) GetPendingReservationIDsOlderThan(cutoff time.Time) ([]int, error) {
	query := `SELECT id FROM reservations WHERE status = 'pending' AND created_at < $1 ORDER BY created_at`
	rows, err := r.DB.Query(query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("error querying stale pending reservations: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning reservation ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// GetReservationSummaries loads digest rows for the given reservation IDs.
func (r *JobRepository) GetReservationSummaries(ids []int) ([]entities.PendingReservationSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT r.code, u.full_name, r.destination_text, r.start_time
		FROM reservations r
		JOIN users u ON r.user_id = u.id
		WHERE r.id = ANY($1)
		ORDER BY r.start_time`
	rows, err := r.DB.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("error querying reservation summaries: %w", err)
	}
	defer rows.Close()

	var out []entities.PendingReservationSummary
	for rows.Next() {
		var s entities.PendingReservationSummary
		var start time.Time
		if err := rows.Scan(&s.Code, &s.OwnerName, &s.DestinationText, &start); err != nil {
			return nil, fmt.Errorf("error scanning summary row: %w", err)
		}
		s.StartTime = start.Format("02 Jan 2006 15:04 MST")
		out = append(out, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating summary rows: %w", err)
	}
	return out, nil
}

// ListAdminEmails returns the notification targets for the digest.
func (r *JobRepository) ListAdminEmails() ([]string, error) {
	rows, err := r.DB.Query(`SELECT email FROM users WHERE role = 'admin'`)
	if err != nil {
		return nil, fmt.Errorf("error querying admin emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("error scanning admin email: %w", err)
		}
		emails = append(emails, email)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating admin emails: %w", err)
	}
	return emails, nil
}
