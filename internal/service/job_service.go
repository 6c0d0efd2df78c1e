package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"vehiculos/internal/repository"
)

type JobService struct {
	Repo      *repository.JobRepository
	DigestAge time.Duration
}

func NewJobService(repo *repository.JobRepository, digestAge time.Duration) *JobService {
	return &JobService{Repo: repo, DigestAge: digestAge}
}

// SendPendingDigest recuerda a los administradores las reservas pendientes
// que llevan demasiado tiempo sin decisión. Nunca cambia el estado de una
// reserva: las decisiones siempre son manuales.
func (s *JobService) SendPendingDigest() error {
	log.Println("Cron Job: checking for stale pending reservations...")

	cutoff := time.Now().UTC().Add(-s.DigestAge)
	ids, err := s.Repo.GetPendingReservationIDsOlderThan(cutoff)
	if err != nil {
		return fmt.Errorf("cron job: failed to get stale pending reservations: %w", err)
	}
	if len(ids) == 0 {
		log.Println("Cron Job: no stale pending reservations found.")
		return nil
	}

	summaries, err := s.Repo.GetReservationSummaries(ids)
	if err != nil {
		return fmt.Errorf("cron job: failed to load reservation summaries: %w", err)
	}

	admins, err := s.Repo.ListAdminEmails()
	if err != nil {
		return fmt.Errorf("cron job: failed to list admin emails: %w", err)
	}
	if len(admins) == 0 {
		log.Println("Cron Job: no admin users to notify.")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hay %d reserva(s) pendiente(s) de decisión:\n\n", len(summaries))
	for _, row := range summaries {
		fmt.Fprintf(&b, "- %s | %s | %s | inicia %s\n", row.Code, row.OwnerName, row.DestinationText, row.StartTime)
	}
	subject := fmt.Sprintf("Reservas pendientes de autorización: %d", len(summaries))

	for _, email := range admins {
		if err := SendEmailWithSendGrid(email, "Administración", subject, b.String()); err != nil {
			log.Printf("Cron Job: failed to send digest to %s: %v", email, err)
		}
	}

	log.Printf("Cron Job: digest sent for %d pending reservations. IDs: %v", len(ids), ids)
	return nil
}
