package postgres

import (
	"context"
	"fmt"

	"topup-pro/internal/core/domain"
	"topup-pro/pkg/apperror"

	"github.com/google/uuid"
)

// ContactRepo implements ports.ContactRepository.
type ContactRepo struct {
	pool Pool
}

// NewContactRepo creates a new ContactRepo.
func NewContactRepo(pool Pool) *ContactRepo {
	return &ContactRepo{pool: pool}
}

// Create inserts a saved beneficiary.
func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	query := `INSERT INTO contacts (id, user_id, name, phone, network, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.pool.Exec(ctx, query, c.ID, c.UserID, c.Name, c.Phone, c.Network, c.CreatedAt); err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// ListByUser returns the user's saved beneficiaries, newest first.
func (r *ContactRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error) {
	query := `SELECT id, user_id, name, phone, network, created_at
		FROM contacts WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Network, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact row: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact rows: %w", err)
	}
	return contacts, nil
}

// Delete removes a beneficiary. The user_id guard keeps one user from
// deleting another's contact.
func (r *ContactRepo) Delete(ctx context.Context, userID, contactID uuid.UUID) error {
	query := `DELETE FROM contacts WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, contactID, userID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrNotFound("contact")
	}
	return nil
}
