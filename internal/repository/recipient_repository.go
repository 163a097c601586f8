package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/unclebandit/mailing-backend/internal/model"
)

// RecipientRepositoryInterface defines methods used by service
type RecipientRepositoryInterface interface {
	ListByCampaign(ctx context.Context, campaignID int) ([]model.Recipient, error)
	CountByOwner(ctx context.Context, ownerID int) (int, error)
}

type RecipientRepository struct {
	DB *sql.DB
}

// ListByCampaign returns the campaign's recipients in id order.
func (r *RecipientRepository) ListByCampaign(ctx context.Context, campaignID int) ([]model.Recipient, error) {
	query := `
        SELECT r.id, COALESCE(r.email, ''), r.full_name, r.comment, r.owner_id
        FROM recipients r
        JOIN campaign_recipients cr ON cr.recipient_id = r.id
        WHERE cr.campaign_id = $1
        ORDER BY r.id
    `
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("query recipients of campaign %d: %w", campaignID, err)
	}
	defer rows.Close()

	recipients := []model.Recipient{}
	for rows.Next() {
		var rc model.Recipient
		var comment sql.NullString
		if err := rows.Scan(&rc.ID, &rc.Email, &rc.FullName, &comment, &rc.OwnerID); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		if comment.Valid {
			s := comment.String
			rc.Comment = &s
		}
		recipients = append(recipients, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipients: %w", err)
	}
	return recipients, nil
}

func (r *RecipientRepository) CountByOwner(ctx context.Context, ownerID int) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(DISTINCT id) FROM recipients WHERE owner_id=$1`, ownerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count recipients: %w", err)
	}
	return total, nil
}

var _ RecipientRepositoryInterface = (*RecipientRepository)(nil)
