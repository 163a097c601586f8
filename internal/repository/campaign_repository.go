package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	appErrors "github.com/unclebandit/mailing-backend/internal/errors"
	"github.com/unclebandit/mailing-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	GetStarted(ctx context.Context) ([]*model.Campaign, error)
	GetByID(ctx context.Context, id int) (*model.Campaign, error)
	List(ctx context.Context, ownerID *int) ([]*model.Campaign, error)
	UpdateStatus(ctx context.Context, campaignID int, status model.CampaignStatus) error
	CountByOwner(ctx context.Context, ownerID int, status model.CampaignStatus) (int, error)
}

type CampaignRepository struct {
	DB *sql.DB
	sb sq.StatementBuilderType
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{
		DB: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const campaignColumns = `c.id, c.start_time, c.end_time, c.status, c.message_id, c.owner_id, m.id, m.subject, m.letter_body`

func scanCampaign(row interface{ Scan(...any) error }) (*model.Campaign, error) {
	var c model.Campaign
	var end sql.NullTime
	err := row.Scan(
		&c.ID, &c.StartTime, &end, &c.Status, &c.MessageID, &c.OwnerID,
		&c.Message.ID, &c.Message.Subject, &c.Message.LetterBody,
	)
	if err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time
		c.EndTime = &t
	}
	return &c, nil
}

// GetStarted returns every campaign in status started, ordered by start time.
func (r *CampaignRepository) GetStarted(ctx context.Context) ([]*model.Campaign, error) {
	query := `
        SELECT ` + campaignColumns + `
        FROM campaigns c
        JOIN messages m ON m.id = c.message_id
        WHERE c.status = $1
        ORDER BY c.start_time, c.id
    `
	rows, err := r.DB.QueryContext(ctx, query, model.StatusStarted)
	if err != nil {
		return nil, fmt.Errorf("query started campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return campaigns, nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id int) (*model.Campaign, error) {
	query := `
        SELECT ` + campaignColumns + `
        FROM campaigns c
        JOIN messages m ON m.id = c.message_id
        WHERE c.id = $1
    `
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, fmt.Errorf("get campaign %d: %w", id, err)
	}
	return c, nil
}

// List returns campaigns, restricted to one owner when ownerID is set.
func (r *CampaignRepository) List(ctx context.Context, ownerID *int) ([]*model.Campaign, error) {
	q := r.sb.
		Select(campaignColumns).
		From("campaigns c").
		Join("messages m ON m.id = c.message_id").
		OrderBy("c.start_time ASC", "c.id ASC")
	if ownerID != nil {
		q = q.Where(sq.Eq{"c.owner_id": *ownerID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build campaign list: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query campaign list: %w", err)
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) UpdateStatus(ctx context.Context, campaignID int, status model.CampaignStatus) error {
	query := `UPDATE campaigns SET status=$1 WHERE id=$2`
	res, err := r.DB.ExecContext(ctx, query, status, campaignID)
	if err != nil {
		return fmt.Errorf("update campaign %d status: %w", campaignID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	return nil
}

// CountByOwner counts an owner's campaigns; an empty status counts all of them.
func (r *CampaignRepository) CountByOwner(ctx context.Context, ownerID int, status model.CampaignStatus) (int, error) {
	q := r.sb.Select("COUNT(*)").From("campaigns").Where(sq.Eq{"owner_id": ownerID})
	if status != "" {
		q = q.Where(sq.Eq{"status": status})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build campaign count: %w", err)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count campaigns: %w", err)
	}
	return total, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
