package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/unclebandit/mailing-backend/internal/model"
)

// AttemptFilter narrows attempt queries. Nil fields are not applied.
type AttemptFilter struct {
	OwnerID    *int
	CampaignID *int
}

type AttemptRepositoryInterface interface {
	Record(ctx context.Context, campaignID, recipientID int, result model.AttemptResult, serverResponse string) (*model.Attempt, error)
	List(ctx context.Context, f AttemptFilter) ([]*model.Attempt, error)
	Stats(ctx context.Context, f AttemptFilter) (model.AttemptStats, error)
}

// AttemptRepository is the attempt ledger. It only ever inserts.
type AttemptRepository struct {
	DB *sql.DB
	sb sq.StatementBuilderType
}

func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{
		DB: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Record appends one attempt. attempt_time comes from the column default.
func (r *AttemptRepository) Record(ctx context.Context, campaignID, recipientID int, result model.AttemptResult, serverResponse string) (*model.Attempt, error) {
	var resp sql.NullString
	if serverResponse != "" {
		resp = sql.NullString{String: serverResponse, Valid: true}
	}
	var rid sql.NullInt64
	if recipientID > 0 {
		rid = sql.NullInt64{Int64: int64(recipientID), Valid: true}
	}

	query := `
        INSERT INTO attempts (result, server_response, campaign_id, recipient_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, attempt_time
    `
	a := &model.Attempt{
		Result:         result,
		ServerResponse: serverResponse,
		CampaignID:     campaignID,
	}
	if rid.Valid {
		id := recipientID
		a.RecipientID = &id
	}
	if err := r.DB.QueryRowContext(ctx, query, result, resp, campaignID, rid).Scan(&a.ID, &a.AttemptTime); err != nil {
		return nil, fmt.Errorf("insert attempt for campaign %d: %w", campaignID, err)
	}
	return a, nil
}

func (r *AttemptRepository) filtered(q sq.SelectBuilder, f AttemptFilter) sq.SelectBuilder {
	if f.OwnerID != nil {
		q = q.Join("campaigns c ON c.id = a.campaign_id").Where(sq.Eq{"c.owner_id": *f.OwnerID})
	}
	if f.CampaignID != nil {
		q = q.Where(sq.Eq{"a.campaign_id": *f.CampaignID})
	}
	return q
}

// List returns attempts oldest first.
func (r *AttemptRepository) List(ctx context.Context, f AttemptFilter) ([]*model.Attempt, error) {
	q := r.filtered(
		r.sb.Select("a.id", "a.attempt_time", "a.result", "COALESCE(a.server_response, '')", "a.campaign_id", "a.recipient_id").
			From("attempts a"),
		f,
	).OrderBy("a.attempt_time ASC", "a.id ASC")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build attempt list: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []*model.Attempt{}
	for rows.Next() {
		var a model.Attempt
		var rid sql.NullInt64
		if err := rows.Scan(&a.ID, &a.AttemptTime, &a.Result, &a.ServerResponse, &a.CampaignID, &rid); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if rid.Valid {
			id := int(rid.Int64)
			a.RecipientID = &id
		}
		attempts = append(attempts, &a)
	}
	return attempts, rows.Err()
}

func (r *AttemptRepository) Stats(ctx context.Context, f AttemptFilter) (model.AttemptStats, error) {
	q := r.filtered(
		r.sb.Select("a.result", "COUNT(*)").From("attempts a"),
		f,
	).GroupBy("a.result")

	var stats model.AttemptStats
	query, args, err := q.ToSql()
	if err != nil {
		return stats, fmt.Errorf("build attempt stats: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return stats, fmt.Errorf("query attempt stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result model.AttemptResult
		var count int
		if err := rows.Scan(&result, &count); err != nil {
			return stats, fmt.Errorf("scan attempt stats: %w", err)
		}
		switch result {
		case model.ResultSuccessful:
			stats.Successful = count
		case model.ResultFailed:
			stats.Failed = count
		}
		stats.Total += count
	}
	return stats, rows.Err()
}

var _ AttemptRepositoryInterface = (*AttemptRepository)(nil)
