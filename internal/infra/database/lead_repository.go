package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

const leadColumns = `id, first_name, last_name, email, phone, buyer_type, lead_source,
	timeline, budget, message,
	utm_source, utm_medium, utm_campaign, utm_term, utm_content, referrer, landing_page,
	status, is_paid, created_at`

// Grouping is restricted to these columns; anything else is rejected before it reaches SQL.
var countableColumns = map[string]bool{
	"lead_source":  true,
	"buyer_type":   true,
	"status":       true,
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"landing_page": true,
}

type LeadRepository struct {
	DB *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES (:id, :first_name, :last_name, :email, :phone, :buyer_type, :lead_source,
			:timeline, :budget, :message,
			:utm_source, :utm_medium, :utm_campaign, :utm_term, :utm_content, :referrer, :landing_page,
			:status, :is_paid, :created_at)
	`
	if _, err := r.DB.NamedExecContext(ctx, query, lead); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if !validID(id) {
		return nil, entity.ErrLeadNotFound
	}
	var lead entity.Lead
	query := r.DB.Rebind(`SELECT ` + leadColumns + ` FROM leads WHERE id = ?`)

	err := r.DB.GetContext(ctx, &lead, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select lead: %w", err)
	}
	return &lead, nil
}

// List returns leads newest first.
func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	leads := []entity.Lead{}
	if err := r.DB.SelectContext(ctx, &leads, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

// UpdateStatus only writes when the row still holds from, so two operators racing on
// the same lead cannot both win.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, from, to entity.LeadStatus) error {
	if !validID(id) {
		return entity.ErrLeadNotFound
	}
	query := r.DB.Rebind(`UPDATE leads SET status = ? WHERE id = ? AND status = ?`)
	res, err := r.DB.ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if n > 0 {
		return nil
	}

	var current string
	err = r.DB.GetContext(ctx, &current, r.DB.Rebind(`SELECT status FROM leads WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrLeadNotFound
	}
	if err != nil {
		return fmt.Errorf("select lead status: %w", err)
	}
	return entity.ErrInvalidStatusTransition
}

func (r *LeadRepository) MarkPaid(ctx context.Context, id string) error {
	query := r.DB.Rebind(`UPDATE leads SET is_paid = ? WHERE id = ?`)
	return r.execOne(ctx, query, true, id)
}

// CountBy groups leads by one attribution or classification column. Absent values are
// reported under an empty key.
func (r *LeadRepository) CountBy(ctx context.Context, column string) ([]entity.CountBucket, error) {
	if !countableColumns[column] {
		return nil, fmt.Errorf("column %q cannot be grouped", column)
	}
	query := fmt.Sprintf(`
		SELECT COALESCE(%[1]s, '') AS "key", COUNT(*) AS "count"
		FROM leads
		GROUP BY COALESCE(%[1]s, '')
		ORDER BY "count" DESC, "key"
	`, column)

	buckets := []entity.CountBucket{}
	if err := r.DB.SelectContext(ctx, &buckets, query); err != nil {
		return nil, fmt.Errorf("count leads by %s: %w", column, err)
	}
	return buckets, nil
}

func (r *LeadRepository) execOne(ctx context.Context, query string, args ...any) error {
	if !validID(args[len(args)-1].(string)) {
		return entity.ErrLeadNotFound
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

// Ids are UUIDs; anything else cannot exist and would make postgres reject the cast.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
