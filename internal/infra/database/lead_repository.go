package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/workdora/waitlist/internal/entity"
)

const uniqueViolation = "23505"

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, email, name, phone, job_title, organization, tools_used,
	desired_changes, referral_code, referred_by, utm_source, utm_campaign,
	referrer, status, email_stage, last_email_sent_at, created_at, updated_at`

// Upsert keeps the first referral code and referrer an email was given. Optional
// answers are refreshed when the visitor submits again.
func (r *LeadRepository) Upsert(ctx context.Context, lead *entity.Lead) (bool, error) {
	query := `
		INSERT INTO leads (id, email, name, phone, job_title, organization, tools_used,
			desired_changes, referral_code, referred_by, utm_source, utm_campaign,
			referrer, status, email_stage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		ON CONFLICT (email)
		DO UPDATE SET
			name = EXCLUDED.name,
			phone = COALESCE(EXCLUDED.phone, leads.phone),
			job_title = COALESCE(EXCLUDED.job_title, leads.job_title),
			organization = COALESCE(EXCLUDED.organization, leads.organization),
			tools_used = EXCLUDED.tools_used,
			desired_changes = COALESCE(EXCLUDED.desired_changes, leads.desired_changes),
			updated_at = NOW()
		RETURNING ` + leadColumns + `, (xmax = 0) AS inserted
	`

	tools := lead.ToolsUsed
	if tools == nil {
		tools = []string{}
	}

	row := r.DB.QueryRowContext(ctx, query,
		lead.ID,
		lead.Email,
		lead.Name,
		nullString(lead.Phone),
		nullString(lead.JobTitle),
		nullString(lead.Organization),
		pq.Array(tools),
		nullString(lead.DesiredChanges),
		lead.ReferralCode,
		nullString(lead.ReferredBy),
		nullString(lead.UTMSource),
		nullString(lead.UTMCampaign),
		nullString(lead.Referrer),
		lead.Status,
		lead.EmailStage,
	)

	var inserted bool
	if err := scanLead(row, lead, &inserted); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == "leads_referral_code_key" {
			return false, entity.ErrReferralCodeTaken
		}
		return false, fmt.Errorf("upsert lead: %w", err)
	}
	return inserted, nil
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) FindByReferralCode(ctx context.Context, code string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE referral_code = $1`, code)

	var lead entity.Lead
	if err := scanLead(row, &lead, nil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrReferralNotFound
		}
		return nil, fmt.Errorf("find lead by referral code: %w", err)
	}
	return &lead, nil
}

func (r *LeadRepository) CountReferrals(ctx context.Context, code string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads WHERE referred_by = $1`, code).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count referrals: %w", err)
	}
	return n, nil
}

func (r *LeadRepository) FindDueForReminder(ctx context.Context, stage int, sentBefore time.Time, limit int) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + `
		FROM leads
		WHERE email_stage = $1
			AND last_email_sent_at IS NOT NULL
			AND last_email_sent_at < $2
		ORDER BY last_email_sent_at
		LIMIT $3`

	rows, err := r.DB.QueryContext(ctx, query, stage, sentBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("find leads due for reminder: %w", err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		var lead entity.Lead
		if err := scanLead(rows, &lead, nil); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, &lead)
	}
	return leads, rows.Err()
}

// MarkEmailSent only moves the stage forward.
func (r *LeadRepository) MarkEmailSent(ctx context.Context, id string, stage int, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads
		SET email_stage = $2, last_email_sent_at = $3, updated_at = NOW()
		WHERE id = $1 AND email_stage < $2`, id, stage, at)
	if err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

// Ping is used by the health handler.
func (r *LeadRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(s scanner, lead *entity.Lead, inserted *bool) error {
	var (
		phone, jobTitle, org, changes, referredBy sql.NullString
		utmSource, utmCampaign, referrer          sql.NullString
		lastSent                                  sql.NullTime
		tools                                     pq.StringArray
	)

	dest := []any{
		&lead.ID, &lead.Email, &lead.Name, &phone, &jobTitle, &org, &tools,
		&changes, &lead.ReferralCode, &referredBy, &utmSource, &utmCampaign,
		&referrer, &lead.Status, &lead.EmailStage, &lastSent, &lead.CreatedAt, &lead.UpdatedAt,
	}
	if inserted != nil {
		dest = append(dest, inserted)
	}
	if err := s.Scan(dest...); err != nil {
		return err
	}

	lead.Phone = phone.String
	lead.JobTitle = jobTitle.String
	lead.Organization = org.String
	lead.DesiredChanges = changes.String
	lead.ReferredBy = referredBy.String
	lead.UTMSource = utmSource.String
	lead.UTMCampaign = utmCampaign.String
	lead.Referrer = referrer.String
	lead.ToolsUsed = []string(tools)
	lead.LastEmailSentAt = nil
	if lastSent.Valid {
		t := lastSent.Time
		lead.LastEmailSentAt = &t
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
