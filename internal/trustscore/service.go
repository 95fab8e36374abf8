// Service layer: loads one company's history snapshot from PostgreSQL and
// runs the pure calculator over it. Transport-agnostic, like the tracker's
// kanban service.
package trustscore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/trust-service/internal/model"
)

// Service encapsulates trust score computation over stored history.
type Service struct {
	pool *pgxpool.Pool
}

// NewService returns a configured Service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// ErrNotFound is returned when no company exists for the given ID.
var ErrNotFound = fmt.Errorf("company not found")

// CompanyRiskScore recomputes the trust score for one company from its
// current history. Safe to call concurrently; nothing is written.
func (s *Service) CompanyRiskScore(ctx context.Context, companyID string) (*Result, error) {
	in, err := s.loadInput(ctx, companyID)
	if err != nil {
		return nil, err
	}
	res := Calculate(*in, time.Now().UTC())
	return &res, nil
}

// loadInput fetches the company profile, its review history and its
// postings in one consistent read.
func (s *Service) loadInput(ctx context.Context, companyID string) (*Input, error) {
	var c model.Company
	err := s.pool.QueryRow(ctx,
		`SELECT id,
		        COALESCE(industry, ''), COALESCE(scale, ''), COALESCE(location, ''),
		        COALESCE(description, ''), COALESCE(website, ''),
		        COALESCE(contact_person, ''), COALESCE(contact_phone, ''), COALESCE(contact_email, ''),
		        verified, created_at, updated_at
		 FROM companies
		 WHERE id = $1`,
		companyID,
	).Scan(
		&c.ID, &c.Industry, &c.Scale, &c.Location,
		&c.Description, &c.Website,
		&c.ContactPerson, &c.ContactPhone, &c.ContactEmail,
		&c.Verified, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, ErrNotFound
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, COALESCE(job_id::text, ''), outcome, decided_at, job_created_at
		 FROM job_reviews
		 WHERE company_id = $1`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("query job_reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var r model.Review
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.JobID, &r.Outcome, &r.DecidedAt, &r.JobCreatedAt); err != nil {
			return nil, fmt.Errorf("scan job_reviews: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("job_reviews rows: %w", err)
	}

	prows, err := s.pool.Query(ctx,
		`SELECT id, company_id, COALESCE(title, ''), COALESCE(description, ''), COALESCE(requirements, ''),
		        status, is_high_risk, created_at, updated_at
		 FROM job_postings
		 WHERE company_id = $1`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("query job_postings: %w", err)
	}
	defer prows.Close()

	var postings []model.Posting
	for prows.Next() {
		var p model.Posting
		if err := prows.Scan(&p.ID, &p.CompanyID, &p.Title, &p.Description, &p.Requirements,
			&p.Status, &p.IsHighRisk, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan job_postings: %w", err)
		}
		postings = append(postings, p)
	}
	if err := prows.Err(); err != nil {
		return nil, fmt.Errorf("job_postings rows: %w", err)
	}

	return &Input{Company: c, Reviews: reviews, Postings: postings}, nil
}
