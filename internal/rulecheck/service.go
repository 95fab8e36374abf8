// Service layer: loads the enabled rule set and the duplicate-comparison
// corpus from PostgreSQL, evaluates submissions with the pure engine, and
// owns the risk_rules CRUD used by the admin surface.
package rulecheck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"jobmate/trust-service/internal/model"
)

// Service encapsulates content checking and rule administration.
type Service struct {
	pool        *pgxpool.Pool
	rdb         *redis.Client
	corpusLimit int
}

// NewService returns a configured Service. corpusLimit bounds the number of
// postings fetched for duplicate comparison.
func NewService(pool *pgxpool.Pool, rdb *redis.Client, corpusLimit int) *Service {
	if corpusLimit < 1 {
		corpusLimit = maxCorpusPostings
	}
	return &Service{pool: pool, rdb: rdb, corpusLimit: corpusLimit}
}

// ErrRuleNotFound is returned when a risk rule is missing.
var ErrRuleNotFound = fmt.Errorf("risk rule not found")

// CheckContent evaluates one submission against the currently enabled rule
// set. The corpus is only fetched when a duplicate rule could fire.
// Mark-risk verdicts publish EVENT_CONTENT_MARKED so reviewers get a
// priority queue signal (non-fatal).
func (s *Service) CheckContent(ctx context.Context, in CheckInput) (*Verdict, error) {
	rules, err := s.loadEnabledRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	var corpus []model.Posting
	if in.ContextType == ContextJob && hasRuleType(rules, model.RuleDuplicateDetection) {
		corpus, err = s.loadCorpus(ctx, in.ExcludeID)
		if err != nil {
			return nil, fmt.Errorf("load corpus: %w", err)
		}
	}

	verdict, err := Evaluate(in, rules, corpus)
	if err != nil {
		return nil, err
	}

	if verdict.HasMarkRisk {
		event, _ := json.Marshal(map[string]any{
			"type":    "EVENT_CONTENT_MARKED",
			"jobId":   in.ExcludeID,
			"matches": len(verdict.Matches),
		})
		if err := s.rdb.Publish(ctx, "EVENT_CONTENT_MARKED", event).Err(); err != nil {
			slog.Warn("publish EVENT_CONTENT_MARKED failed", "err", err)
		}
	}

	return verdict, nil
}

func hasRuleType(rules []model.RiskRule, rt model.RuleType) bool {
	for _, r := range rules {
		if r.Enabled && r.RuleType == rt {
			return true
		}
	}
	return false
}

func (s *Service) loadEnabledRules(ctx context.Context) ([]model.RiskRule, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, rule_type, content, action, enabled, created_at, updated_at
		 FROM risk_rules
		 WHERE enabled = true`,
	)
	if err != nil {
		return nil, fmt.Errorf("query risk_rules: %w", err)
	}
	defer rows.Close()

	var rules []model.RiskRule
	for rows.Next() {
		var r model.RiskRule
		if err := rows.Scan(&r.ID, &r.RuleType, &r.Content, &r.Action, &r.Enabled, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan risk_rules: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// loadCorpus fetches the newest live postings (approved or pending review)
// for duplicate comparison, excluding the submitter's own posting.
func (s *Service) loadCorpus(ctx context.Context, excludeID string) ([]model.Posting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, COALESCE(title, ''), COALESCE(description, ''), COALESCE(requirements, ''),
		        status, is_high_risk, created_at, updated_at
		 FROM job_postings
		 WHERE status IN ('APPROVED', 'PENDING')
		   AND id::text <> $1
		 ORDER BY updated_at DESC
		 LIMIT $2`,
		excludeID, s.corpusLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("query job_postings: %w", err)
	}
	defer rows.Close()

	var postings []model.Posting
	for rows.Next() {
		var p model.Posting
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Title, &p.Description, &p.Requirements,
			&p.Status, &p.IsHighRisk, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan job_postings: %w", err)
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// ─── Rule administration ─────────────────────────────────────────────────────

// ListRules returns all risk rules, newest first.
func (s *Service) ListRules(ctx context.Context) ([]model.RiskRule, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, rule_type, content, action, enabled, created_at, updated_at
		 FROM risk_rules
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query risk_rules: %w", err)
	}
	defer rows.Close()

	rules := make([]model.RiskRule, 0)
	for rows.Next() {
		var r model.RiskRule
		if err := rows.Scan(&r.ID, &r.RuleType, &r.Content, &r.Action, &r.Enabled, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan risk_rules: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// CreateRule inserts a new rule and returns it with its timestamps.
func (s *Service) CreateRule(ctx context.Context, rule model.RiskRule) (*model.RiskRule, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO risk_rules (id, rule_type, content, action, enabled)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		rule.ID, rule.RuleType, rule.Content, rule.Action, rule.Enabled,
	).Scan(&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert risk_rule: %w", err)
	}
	return &rule, nil
}

// UpdateRule replaces every mutable field of an existing rule.
func (s *Service) UpdateRule(ctx context.Context, rule model.RiskRule) (*model.RiskRule, error) {
	err := s.pool.QueryRow(ctx,
		`UPDATE risk_rules
		 SET rule_type = $1, content = $2, action = $3, enabled = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING created_at, updated_at`,
		rule.RuleType, rule.Content, rule.Action, rule.Enabled, rule.ID,
	).Scan(&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, ErrRuleNotFound
	}
	return &rule, nil
}

// DeleteRule removes a rule by ID.
func (s *Service) DeleteRule(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM risk_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete risk_rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}
