// Package model defines shared data structures for the trust service.
//
// Everything here mirrors tables owned by the wider platform. The trust
// service reads companies, job_reviews and job_postings and owns only
// risk_rules (admin CRUD).
package model

import (
	"fmt"
	"time"
)

// ─── Enums ───────────────────────────────────────────────────────────────────

// ReviewOutcome values mirror the review_outcome enum in PostgreSQL.
type ReviewOutcome string

const (
	OutcomeApproved ReviewOutcome = "APPROVED"
	OutcomeRejected ReviewOutcome = "REJECTED"
	OutcomePending  ReviewOutcome = "PENDING"
)

// PostingStatus values mirror the posting_status enum in PostgreSQL.
type PostingStatus string

const (
	PostingApproved PostingStatus = "APPROVED"
	PostingRejected PostingStatus = "REJECTED"
	PostingPending  PostingStatus = "PENDING"
	PostingDraft    PostingStatus = "DRAFT"
	PostingOffline  PostingStatus = "OFFLINE"
)

// RuleType selects how a RiskRule's content string is interpreted:
// a |-delimited keyword list for SENSITIVE_WORD, a float threshold for
// DUPLICATE_DETECTION, a JSON config for CONTENT_QUALITY.
type RuleType string

const (
	RuleSensitiveWord      RuleType = "SENSITIVE_WORD"
	RuleDuplicateDetection RuleType = "DUPLICATE_DETECTION"
	RuleContentQuality     RuleType = "CONTENT_QUALITY"
)

// RuleAction is what a matching rule does to the submission.
// MARK lets content through but flags it for priority human review;
// BLOCK prevents submission outright.
type RuleAction string

const (
	ActionBlock RuleAction = "BLOCK"
	ActionMark  RuleAction = "MARK"
)

// ParseRuleType converts a raw string to a RuleType, returning an error for
// unknown values.
func ParseRuleType(s string) (RuleType, error) {
	rt := RuleType(s)
	switch rt {
	case RuleSensitiveWord, RuleDuplicateDetection, RuleContentQuality:
		return rt, nil
	}
	return "", fmt.Errorf("unknown rule type %q", s)
}

// ParseRuleAction converts a raw string to a RuleAction, returning an error
// for unknown values.
func ParseRuleAction(s string) (RuleAction, error) {
	a := RuleAction(s)
	switch a {
	case ActionBlock, ActionMark:
		return a, nil
	}
	return "", fmt.Errorf("unknown rule action %q", s)
}

// ─── Records ─────────────────────────────────────────────────────────────────

// Company mirrors the companies table row relevant to trust scoring.
// Nullable profile columns are scanned with COALESCE; a missing field is the
// empty string.
type Company struct {
	ID            string
	Industry      string
	Scale         string
	Location      string
	Description   string
	Website       string
	ContactPerson string
	ContactPhone  string
	ContactEmail  string
	Verified      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Review is one historical moderation decision on a job posting.
// The history is append-only; the trust service never mutates it.
type Review struct {
	ID           string
	CompanyID    string
	JobID        string
	Outcome      ReviewOutcome
	DecidedAt    *time.Time // nil while the review is still pending
	JobCreatedAt time.Time
}

// Posting mirrors the job_postings row fields used for risk evaluation:
// the text body for duplicate comparison, the current status, and the
// high-risk flag.
type Posting struct {
	ID           string
	CompanyID    string
	Title        string
	Description  string
	Requirements string
	Status       PostingStatus
	IsHighRisk   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RiskRule is one entry of the mutable rule set evaluated on every
// submission. Content is opaque here; it is decoded per RuleType at
// evaluation time.
type RiskRule struct {
	ID        string     `json:"id"`
	RuleType  RuleType   `json:"ruleType"`
	Content   string     `json:"content"`
	Action    RuleAction `json:"action"`
	Enabled   bool       `json:"enabled"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
