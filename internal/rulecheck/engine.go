package rulecheck

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"jobmate/trust-service/internal/model"
)

// ContextJob enables the job-only rule types (duplicate detection and
// content quality) on top of the sensitive-word scan.
const ContextJob = "job"

// maxCorpusPostings bounds the duplicate comparison, trading exhaustive
// search for predictable cost.
const maxCorpusPostings = 100

// CheckInput is one submission to evaluate.
type CheckInput struct {
	Content      string
	ContextType  string
	Title        string
	Description  string
	Requirements string
	ExcludeID    string // the submitter's own posting, skipped in duplicate comparison
}

// Match is a single rule hit.
type Match struct {
	RuleID   string           `json:"ruleId"`
	RuleType model.RuleType   `json:"ruleType"`
	Matched  string           `json:"matched"`
	Action   model.RuleAction `json:"action"`
}

// Verdict is the gating decision for one submission. Only BLOCK matches
// fail the submission; MARK matches let it through flagged for priority
// review.
type Verdict struct {
	Passed          bool
	Matches         []Match
	Suggestions     []string
	HasBlockRisk    bool
	HasMarkRisk     bool
	BlockedKeywords []string
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Evaluate checks one submission against every enabled rule. Pure: rules
// and corpus are snapshots supplied by the caller, and nothing is written.
// An empty rule set always passes; a rule that cannot be interpreted has no
// effect rather than blocking.
func Evaluate(in CheckInput, rules []model.RiskRule, corpus []model.Posting) (*Verdict, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, &ValidationError{Msg: "content must not be empty"}
	}

	v := &Verdict{
		Matches:         make([]Match, 0),
		Suggestions:     make([]string, 0),
		BlockedKeywords: make([]string, 0),
	}

	var sensitive, duplicate, quality []model.RiskRule
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		switch r.RuleType {
		case model.RuleSensitiveWord:
			sensitive = append(sensitive, r)
		case model.RuleDuplicateDetection:
			duplicate = append(duplicate, r)
		case model.RuleContentQuality:
			quality = append(quality, r)
		}
	}

	evalSensitiveWords(v, in, sensitive)
	if in.ContextType == ContextJob {
		evalDuplicates(v, in, duplicate, corpus)
		evalQuality(v, in, quality)
	}

	for _, m := range v.Matches {
		switch m.Action {
		case model.ActionBlock:
			v.HasBlockRisk = true
		case model.ActionMark:
			v.HasMarkRisk = true
		}
	}
	v.Passed = !v.HasBlockRisk
	return v, nil
}

// evalSensitiveWords scans the content for each rule's keywords
// (case-insensitive substring, like the discovery service's red-flag
// filter). Matched keywords are reported as written in the rule.
func evalSensitiveWords(v *Verdict, in CheckInput, rules []model.RiskRule) {
	lower := strings.ToLower(in.Content)
	blockedSeen := make(map[string]struct{})

	for _, r := range rules {
		var matched []string
		for _, kw := range splitKeywords(r.Content) {
			if strings.Contains(lower, strings.ToLower(kw)) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}

		v.Matches = append(v.Matches, Match{
			RuleID:   r.ID,
			RuleType: r.RuleType,
			Matched:  "sensitive words detected: " + strings.Join(matched, ", "),
			Action:   r.Action,
		})

		if r.Action == model.ActionBlock {
			v.Suggestions = append(v.Suggestions,
				fmt.Sprintf("content contains blocked keywords: %s. Remove them and resubmit.", strings.Join(matched, ", ")))
			for _, kw := range matched {
				if _, ok := blockedSeen[kw]; ok {
					continue
				}
				blockedSeen[kw] = struct{}{}
				v.BlockedKeywords = append(v.BlockedKeywords, kw)
			}
		} else {
			v.Suggestions = append(v.Suggestions,
				"content is marked as high risk and will be queued for priority review; it is not blocked")
		}
	}
}

// evalDuplicates compares the submission text against the corpus of live
// postings and fires every active duplicate rule when the best Jaccard
// similarity meets the threshold. The scan always runs to completion: a
// partial scan would silently under-detect duplicates.
func evalDuplicates(v *Verdict, in CheckInput, rules []model.RiskRule, corpus []model.Posting) {
	if len(rules) == 0 {
		return
	}
	threshold := parseThreshold(rules[0].Content)
	candidate := tokenize(combineText(in.Title, in.Description, in.Requirements))

	if len(corpus) > maxCorpusPostings {
		corpus = corpus[:maxCorpusPostings]
	}

	best := 0.0
	bestTitle := ""
	for _, p := range corpus {
		if p.ID == in.ExcludeID {
			continue
		}
		if p.Status != model.PostingApproved && p.Status != model.PostingPending {
			continue
		}
		sim := jaccard(candidate, tokenize(combineText(p.Title, p.Description, p.Requirements)))
		if sim > best {
			best = sim
			bestTitle = p.Title
		}
	}
	if best < threshold {
		return
	}

	desc := fmt.Sprintf("content is %.1f%% similar to existing posting %q", best*100, bestTitle)
	for _, r := range rules {
		v.Matches = append(v.Matches, Match{RuleID: r.ID, RuleType: r.RuleType, Matched: desc, Action: r.Action})
	}
	v.Suggestions = append(v.Suggestions,
		fmt.Sprintf("revise the posting so it is clearly distinguishable from %q", bestTitle))
}

// evalQuality checks the structured fields against the first active rule's
// config and fires every active quality rule with the combined issue list.
func evalQuality(v *Verdict, in CheckInput, rules []model.RiskRule) {
	if len(rules) == 0 {
		return
	}
	cfg := parseQualityConfig(rules[0].Content)

	descLen := utf8.RuneCountInString(in.Description)
	reqLen := utf8.RuneCountInString(in.Requirements)
	totalLen := utf8.RuneCountInString(in.Title) + descLen + reqLen

	var issues []string
	if strings.TrimSpace(in.Description) == "" {
		if cfg.RequireDescription {
			issues = append(issues, "job description is required")
		}
	} else if descLen < cfg.MinDescriptionLength {
		issues = append(issues, fmt.Sprintf("job description is too short (minimum %d characters)", cfg.MinDescriptionLength))
	}
	if strings.TrimSpace(in.Requirements) == "" {
		if cfg.RequireRequirements {
			issues = append(issues, "job requirements are required")
		}
	} else if reqLen < cfg.MinRequirementsLength {
		issues = append(issues, fmt.Sprintf("job requirements are too short (minimum %d characters)", cfg.MinRequirementsLength))
	}
	if totalLen < cfg.MinLength {
		issues = append(issues, fmt.Sprintf("overall content is too short (minimum %d characters)", cfg.MinLength))
	}
	if len(issues) == 0 {
		return
	}

	desc := strings.Join(issues, "；")
	for _, r := range rules {
		v.Matches = append(v.Matches, Match{RuleID: r.ID, RuleType: r.RuleType, Matched: desc, Action: r.Action})
	}
	v.Suggestions = append(v.Suggestions, issues...)
}

// combineText joins the non-blank parts with single spaces.
func combineText(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
