package rulecheck_test

import (
	"errors"
	"strings"
	"testing"

	"jobmate/trust-service/internal/model"
	"jobmate/trust-service/internal/rulecheck"
)

// ── Helpers ─────────────────────────────────────────────────────────────────

func rule(id string, rt model.RuleType, content string, action model.RuleAction, enabled bool) model.RiskRule {
	return model.RiskRule{ID: id, RuleType: rt, Content: content, Action: action, Enabled: enabled}
}

func posting(id, title, description, requirements string, status model.PostingStatus) model.Posting {
	return model.Posting{ID: id, Title: title, Description: description, Requirements: requirements, Status: status}
}

func jobInput(title, description, requirements string) rulecheck.CheckInput {
	return rulecheck.CheckInput{
		Content:      strings.Join([]string{title, description, requirements}, " "),
		ContextType:  rulecheck.ContextJob,
		Title:        title,
		Description:  description,
		Requirements: requirements,
	}
}

// ── Input validation and empty rule set ─────────────────────────────────────

func TestEvaluate_EmptyContentRejected(t *testing.T) {
	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := rulecheck.Evaluate(rulecheck.CheckInput{Content: content}, nil, nil)
		var ve *rulecheck.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("Evaluate(content=%q) error = %v, want ValidationError", content, err)
		}
	}
}

func TestEvaluate_NoRulesAlwaysPasses(t *testing.T) {
	v, err := rulecheck.Evaluate(rulecheck.CheckInput{Content: "anything at all"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Passed {
		t.Error("passed = false, want true with no rules")
	}
	if len(v.Matches) != 0 || len(v.Suggestions) != 0 || len(v.BlockedKeywords) != 0 {
		t.Errorf("verdict not empty: %+v", v)
	}
	if v.HasBlockRisk || v.HasMarkRisk {
		t.Error("risk flags set with no rules")
	}
}

func TestEvaluate_DisabledRulesIgnored(t *testing.T) {
	rules := []model.RiskRule{
		rule("r1", model.RuleSensitiveWord, "scam", model.ActionBlock, false),
	}
	v, err := rulecheck.Evaluate(rulecheck.CheckInput{Content: "obvious scam"}, rules, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Passed || len(v.Matches) != 0 {
		t.Errorf("disabled rule fired: %+v", v)
	}
}

// ── Sensitive words ─────────────────────────────────────────────────────────

func TestEvaluate_SensitiveWordBlock(t *testing.T) {
	rules := []model.RiskRule{
		rule("r1", model.RuleSensitiveWord, "scam|pyramid|fee upfront", model.ActionBlock, true),
	}
	v, err := rulecheck.Evaluate(rulecheck.CheckInput{Content: "join our pyramid scheme, small fee upfront"}, rules, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Passed {
		t.Error("passed = true, want false for a BLOCK match")
	}
	if !v.HasBlockRisk || v.HasMarkRisk {
		t.Errorf("risk flags = block:%v mark:%v", v.HasBlockRisk, v.HasMarkRisk)
	}
	if len(v.Matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(v.Matches))
	}
	if v.Matches[0].RuleID != "r1" || v.Matches[0].Action != model.ActionBlock {
		t.Errorf("match = %+v", v.Matches[0])
	}
	if len(v.Suggestions) == 0 || !strings.Contains(v.Suggestions[0], "pyramid") {
		t.Errorf("suggestions = %v, want matched keywords enumerated", v.Suggestions)
	}
	want := []string{"pyramid", "fee upfront"}
	if len(v.BlockedKeywords) != 2 || v.BlockedKeywords[0] != want[0] || v.BlockedKeywords[1] != want[1] {
		t.Errorf("blockedKeywords = %v, want %v", v.BlockedKeywords, want)
	}
}

func TestEvaluate_SensitiveWordMarkDoesNotBlock(t *testing.T) {
	rules := []model.RiskRule{
		rule("r1", model.RuleSensitiveWord, "crypto", model.ActionMark, true),
	}
	v, err := rulecheck.Evaluate(rulecheck.CheckInput{Content: "paid in crypto tokens"}, rules, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !v.Passed {
		t.Error("passed = false, want true for a MARK-only match")
	}
	if v.HasBlockRisk || !v.HasMarkRisk {
		t.Errorf("risk flags = block:%v mark:%v", v.HasBlockRisk, v.HasMarkRisk)
	}
	if len(v.Suggestions) == 0 {
		t.Error("suggestions empty, want priority-review notice")
	}
	if len(v.BlockedKeywords) != 0 {
		t.Errorf("blockedKeywords = %v, want empty for MARK", v.BlockedKeywords)
	}
}

func TestEvaluate_SensitiveWordCaseInsensitive(t *testing.T) {
	rules := []model.RiskRule{
		rule("r1", model.RuleSensitiveWord, "Ponzi", model.ActionBlock, true),
	}
	v, err := rulecheck.Evaluate(rulecheck.CheckInput{Content: "definitely not a PONZI operation"}, rules, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Passed {
		t.Error("case-insensitive match missed")
	}
	if len(v.BlockedKeywords) != 1 || v.BlockedKeywords[0] != "Ponzi" {
		t.Errorf("blockedKeywords = %v, want keyword as written in the rule", v.BlockedKeywords)
	}
}

func TestEvaluate_BlockedKeywordsDeduplicated(t *testing.T) {
	rules := []model.RiskRule{
		rule("r1", model.RuleSensitiveWord, "scam|fraud", model.ActionBlock, true),
		rule("r2", model.RuleSensitiveWord, "scam", model.ActionBlock, true),
	}
	v, err := rulecheck.Evaluate(rulecheck.CheckInput{Content: "total scam and fraud"}, rules, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Matches) != 2 {
		t.Errorf("matches = %d, want 2 (both rules fire)", len(v.Matches))
	}
	if len(v.BlockedKeywords) != 2 {
		t.Errorf("blockedKeywords = %v, want deduplicated [scam fraud]", v.BlockedKeywords)
	}
}

// MARK-rule keywords never reach the blocked list, even when the same
// submission is blocked by another rule.
func TestEvaluate_MarkKeywordsExcludedFromBlockedList(t *testing.T) {
	rules := []model.RiskRule{
		rule("r1", model.RuleSensitiveWord, "scam", model.ActionBlock, true),
		rule("r2", model.RuleSensitiveWord, "remote", model.ActionMark, true),
	}
	v, err := rulecheck.Evaluate(rulecheck.CheckInput{Content: "remote scam position"}, rules, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Passed {
		t.Error("passed = true, want false")
	}
	if !v.HasBlockRisk || !v.HasMarkRisk {
		t.Errorf("risk flags = block:%v mark:%v, want both", v.HasBlockRisk, v.HasMarkRisk)
	}
	if len(v.BlockedKeywords) != 1 || v.BlockedKeywords[0] != "scam" {
		t.Errorf("blockedKeywords = %v, want [scam]", v.BlockedKeywords)
	}
}

// ── Duplicate detection ─────────────────────────────────────────────────────

func TestEvaluate_DuplicateIdenticalPosting(t *testing.T) {
	rules := []model.RiskRule{
		rule("r1", model.RuleDuplicateDetection, "0.8", model.ActionMark, true),
	}
	in := jobInput("Senior Go Developer", "Build backend services for recruiting", "Five years writing Go")
	corpus := []model.Posting{
		posting("p1", "Senior Go Developer", "Build backend services for recruiting", "Five years writing Go", model.PostingApproved),
	}

	v, err := rulecheck.Evaluate(in, rules, corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(v.Matches))
	}
	if !strings.Contains(v.Matches[0].Matched, "100.0%") {
		t.Errorf("matched = %q, want 100.0%% similarity", v.Matches[0].Matched)
	}
	if !strings.Contains(v.Matches[0].Matched, "Senior Go Developer") {
		t.Errorf("matched = %q, want most-similar title cited", v.Matches[0].Matched)
	}
}

func TestEvaluate_DuplicateDisjointTextsNeverTrigger(t *testing.T) {
	rules := []model.RiskRule{
		rule("r1", model.RuleDuplicateDetection, "0.01", model.ActionBlock, true),
	}
	in := jobInput("Accountant", "Prepare ledgers", "Bookkeeping diploma")
	corpus := []model.Posting{
		posting("p1", "Welder", "Join metal parts", "Safety certificate", model.PostingApproved),
	}

	v, err := rulecheck.Evaluate(in, rules, corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Matches) != 0 || !v.Passed {
		t.Errorf("disjoint texts matched: %+v", v.Matches)
	}
}

// Every active duplicate rule fires on the same best match.
func TestEvaluate_DuplicateFiresAllActiveRules(t *testing.T) {
	rules := []model.RiskRule{
		rule("r1", model.RuleDuplicateDetection, "0.8", model.ActionMark, true),
		rule("r2", model.RuleDuplicateDetection, "0.9", model.ActionBlock, true),
	}
	in := jobInput("Data Engineer", "Maintain pipelines daily", "Spark experience required")
	corpus := []model.Posting{
		posting("p1", "Data Engineer", "Maintain pipelines daily", "Spark experience required", model.PostingPending),
	}

	v, err := rulecheck.Evaluate(in, rules, corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Matches) != 2 {
		t.Errorf("matches = %d, want one per active duplicate rule", len(v.Matches))
	}
	if v.Passed {
		t.Error("passed = true, want false (one rule is BLOCK)")
	}
}

func TestEvaluate_DuplicateUnparseableThresholdDefaults(t *testing.T) {
	rules := []model.RiskRule{
		rule("r1", model.RuleDuplicateDetection, "not-a-number", model.ActionMark, true),
	}
	in := jobInput("Chef", "Cook seasonal menus", "Culinary school")
	// Shares some tokens but well under the 0.8 default.
	corpus := []model.Posting{
		posting("p1", "Chef", "Wash dishes nightly", "None whatsoever", model.PostingApproved),
	}

	v, err := rulecheck.Evaluate(in, rules, corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Matches) != 0 {
		t.Errorf("matches = %+v, want none under default 0.8 threshold", v.Matches)
	}
}

func TestEvaluate_DuplicateSkipsOwnPosting(t *testing.T) {
	rules := []model.RiskRule{
		rule("r1", model.RuleDuplicateDetection, "0.8", model.ActionBlock, true),
	}
	in := jobInput("Designer", "Design marketing assets", "Portfolio required")
	in.ExcludeID = "p1"
	corpus := []model.Posting{
		posting("p1", "Designer", "Design marketing assets", "Portfolio required", model.PostingApproved),
	}

	v, err := rulecheck.Evaluate(in, rules, corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Matches) != 0 {
		t.Errorf("matched against own posting: %+v", v.Matches)
	}
}

func TestEvaluate_DuplicateIgnoresDraftAndOffline(t *testing.T) {
	rules := []model.RiskRule{
		rule("r1", model.RuleDuplicateDetection, "0.8", model.ActionBlock, true),
	}
	in := jobInput("Tester", "Test mobile apps", "ISTQB certification")
	corpus := []model.Posting{
		posting("p1", "Tester", "Test mobile apps", "ISTQB certification", model.PostingDraft),
		posting("p2", "Tester", "Test mobile apps", "ISTQB certification", model.PostingOffline),
		posting("p3", "Tester", "Test mobile apps", "ISTQB certification", model.PostingRejected),
	}

	v, err := rulecheck.Evaluate(in, rules, corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Matches) != 0 {
		t.Errorf("matched against non-live postings: %+v", v.Matches)
	}
}

func TestEvaluate_DuplicateOnlyInJobContext(t *testing.T) {
	rules := []model.RiskRule{
		rule("r1", model.RuleDuplicateDetection, "0.8", model.ActionBlock, true),
	}
	in := rulecheck.CheckInput{
		Content: "Tester Test mobile apps",
		Title:   "Tester", Description: "Test mobile apps", Requirements: "ISTQB certification",
	}
	corpus := []model.Posting{
		posting("p1", "Tester", "Test mobile apps", "ISTQB certification", model.PostingApproved),
	}

	v, err := rulecheck.Evaluate(in, rules, corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Matches) != 0 {
		t.Errorf("duplicate rule ran outside job context: %+v", v.Matches)
	}
}
