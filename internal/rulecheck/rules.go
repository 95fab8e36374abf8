// Package rulecheck evaluates submitted job content against the mutable
// risk rule set and returns a gating verdict: pass, block, or mark for
// priority human review.
//
// Rule content is an opaque string in storage; this file decodes it per
// rule type (keyword list, similarity threshold, quality config). Decoding
// never fails hard: a malformed config degrades to documented defaults so
// an admin typo cannot take down the submission pipeline.
package rulecheck

import (
	"encoding/json"
	"strconv"
	"strings"
)

// defaultSimilarityThreshold applies when a DUPLICATE_DETECTION rule
// carries no parseable threshold.
const defaultSimilarityThreshold = 0.8

// QualityConfig is the decoded CONTENT_QUALITY rule configuration.
// Lengths are rune counts over the submitted text.
type QualityConfig struct {
	MinLength             int  `json:"minLength"`
	MinDescriptionLength  int  `json:"minDescriptionLength"`
	MinRequirementsLength int  `json:"minRequirementsLength"`
	RequireDescription    bool `json:"requireDescription"`
	RequireRequirements   bool `json:"requireRequirements"`
}

func defaultQualityConfig() QualityConfig {
	return QualityConfig{
		MinLength:             50,
		MinDescriptionLength:  30,
		MinRequirementsLength: 20,
		RequireDescription:    true,
		RequireRequirements:   true,
	}
}

// parseQualityConfig decodes rule content over the defaults, so keys absent
// from valid JSON keep their default values. Malformed JSON falls back to
// the full defaults.
func parseQualityConfig(content string) QualityConfig {
	cfg := defaultQualityConfig()
	if strings.TrimSpace(content) == "" {
		return cfg
	}
	if err := json.Unmarshal([]byte(content), &cfg); err != nil {
		return defaultQualityConfig()
	}
	return cfg
}

// parseThreshold reads a DUPLICATE_DETECTION rule's similarity threshold.
func parseThreshold(content string) float64 {
	t, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil {
		return defaultSimilarityThreshold
	}
	return t
}

// splitKeywords splits a SENSITIVE_WORD rule's |-delimited keyword list,
// trimming whitespace and dropping empty entries.
func splitKeywords(content string) []string {
	parts := strings.Split(content, "|")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if kw := strings.TrimSpace(p); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
