// Package trustscore derives a company's 0-100 trust score from its stored
// history: profile completeness, past review outcomes and flagged postings.
//
// Calculate is a pure function over a snapshot of that history. Nothing is
// cached or persisted; every caller gets a score recomputed from the
// source-of-truth records, and the clock is always injected so results are
// reproducible.
package trustscore

import (
	"fmt"
	"math"
	"strings"
	"time"

	"jobmate/trust-service/internal/model"
)

// Level buckets the final score for callers that only need a traffic light.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Factor is one itemized adjustment applied to the running score.
// Score is the signed delta: negative for deductions, positive for bonuses.
type Factor struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Result is the full explainable outcome of one score computation.
type Result struct {
	Level   Level
	Score   float64
	Message string
	Factors []Factor
}

// Input is the complete history snapshot for one company.
type Input struct {
	Company  model.Company
	Reviews  []model.Review
	Postings []model.Posting
}

const (
	importantFieldPenalty = 4
	normalFieldPenalty    = 2

	rejectionBasePenalty = 5.0
	rejectionDecayRate   = 0.7
	rejectionDecayFloor  = 0.1
	rejectionTotalCap    = 30.0

	flaggedPostingPenalty = 3
	flaggedPostingCap     = 15

	highRejectionRateCut = 20.0
	midRejectionRateCut  = 10.0

	unverifiedPenalty = 8.0
	verifiedBonusCap  = 10.0

	recentRejectionPenalty = 4.0
	recentRejectionCap     = 20.0

	remediatedPostingBonus = 2
	remediatedBonusCap     = 10.0

	cleanStreakBonus      = 5.0
	completedProfileBonus = 5.0
	newCompanyPenalty     = 5.0

	// recentWindow bounds every "recent" check: rejections, remediation
	// re-approvals, profile edits and company age.
	recentWindow = 30 * 24 * time.Hour
)

type profileField struct {
	name      string
	value     string
	important bool
}

// profileFields lists the optional profile fields in deduction order.
// Contact fields are "important" (4 points each), the rest cost 2.
func profileFields(c model.Company) []profileField {
	return []profileField{
		{"contact person", c.ContactPerson, true},
		{"contact phone", c.ContactPhone, true},
		{"contact email", c.ContactEmail, true},
		{"industry", c.Industry, false},
		{"scale", c.Scale, false},
		{"location", c.Location, false},
		{"description", c.Description, false},
		{"website", c.Website, false},
	}
}

// Calculate scores one company at the given instant.
//
// The steps run as a strictly sequential fold over a running total: the
// verification and remediation bonuses clamp against the score accumulated
// so far, so reordering the steps changes results.
func Calculate(in Input, now time.Time) Result {
	score := 100.0
	factors := make([]Factor, 0, 8)

	// 1. Profile completeness.
	var missing []string
	completenessCut := 0
	for _, f := range profileFields(in.Company) {
		if strings.TrimSpace(f.value) != "" {
			continue
		}
		missing = append(missing, f.name)
		if f.important {
			completenessCut += importantFieldPenalty
		} else {
			completenessCut += normalFieldPenalty
		}
	}
	if completenessCut > 0 {
		score -= float64(completenessCut)
		factors = append(factors, Factor{
			Type:        "profile_incomplete",
			Description: "missing profile fields: " + strings.Join(missing, ", "),
			Score:       -float64(completenessCut),
		})
	}

	// 2. Historical rejections, decayed by elapsed quarters. Verified
	// companies pay a halved (rounded-up) base per rejection.
	var decayedTotal float64
	rejections := 0
	for _, r := range in.Reviews {
		if r.Outcome != model.OutcomeRejected || r.DecidedAt == nil {
			continue
		}
		rejections++
		days := now.Sub(*r.DecidedAt).Hours() / 24
		decay := math.Pow(rejectionDecayRate, math.Floor(days/90))
		if decay < rejectionDecayFloor {
			decay = rejectionDecayFloor
		}
		base := rejectionBasePenalty
		if in.Company.Verified {
			base = math.Ceil(base / 2)
		}
		decayedTotal += base * decay
	}
	if decayedTotal > 0 {
		if decayedTotal > rejectionTotalCap {
			decayedTotal = rejectionTotalCap
		}
		decayedTotal = round1(decayedTotal)
		score -= decayedTotal
		factors = append(factors, Factor{
			Type:        "rejection_history",
			Description: fmt.Sprintf("%d rejected posting review(s), weighted by age", rejections),
			Score:       -decayedTotal,
		})
	}

	// 3. Postings currently flagged high-risk.
	flagged := 0
	for _, p := range in.Postings {
		if p.IsHighRisk {
			flagged++
		}
	}
	if flagged > 0 {
		cut := float64(flagged * flaggedPostingPenalty)
		if cut > flaggedPostingCap {
			cut = flaggedPostingCap
		}
		score -= cut
		factors = append(factors, Factor{
			Type:        "flagged_postings",
			Description: fmt.Sprintf("%d posting(s) currently flagged high-risk", flagged),
			Score:       -cut,
		})
	}

	// 4. Rejection rate over postings that reached a moderation verdict.
	// This intentionally overlaps with step 2: the same bad history is
	// penalized once as a decayed absolute count and once as a ratio.
	submitted, rejectedNow := 0, 0
	for _, p := range in.Postings {
		switch p.Status {
		case model.PostingApproved:
			submitted++
		case model.PostingRejected:
			submitted++
			rejectedNow++
		}
	}
	if submitted > 0 {
		rate := float64(rejectedNow) / float64(submitted)
		switch {
		case rate > 0.5:
			score -= highRejectionRateCut
			factors = append(factors, Factor{
				Type:        "rejection_rate",
				Description: fmt.Sprintf("rejection rate %.0f%% exceeds 50%%", rate*100),
				Score:       -highRejectionRateCut,
			})
		case rate > 0.3:
			score -= midRejectionRateCut
			factors = append(factors, Factor{
				Type:        "rejection_rate",
				Description: fmt.Sprintf("rejection rate %.0f%% exceeds 30%%", rate*100),
				Score:       -midRejectionRateCut,
			})
		}
	}

	// 5. Verification. The bonus never pushes the running score above 100.
	if !in.Company.Verified {
		score -= unverifiedPenalty
		factors = append(factors, Factor{
			Type:        "unverified",
			Description: "company identity is not verified",
			Score:       -unverifiedPenalty,
		})
	} else if bonus := math.Min(verifiedBonusCap, 100-score); bonus > 0 {
		score += bonus
		factors = append(factors, Factor{
			Type:        "verified",
			Description: "company identity is verified",
			Score:       bonus,
		})
	}

	// 6. Rejections inside the recent window, on top of step 2's long-horizon
	// decay. Both fire for the same fresh rejection on purpose.
	recent := 0
	for _, r := range in.Reviews {
		if r.Outcome == model.OutcomeRejected && r.DecidedAt != nil && now.Sub(*r.DecidedAt) <= recentWindow {
			recent++
		}
	}
	if recent > 0 {
		cut := float64(recent) * recentRejectionPenalty
		if in.Company.Verified {
			cut = math.Ceil(cut / 2)
		}
		if cut > recentRejectionCap {
			cut = recentRejectionCap
		}
		score -= cut
		factors = append(factors, Factor{
			Type:        "recent_rejections",
			Description: fmt.Sprintf("%d rejection(s) in the last 30 days", recent),
			Score:       -cut,
		})
	}

	// 7. Remediation: postings re-approved recently that are no longer
	// flagged high-risk.
	postingByID := make(map[string]model.Posting, len(in.Postings))
	for _, p := range in.Postings {
		postingByID[p.ID] = p
	}
	remediated := make(map[string]struct{})
	for _, r := range in.Reviews {
		if r.Outcome != model.OutcomeApproved || r.DecidedAt == nil || now.Sub(*r.DecidedAt) > recentWindow {
			continue
		}
		p, ok := postingByID[r.JobID]
		if !ok || p.Status != model.PostingApproved || p.IsHighRisk {
			continue
		}
		remediated[p.ID] = struct{}{}
	}
	if n := len(remediated); n > 0 {
		bonus := math.Min(float64(n*remediatedPostingBonus), remediatedBonusCap)
		bonus = math.Min(bonus, 100-score)
		if bonus > 0 {
			score += bonus
			factors = append(factors, Factor{
				Type:        "remediated_postings",
				Description: fmt.Sprintf("%d posting(s) recently re-approved after remediation", n),
				Score:       bonus,
			})
		}
	}

	// 8. Sustained clean streak after past rejections.
	var lastRejection *time.Time
	for _, r := range in.Reviews {
		if r.Outcome != model.OutcomeRejected || r.DecidedAt == nil {
			continue
		}
		if lastRejection == nil || r.DecidedAt.After(*lastRejection) {
			t := *r.DecidedAt
			lastRejection = &t
		}
	}
	if lastRejection != nil && recent == 0 && now.Sub(*lastRejection).Hours()/24 >= 30 {
		if bonus := math.Min(cleanStreakBonus, 100-score); bonus > 0 {
			score += bonus
			factors = append(factors, Factor{
				Type:        "clean_streak",
				Description: "no rejections in the last 30 days",
				Score:       bonus,
			})
		}
	}

	// 9. Profile completed while the company is still new. Heuristic: a
	// recent profile edit on a complete profile is taken as a completeness
	// improvement without diffing the actual change.
	isNew := now.Sub(in.Company.CreatedAt) <= recentWindow
	if len(missing) == 0 && isNew && now.Sub(in.Company.UpdatedAt) <= recentWindow {
		if bonus := math.Min(completedProfileBonus, 100-score); bonus > 0 {
			score += bonus
			factors = append(factors, Factor{
				Type:        "profile_completed",
				Description: "profile completed shortly after registration",
				Score:       bonus,
			})
		}
	}

	// 10. New companies with gaps in their profile carry extra risk.
	if isNew && len(missing) > 0 {
		score -= newCompanyPenalty
		factors = append(factors, Factor{
			Type:        "new_company",
			Description: "company registered less than 30 days ago with an incomplete profile",
			Score:       -newCompanyPenalty,
		})
	}

	// 11-12. Final clamp and classification.
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	score = round1(score)

	level, message := classify(score)
	return Result{Level: level, Score: score, Message: message, Factors: factors}
}

// classify maps a final score to its level and human-facing message.
func classify(score float64) (Level, string) {
	switch {
	case score >= 80:
		return LevelLow, "risk is low, safe to proceed"
	case score >= 60:
		return LevelMedium, "some risk, review carefully before proceeding"
	default:
		return LevelHigh, "elevated risk, proceed cautiously"
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
