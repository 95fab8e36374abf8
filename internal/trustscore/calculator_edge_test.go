package trustscore_test

// ── Clamping and ordering edge cases ────────────────────────────────────────
//
// The calculator is a sequential fold: the verification and remediation
// bonuses clamp against the running score, not the final one. These tests
// pin that ordering and the [0, 100] bounds.

import (
	"reflect"
	"testing"

	"jobmate/trust-service/internal/model"
	"jobmate/trust-service/internal/trustscore"
)

// The verification bonus is capped at 10 even when the running score is far
// below the ceiling.
func TestCalculate_VerificationBonusCappedAtTen(t *testing.T) {
	now := fixedNow()
	company := model.Company{ // every optional field missing
		ID:        "c1",
		Verified:  true,
		CreatedAt: now.AddDate(-1, 0, 0),
		UpdatedAt: now.AddDate(-1, 0, 0),
	}

	res := trustscore.Calculate(trustscore.Input{Company: company}, now)

	// 100 - 22 + 10 (capped, headroom was 22) = 88
	if res.Score != 88 {
		t.Errorf("score = %v, want 88", res.Score)
	}
	last := res.Factors[len(res.Factors)-1]
	if last.Type != "verified" || last.Score != 10 {
		t.Errorf("verified factor = %+v, want +10", last)
	}
}

// A remediation bonus shrinks to the remaining headroom under the ceiling.
func TestCalculate_RemediationBonusClampedToHeadroom(t *testing.T) {
	now := fixedNow()
	company := completeCompany(now)
	company.Verified = true

	// Ten remediated postings would earn the full 10-point cap, but the
	// running score is already 100 after the (zero) verification bonus.
	reviews := make([]model.Review, 0, 10)
	postings := make([]model.Posting, 0, 10)
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		reviews = append(reviews, approvedReview("r"+id, "p"+id, 5, now))
		postings = append(postings, model.Posting{ID: "p" + id, Status: model.PostingApproved})
	}

	res := trustscore.Calculate(trustscore.Input{Company: company, Reviews: reviews, Postings: postings}, now)

	if res.Score != 100 {
		t.Errorf("score = %v, want 100", res.Score)
	}
	for _, f := range res.Factors {
		if f.Type == "remediated_postings" {
			t.Errorf("remediation factor emitted with no headroom: %+v", f)
		}
	}
}

// The floor holds: a maximally bad company clamps to 0, not below.
func TestCalculate_ScoreFloorsAtZero(t *testing.T) {
	now := fixedNow()
	company := model.Company{
		ID:        "c1",
		CreatedAt: now.AddDate(0, 0, -10), // new, with every field missing
		UpdatedAt: now.AddDate(0, 0, -10),
	}

	var reviews []model.Review
	for i := 0; i < 10; i++ {
		reviews = append(reviews, rejectedReview("r", 0, now))
	}
	var postings []model.Posting
	for i := 0; i < 5; i++ {
		postings = append(postings, model.Posting{ID: "p", Status: model.PostingRejected, IsHighRisk: true})
	}

	res := trustscore.Calculate(trustscore.Input{Company: company, Reviews: reviews, Postings: postings}, now)

	if res.Score != 0 {
		t.Errorf("score = %v, want 0", res.Score)
	}
	if res.Level != trustscore.LevelHigh {
		t.Errorf("level = %s, want high", res.Level)
	}
}

// Same inputs, same instant, same result: the calculator reads no hidden
// state.
func TestCalculate_Idempotent(t *testing.T) {
	now := fixedNow()
	in := trustscore.Input{
		Company: completeCompany(now),
		Reviews: []model.Review{
			rejectedReview("r1", 0, now),
			rejectedReview("r2", 200, now),
			approvedReview("r3", "p1", 5, now),
		},
		Postings: []model.Posting{
			{ID: "p1", Status: model.PostingApproved},
			{ID: "p2", Status: model.PostingRejected, IsHighRisk: true},
		},
	}

	first := trustscore.Calculate(in, now)
	second := trustscore.Calculate(in, now)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("recomputation diverged:\n first = %+v\nsecond = %+v", first, second)
	}
}

// Scores stay inside [0, 100] across a spread of histories.
func TestCalculate_ScoreAlwaysInBounds(t *testing.T) {
	now := fixedNow()
	inputs := []trustscore.Input{
		{Company: completeCompany(now)},
		{Company: model.Company{ID: "c", CreatedAt: now, UpdatedAt: now}},
		{Company: completeCompany(now), Reviews: []model.Review{rejectedReview("r", 1000, now)}},
		{
			Company: func() model.Company { c := completeCompany(now); c.Verified = true; return c }(),
			Reviews: []model.Review{approvedReview("r", "p", 1, now)},
			Postings: []model.Posting{
				{ID: "p", Status: model.PostingApproved},
			},
		},
	}
	for i, in := range inputs {
		res := trustscore.Calculate(in, now)
		if res.Score < 0 || res.Score > 100 {
			t.Errorf("input %d: score %v out of bounds", i, res.Score)
		}
	}
}

// A fresh rejection is penalized twice on purpose: once in the decayed
// history total and once in the 30-day window. The two factors must both
// appear.
func TestCalculate_RecentRejectionDoubleCounted(t *testing.T) {
	now := fixedNow()
	in := trustscore.Input{
		Company: completeCompany(now),
		Reviews: []model.Review{rejectedReview("r1", 10, now)},
	}

	res := trustscore.Calculate(in, now)

	got := factorTypes(res)
	if !reflect.DeepEqual(got, []string{"rejection_history", "unverified", "recent_rejections"}) {
		t.Errorf("factor types = %v", got)
	}
	// 100 - 5 - 8 - 4 = 83
	if res.Score != 83 {
		t.Errorf("score = %v, want 83", res.Score)
	}
}
