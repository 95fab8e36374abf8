// Package monitor wires up the cron job that periodically recomputes trust
// scores for recently active companies and publishes alerts for the ones
// scoring high-risk.
//
// The sweep is observational: scores are never persisted, only logged and
// published. The scoring itself stays pure inside the trustscore package.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"jobmate/trust-service/internal/trustscore"
)

// Monitor wraps robfig/cron and manages the risk sweep loop.
type Monitor struct {
	cron   *cron.Cron
	pool   *pgxpool.Pool
	rdb    *redis.Client
	scorer *trustscore.Service
	spec   string // cron spec, e.g. "@every 6h"
}

// New creates a Monitor that fires every intervalHours hours.
func New(pool *pgxpool.Pool, rdb *redis.Client, scorer *trustscore.Service, intervalHours int) *Monitor {
	return &Monitor{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		pool:   pool,
		rdb:    rdb,
		scorer: scorer,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so alerts don't wait for the first tick.
func (m *Monitor) Start(ctx context.Context) error {
	_, err := m.cron.AddFunc(m.spec, func() {
		m.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	m.cron.Start()
	log.Printf("[monitor] Cron started, spec: %s", m.spec)

	go m.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (m *Monitor) Stop() {
	m.cron.Stop()
	log.Println("[monitor] Cron stopped")
}

// runSweep scores every recently active company and publishes
// EVENT_COMPANY_HIGH_RISK for each one classified high-risk.
func (m *Monitor) runSweep(ctx context.Context) {
	log.Println("[monitor] Risk sweep started")

	ids, err := m.activeCompanyIDs(ctx)
	if err != nil {
		log.Printf("[monitor] activeCompanyIDs error: %v", err)
		return
	}
	if len(ids) == 0 {
		log.Println("[monitor] No recently active companies, nothing to sweep")
		return
	}

	highRisk := 0
	for _, id := range ids {
		res, err := m.scorer.CompanyRiskScore(ctx, id)
		if err != nil {
			log.Printf("[monitor] score error for company %s: %v", id, err)
			continue
		}
		if res.Level != trustscore.LevelHigh {
			continue
		}
		highRisk++

		event, _ := json.Marshal(map[string]any{
			"type":      "EVENT_COMPANY_HIGH_RISK",
			"companyId": id,
			"riskScore": res.Score,
		})
		if err := m.rdb.Publish(ctx, "EVENT_COMPANY_HIGH_RISK", event).Err(); err != nil {
			log.Printf("[monitor] publish EVENT_COMPANY_HIGH_RISK failed: %v", err)
		}
	}

	log.Printf("[monitor] Sweep complete, scored=%d highRisk=%d", len(ids), highRisk)
}

// activeCompanyIDs returns companies with review or posting activity in the
// last 24 hours.
func (m *Monitor) activeCompanyIDs(ctx context.Context) ([]string, error) {
	rows, err := m.pool.Query(ctx,
		`SELECT DISTINCT company_id FROM (
		   SELECT company_id FROM job_reviews  WHERE decided_at > NOW() - INTERVAL '24 hours'
		   UNION ALL
		   SELECT company_id FROM job_postings WHERE updated_at > NOW() - INTERVAL '24 hours'
		 ) activity`,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent activity: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
