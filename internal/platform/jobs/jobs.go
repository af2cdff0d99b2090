package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	domainauth "hrms/internal/domain/auth"
	"hrms/internal/domain/payroll"
)

type TenantLister interface {
	TenantIDs(ctx context.Context) ([]string, error)
}

// Runner owns the background schedule. Its one job today generates draft
// payroll records for the current period across all tenants, so the drafts
// are waiting when payroll admins review month end.
type Runner struct {
	pool     *pgxpool.Pool
	tenants  TenantLister
	payroll  *payroll.Service
	interval time.Duration
}

func NewRunner(pool *pgxpool.Pool, tenants TenantLister, payrollSvc *payroll.Service, interval time.Duration) *Runner {
	return &Runner{pool: pool, tenants: tenants, payroll: payrollSvc, interval: interval}
}

// Start blocks until ctx is cancelled, firing the draft job on each tick.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("job runner started", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("job runner stopped")
			return
		case <-ticker.C:
			r.runPayrollDrafts(ctx)
		}
	}
}

func (r *Runner) runPayrollDrafts(ctx context.Context) {
	tenantIDs, err := r.tenants.TenantIDs(ctx)
	if err != nil {
		slog.Error("list tenants for payroll drafts failed", "err", err)
		return
	}

	period := time.Now().UTC().Format("2006-01")
	for _, tenantID := range tenantIDs {
		runID := r.startRun(ctx, "payroll_drafts", tenantID)

		actor := domainauth.UserContext{TenantID: tenantID}
		result, err := r.payroll.Generate(ctx, actor, payroll.GenerateInput{PayPeriod: period})
		if err != nil {
			slog.Error("payroll draft generation failed", "tenantId", tenantID, "period", period, "err", err)
			r.finishRun(ctx, runID, "failed", err.Error())
			continue
		}
		slog.Info("payroll drafts generated",
			"tenantId", tenantID, "period", period,
			"generated", result.Generated, "skipped", result.Skipped, "failures", len(result.Failures))
		r.finishRun(ctx, runID, "succeeded", "")
	}
}

func (r *Runner) startRun(ctx context.Context, jobName, tenantID string) string {
	var id string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO job_runs (job_name, tenant_id) VALUES ($1, $2) RETURNING id`,
		jobName, tenantID,
	).Scan(&id)
	if err != nil {
		slog.Warn("record job run failed", "job", jobName, "err", err)
		return ""
	}
	return id
}

func (r *Runner) finishRun(ctx context.Context, runID, status, detail string) {
	if runID == "" {
		return
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE job_runs SET status = $2, detail = $3, finished_at = now() WHERE id = $1`,
		runID, status, detail,
	)
	if err != nil {
		slog.Warn("finish job run failed", "runId", runID, "err", err)
	}
}
