package jobs

import (
	"context"
	"log/slog"

	"bilbo/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
)

// DefaultLedgerAuditSchedule runs the audit at the start of every minute.
const DefaultLedgerAuditSchedule = "0 * * * * *"

type auditHandler interface {
	Handle(ctx context.Context, query queries.AuditAllocationsQuery) (queries.AuditAllocationsQueryResponse, error)
}

type auditRecorder interface {
	SetAuditResult(ordersChecked, violations int)
}

// LedgerAuditJob periodically audits fulfillment allocations.
type LedgerAuditJob struct {
	handler  auditHandler
	recorder auditRecorder
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewLedgerAuditJob creates the audit job. An empty schedule falls back to
// DefaultLedgerAuditSchedule; recorder may be nil.
func NewLedgerAuditJob(handler auditHandler, recorder auditRecorder, schedule string, logger *slog.Logger) *LedgerAuditJob {
	if schedule == "" {
		schedule = DefaultLedgerAuditSchedule
	}
	return &LedgerAuditJob{
		handler:  handler,
		recorder: recorder,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "ledger_audit_job"),
	}
}

func (j *LedgerAuditJob) Name() string {
	return "ledger audit job"
}

// Start schedules the audit.
func (j *LedgerAuditJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Ledger audit job started", "schedule", j.schedule)
	return nil
}

// Run performs a single audit and reports how many violations it found.
func (j *LedgerAuditJob) Run(ctx context.Context) int {
	result, err := j.handler.Handle(ctx, queries.NewAuditAllocationsQuery())
	if err != nil {
		j.logger.ErrorContext(ctx, "Ledger audit failed", "error", err)
		return 0
	}

	if j.recorder != nil {
		j.recorder.SetAuditResult(result.OrdersChecked, len(result.Violations))
	}

	for _, v := range result.Violations {
		j.logger.ErrorContext(ctx, "Allocation invariant violated",
			"order_id", v.OrderID.String(),
			"line_index", v.LineIndex,
			"side", v.Side.String(),
			"quantity", v.Quantity,
			"allocated", v.Allocated,
		)
	}
	j.logger.DebugContext(ctx, "Ledger audit finished",
		"orders_checked", result.OrdersChecked,
		"violations", len(result.Violations),
	)
	return len(result.Violations)
}

// Stop waits for a running audit to finish.
func (j *LedgerAuditJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Ledger audit job stopped")
}
