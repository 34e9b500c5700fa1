// Package jobs holds scheduled background work. Importing it for side effects
// registers every job with the cron registry.
package jobs

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"garment.GO/config"
	"garment.GO/cron"
	"garment.GO/service/reconcile"
)

const defaultAuditSchedule = "0 3 * * *"

func init() {
	schedule := os.Getenv("LEDGER_AUDIT_SCHEDULE")
	if schedule == "" {
		schedule = defaultAuditSchedule
	}
	cron.Register("ledger_audit", schedule, runLedgerAudit)
}

func runLedgerAudit(args ...string) {
	log := config.GetLogger()
	db, err := config.NewDB()
	if err != nil {
		config.LogError(log, "cron/jobs", "runLedgerAudit", "open database", nil, err)
		return
	}
	svc := reconcile.NewService(db, log)
	audit, findings, err := svc.AuditLedger(context.Background())
	if err != nil {
		config.LogError(log, "cron/jobs", "runLedgerAudit", "audit ledger", nil, err)
		return
	}
	log.WithFields(logrus.Fields{
		"audit_id": audit.ID,
		"findings": len(findings),
	}).Info("ledger audit completed")
}
