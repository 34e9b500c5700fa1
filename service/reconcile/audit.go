package reconcile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	entity "garment.GO/model/entity"
)

// AuditFinding is one line whose counters disagree with its delivery ledger.
type AuditFinding struct {
	LineID       uint   `json:"line_id"`
	OrderID      uint   `json:"order_id"`
	InitialQty   int    `json:"initial_qty"`
	RemainingQty int    `json:"remaining_qty"`
	LedgerSum    int    `json:"ledger_sum"`
	Problem      string `json:"problem"`
}

// AuditLedger checks every order line against its deliveries: remaining must
// stay within [0, initial] and the ledger sum must equal initial - remaining.
// Lines left behind by a failed compensation or restore show up here; that is
// how operators find what needs manual reconciliation. The run is persisted
// with its findings.
func (s *Service) AuditLedger(ctx context.Context) (*entity.LedgerAudit, []AuditFinding, error) {
	var lines []entity.OrderLine
	err := s.callWithTimeout(ctx, func(c context.Context) error {
		var lerr error
		lines, lerr = s.repo.ListLines(c)
		return lerr
	})
	if err != nil {
		return nil, nil, storeErr(err)
	}

	var findings []AuditFinding
	for _, l := range lines {
		var sum int
		err := s.callWithTimeout(ctx, func(c context.Context) error {
			var serr error
			sum, serr = s.repo.SumForLine(c, l.ID)
			return serr
		})
		if err != nil {
			return nil, nil, storeErr(err)
		}
		problem := ""
		switch {
		case l.RemainingQty < 0:
			problem = "remaining quantity below zero"
		case l.RemainingQty > l.InitialQty:
			problem = "remaining quantity above initial"
		case sum != l.InitialQty-l.RemainingQty:
			problem = "ledger sum does not match consumed quantity"
		}
		if problem == "" {
			continue
		}
		f := AuditFinding{
			LineID:       l.ID,
			OrderID:      l.OrderID,
			InitialQty:   l.InitialQty,
			RemainingQty: l.RemainingQty,
			LedgerSum:    sum,
			Problem:      problem,
		}
		findings = append(findings, f)
		s.log.WithFields(logrus.Fields{
			"module":  "reconcile",
			"line":    f.LineID,
			"order":   f.OrderID,
			"problem": f.Problem,
		}).Warn("ledger audit finding")
	}

	run := &entity.LedgerAudit{
		RunAt:        time.Now(),
		LinesChecked: len(lines),
		Findings:     len(findings),
	}
	if len(findings) > 0 {
		if details, merr := json.Marshal(findings); merr == nil {
			run.Details = details
		}
	}
	if err := s.callWithTimeout(ctx, func(c context.Context) error {
		return s.repo.SaveAudit(c, run)
	}); err != nil {
		return nil, findings, storeErr(err)
	}
	return run, findings, nil
}
