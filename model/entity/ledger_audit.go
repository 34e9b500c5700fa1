package entity

import (
	"time"

	"gorm.io/datatypes"
)

// LedgerAudit is one persisted run of the delivery-ledger audit. Details
// carries the per-line findings as JSON so operators can reconcile lines left
// inconsistent by failed compensations.
type LedgerAudit struct {
	ID           uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RunAt        time.Time      `gorm:"column:run_at;not null" json:"run_at"`
	LinesChecked int            `gorm:"column:lines_checked;not null" json:"lines_checked"`
	Findings     int            `gorm:"column:findings;not null" json:"findings"`
	Details      datatypes.JSON `gorm:"column:details" json:"details,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (LedgerAudit) TableName() string {
	return "ledger_audit"
}
