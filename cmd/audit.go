package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"garment.GO/config"
	"garment.GO/service/reconcile"
)

var auditCmd = &cobra.Command{
	Use:   "ledger:audit",
	Short: "Scan order lines for quantity drift and record an audit report",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		svc := reconcile.NewService(db, config.GetLogger())
		audit, findings, err := svc.AuditLedger(context.Background())
		if err != nil {
			fmt.Printf("Audit failed: %v\n", err)
			os.Exit(1)
		}
		if len(findings) == 0 {
			fmt.Printf("Audit #%d clean: no drift found.\n", audit.ID)
			return
		}
		fmt.Printf("Audit #%d found %d problem(s):\n", audit.ID, len(findings))
		for _, f := range findings {
			fmt.Printf("  line %d: %s (initial=%d remaining=%d ledger=%d)\n",
				f.LineID, f.Problem, f.InitialQty, f.RemainingQty, f.LedgerSum)
		}
		os.Exit(2)
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
