package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"garment.GO/config"
	"garment.GO/service/reconcile"
)

var (
	deliveryFile string
	deliveryUser string
)

// CSV columns: line_id,quantity[,user_id]. A header row is detected and
// skipped. Each row goes through the full reconciliation path, so partial
// failures leave consistent state.
var deliveryImportCmd = &cobra.Command{
	Use:   "deliveries:import",
	Short: "Record deliveries in bulk from a CSV file",
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(deliveryFile)
		if err != nil {
			fmt.Printf("Failed to open CSV: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		config.InitRedis()
		svc := reconcile.NewService(db, config.GetLogger(),
			reconcile.WithRedis(config.RedisClient))

		start := time.Now()
		recorded, failed := 0, 0
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		for row := 1; ; row++ {
			rec, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				fmt.Printf("  [row %d] read error: %v\n", row, err)
				failed++
				continue
			}
			if row == 1 && len(rec) > 0 && rec[0] == "line_id" {
				continue
			}
			if len(rec) < 2 {
				fmt.Printf("  [row %d] expected line_id,quantity\n", row)
				failed++
				continue
			}
			lineID, err1 := strconv.ParseUint(rec[0], 10, 32)
			qty, err2 := strconv.Atoi(rec[1])
			if err1 != nil || err2 != nil {
				fmt.Printf("  [row %d] bad line_id or quantity\n", row)
				failed++
				continue
			}
			user := deliveryUser
			if len(rec) > 2 && rec[2] != "" {
				user = rec[2]
			}
			_, err = svc.RecordDelivery(context.Background(), reconcile.RecordDeliveryInput{
				LineID:         uint(lineID),
				Quantity:       qty,
				UserID:         user,
				IdempotencyKey: uuid.NewString(),
			})
			if err != nil {
				fmt.Printf("  [row %d] %v\n", row, err)
				failed++
				continue
			}
			recorded++
		}

		fmt.Printf(`
=== Delivery Import ===
Recorded:  %d
Failed:    %d
Total time: %s
=======================
`, recorded, failed, time.Since(start).Round(time.Millisecond))
		if failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	deliveryImportCmd.Flags().StringVarP(&deliveryFile, "file", "f", "", "CSV file path (required)")
	deliveryImportCmd.MarkFlagRequired("file")
	deliveryImportCmd.Flags().StringVar(&deliveryUser, "user", "cli", "User recorded on imported deliveries")
	rootCmd.AddCommand(deliveryImportCmd)
}
