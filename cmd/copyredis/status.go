package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfoltran/copyredis/internal/metrics"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last known replication phase and progress",
	Long:  `Status reports the most recently persisted phase, replication offset lag, and per-target progress, read from the state file a running bridge process writes periodically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := metrics.ReadStateFile()
		if err != nil {
			fmt.Println("No bridge state found. Is a copyredis process running?")
			fmt.Printf("  (error: %v)\n", err)
			return nil
		}

		age := time.Since(snap.Timestamp)
		stale := ""
		if age > 10*time.Second {
			stale = fmt.Sprintf(" (stale — %s ago)", age.Truncate(time.Second))
		}

		fmt.Printf("Phase:              %s%s\n", snap.Phase, stale)
		fmt.Printf("Elapsed:            %.0fs\n", snap.ElapsedSec)
		fmt.Printf("Replication ID:     %s\n", snap.ReplicationID)
		fmt.Printf("Replication offset: %d\n", snap.ReplicationOffset)
		fmt.Printf("Offset lag:         %d\n", snap.OffsetLag)
		fmt.Printf("Throughput:         %.0f req/s\n", snap.RequestsPerSec)
		fmt.Printf("Total requests:     %d\n", snap.TotalRequests)

		if snap.ErrorCount > 0 {
			fmt.Printf("Errors:             %d (last: %s)\n", snap.ErrorCount, snap.LastError)
		}

		if len(snap.Targets) > 0 {
			fmt.Println("\nTargets:")
			for _, tp := range snap.Targets {
				fmt.Printf("  %-28s %-10s sent=%-8d dropped=%d\n",
					tp.Address, tp.Status, tp.RequestsSent, tp.RequestsDropped)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
