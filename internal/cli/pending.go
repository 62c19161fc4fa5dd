package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/algowatch/internal/account/pending"
	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/validation"
)

var pendingWatch bool

var pendingCmd = &cobra.Command{
	Use:   "pending [address]",
	Short: "Show transactions of an account waiting in the pool",
	Args:  cobra.ExactArgs(1),
	Run:   runPending,
}

func init() {
	pendingCmd.Flags().BoolVarP(&pendingWatch, "watch", "w", false, "keep polling until interrupted")
	rootCmd.AddCommand(pendingCmd)
}

func runPending(cmd *cobra.Command, args []string) {
	address := args[0]
	if err := validation.Address("address", address); err != nil {
		slog.Error("Invalid arguments", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signalContext()
	defer cancel()

	adapter := configAdapter()

	if !pendingWatch {
		snap, err := adapter.PendingTransactions(ctx, address, appCfg.Pending.Max)
		if err != nil {
			slog.Error("Failed to load pending transactions", "error", err)
			os.Exit(1)
		}
		printSnapshot(address, snap)
		return
	}

	var last string
	poller := pending.NewPoller(adapter, pending.Config{
		Address:  address,
		Interval: appCfg.Pending.Interval,
		Max:      appCfg.Pending.Max,
	}, func(snap *domain.PendingSnapshot) {
		// Only print when the pool content changed.
		key := snapshotKey(snap)
		if key == last {
			return
		}
		last = key
		printSnapshot(address, snap)
	})

	if err := poller.Start(ctx); err != nil {
		slog.Error("Failed to start poller", "error", err)
		os.Exit(1)
	}
	slog.Info("Watching pending transactions", "address", address, "interval", appCfg.Pending.Interval)

	<-ctx.Done()
	poller.Stop()
}

func snapshotKey(snap *domain.PendingSnapshot) string {
	key := fmt.Sprintf("%d:", snap.Total)
	for i := range snap.Transactions {
		key += snap.Transactions[i].Fingerprint() + ";"
	}
	return key
}

func printSnapshot(address string, snap *domain.PendingSnapshot) {
	polled := time.Unix(snap.PolledAt, 0).Format(time.TimeOnly)
	if len(snap.Transactions) == 0 {
		fmt.Printf("[%s] no pending transactions\n", polled)
		return
	}
	fmt.Printf("[%s] %d pending transaction(s)\n", polled, snap.Total)
	for _, p := range snap.Transactions {
		amount := fmt.Sprintf("%d of #%d", p.Amount, p.AssetID)
		if p.AssetID == domain.AlgoAssetID {
			amount = domain.Algo.Format(p.Amount).String() + " ALGO"
		}
		dir := "out"
		if p.Receiver == address && p.Sender != address {
			dir = "in"
		}
		fmt.Printf("  %-4s %-6s %s  %s -> %s  valid %d-%d\n",
			dir, p.Type, amount, shorten(p.Sender), shorten(p.Receiver), p.FirstValid, p.LastValid)
	}
}
