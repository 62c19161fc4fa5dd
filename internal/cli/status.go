package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/algowatch/internal/control"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured nodes and whether their backends respond",
	Args:  cobra.NoArgs,
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := openStorage(ctx)
	defer func() {
		_ = store.Close()
	}()

	fallback := control.NodeFromConfig(appCfg.Network, appCfg.Algod, appCfg.Indexer)
	if _, err := control.ResolveNode(ctx, store.Nodes, fallback); err != nil {
		slog.Error("Failed to resolve active node", "error", err)
		os.Exit(1)
	}

	nodes, err := store.Nodes.List(ctx)
	if err != nil {
		slog.Error("Failed to list nodes", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "NODE\tNETWORK\tACTIVE\tINDEXER\tALGOD\tSTATUS")

	for _, n := range nodes {
		status := "-"
		if n.Network == appCfg.Network {
			adapter := control.NewAdapter(n, appCfg.Algod, appCfg.Indexer)
			if err := adapter.Health(ctx); err != nil {
				status = "unhealthy: " + err.Error()
			} else {
				status = "ok"
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\t%s\n", n.Name, n.Network, n.Active, n.IndexerURL, n.AlgodURL, status)
	}
	_ = w.Flush()

	if accounts, err := store.Accounts.List(ctx); err == nil {
		fmt.Printf("\n%d tracked account(s)\n", len(accounts))
	}
}
