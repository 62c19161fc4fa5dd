package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/algowatch/internal/account/history"
	"github.com/vietddude/algowatch/internal/core/domain"
)

var historyFlags struct {
	assetID int64
	filter  string
	from    string
	to      string
	txType  string
	limit   int
	pages   int
}

var historyCmd = &cobra.Command{
	Use:   "history [address]",
	Short: "Print the confirmed transaction history of an account",
	Args:  cobra.ExactArgs(1),
	Run:   runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.Int64Var(&historyFlags.assetID, "asset", -1, "only show transfers of this asset id (0 = ALGO)")
	f.StringVar(&historyFlags.filter, "filter", "all_time", "date filter: all_time, today, yesterday, last_week, last_month, custom")
	f.StringVar(&historyFlags.from, "from", "", "first day of a custom range (YYYY-MM-DD)")
	f.StringVar(&historyFlags.to, "to", "", "last day of a custom range (YYYY-MM-DD)")
	f.StringVar(&historyFlags.txType, "type", "", "only show one transaction type (pay, axfer, appl, ...)")
	f.IntVar(&historyFlags.limit, "limit", 0, "page size (default from config)")
	f.IntVar(&historyFlags.pages, "pages", 1, "number of pages to print, 0 = all")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	loc := appCfg.History.Loc()

	q, err := historyQuery(args[0], loc)
	if err != nil {
		slog.Error("Invalid arguments", "error", err)
		os.Exit(1)
	}

	pager, err := history.NewPager(configAdapter(), q, history.WithLocation(loc))
	if err != nil {
		slog.Error("Invalid arguments", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signalContext()
	defer cancel()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()
	_, _ = fmt.Fprintln(w, "TIME\tTYPE\tDIR\tAMOUNT\tASSET\tCOUNTERPARTY\tID")

	printed := 0
	for page, err := range pager.Pages(ctx) {
		if err != nil {
			_ = w.Flush()
			if errors.Is(err, ctx.Err()) {
				return
			}
			slog.Error("Failed to load history", "error", err, "retryable", domain.IsRetryable(err))
			os.Exit(1)
		}
		for _, it := range page.Items {
			if it.Kind == domain.ItemKindSeparator {
				_, _ = fmt.Fprintf(w, "-- %s --\t\t\t\t\t\t\n", it.Date.Format("Mon 02 Jan 2006"))
				continue
			}
			printTx(w, q.Address, it.Transaction, loc)
		}
		printed++
		if historyFlags.pages > 0 && printed >= historyFlags.pages {
			if !pager.Done() {
				_, _ = fmt.Fprintf(w, "\nmore pages available, next token: %s\n", pager.Cursor())
			}
			return
		}
	}
}

func historyQuery(address string, loc *time.Location) (history.Query, error) {
	q := history.Query{
		Address:  address,
		TxType:   domain.TxType(historyFlags.txType),
		PageSize: appCfg.History.PageSize,
		Filter:   domain.DateFilter{Kind: domain.DateFilterKind(historyFlags.filter)},
	}
	if historyFlags.limit > 0 {
		q.PageSize = historyFlags.limit
	}
	if historyFlags.assetID >= 0 {
		id := uint64(historyFlags.assetID)
		q.AssetID = &id
	}
	var err error
	if historyFlags.from != "" {
		if q.Filter.From, err = time.ParseInLocation("2006-01-02", historyFlags.from, loc); err != nil {
			return q, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if historyFlags.to != "" {
		if q.Filter.To, err = time.ParseInLocation("2006-01-02", historyFlags.to, loc); err != nil {
			return q, fmt.Errorf("invalid --to: %w", err)
		}
	}
	if (q.Filter.Kind == "" || q.Filter.Kind == domain.DateFilterAllTime) && (historyFlags.from != "" || historyFlags.to != "") {
		q.Filter.Kind = domain.DateFilterCustom
	}
	return q, q.Validate()
}

func printTx(w *tabwriter.Writer, address string, tx *domain.Transaction, loc *time.Location) {
	dir := tx.Direction(address)
	counterparty := tx.Receiver
	if dir == domain.DirectionIncoming {
		counterparty = tx.Sender
	}

	amount := fmt.Sprintf("%d", tx.Amount)
	asset := fmt.Sprintf("#%d", tx.AssetID)
	if tx.AssetID == domain.AlgoAssetID {
		amount = domain.Algo.Format(tx.Amount).String()
		asset = domain.Algo.UnitName
	}

	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		tx.RoundTime.In(loc).Format("15:04:05"),
		tx.Type,
		dir,
		amount,
		asset,
		shorten(counterparty),
		shorten(tx.ID),
	)
}

func shorten(s string) string {
	if len(s) <= 16 {
		return s
	}
	return s[:6] + "..." + s[len(s)-6:]
}
