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
	"github.com/vietddude/algowatch/internal/core/domain"
	"github.com/vietddude/algowatch/internal/validation"
)

var accountType string

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage locally tracked accounts",
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked accounts",
	Args:  cobra.NoArgs,
	Run:   runAccountsList,
}

var accountsAddCmd = &cobra.Command{
	Use:   "add [address] [name]",
	Short: "Track an account, or rename a tracked one",
	Args:  cobra.ExactArgs(2),
	Run:   runAccountsAdd,
}

var accountsRemoveCmd = &cobra.Command{
	Use:   "remove [address]",
	Short: "Stop tracking an account",
	Args:  cobra.ExactArgs(1),
	Run:   runAccountsRemove,
}

func init() {
	accountsAddCmd.Flags().StringVar(&accountType, "type", string(domain.AccountTypeStandard), "account type: standard, watch, ledger")
	accountsCmd.AddCommand(accountsListCmd, accountsAddCmd, accountsRemoveCmd)
	rootCmd.AddCommand(accountsCmd)
}

func openStorage(ctx context.Context) *control.Storage {
	store, err := control.OpenStorage(ctx, appCfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if !store.Persistent() {
		slog.Warn("No database configured, changes will not be kept")
	}
	return store
}

func runAccountsList(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	store := openStorage(ctx)
	defer func() {
		_ = store.Close()
	}()

	accounts, err := store.Accounts.List(ctx)
	if err != nil {
		slog.Error("Failed to list accounts", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTYPE\tADDRESS\tADDED")
	for _, a := range accounts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Name, a.Type, a.Address, a.CreatedAt.Format(time.DateOnly))
	}
	_ = w.Flush()
}

func runAccountsAdd(cmd *cobra.Command, args []string) {
	account := &domain.Account{
		Address: args[0],
		Name:    args[1],
		Type:    domain.AccountType(accountType),
	}
	if err := validation.Struct(account); err != nil {
		slog.Error("Invalid account", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store := openStorage(ctx)
	defer func() {
		_ = store.Close()
	}()

	if err := store.Accounts.Save(ctx, account); err != nil {
		slog.Error("Failed to save account", "error", err)
		os.Exit(1)
	}
	slog.Info("Account saved", "address", account.Address, "name", account.Name, "type", account.Type)
}

func runAccountsRemove(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	store := openStorage(ctx)
	defer func() {
		_ = store.Close()
	}()

	if err := store.Accounts.Delete(ctx, args[0]); err != nil {
		slog.Error("Failed to remove account", "address", args[0], "error", err)
		os.Exit(1)
	}
	slog.Info("Account removed", "address", args[0])
}
