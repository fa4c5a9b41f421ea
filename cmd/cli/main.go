package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/estateledger/internal/domain"
	"github.com/iho/estateledger/internal/infrastructure/logger"
	"github.com/iho/estateledger/internal/infrastructure/postgres"
	"github.com/iho/estateledger/internal/usecase"
)

var (
	baseURL  string
	timeout  time.Duration
	asJSON   bool
	migrator = migrationRunner{up: postgres.RunMigrations, down: postgres.RunMigrationsDown}
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "estateledger-cli",
		Short:         "Estate ledger CLI tool",
		Long:          `A command line interface for the estate ledger API and database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the estate ledger API")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "Print raw JSON")

	root.AddCommand(ledgerCmd(), reportCmd(), migrateCmd())
	return root
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Party ledger operations",
	}

	show := &cobra.Command{
		Use:   "show <account|client|supplier|agent> <id>",
		Short: "Print a party's reconstructed ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParsePartyKind(args[0])
			if err != nil {
				return err
			}
			var details usecase.PartyDetails
			if err := newAPIClient().get(cmd.Context(), partyPath(kind, args[1]), string(kind), &details); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), details)
			}
			return printLedger(cmd.OutOrStdout(), &details)
		},
	}

	reconcile := &cobra.Command{
		Use:   "reconcile <account|client|supplier|agent> <id>",
		Short: "Compare a party's stored balance with its ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParsePartyKind(args[0])
			if err != nil {
				return err
			}
			var result domain.Reconciliation
			if err := newAPIClient().get(cmd.Context(), partyPath(kind, args[1])+"/reconcile", "reconciliation", &result); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			status := "RECONCILED"
			if !result.Reconciled {
				status = "DIFFERS"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s (recorded %d, ledger %d, difference %d)\n",
				result.Kind, result.PartyID, status, result.RecordedBalance, result.LedgerBalance, result.Difference)
			return nil
		},
	}

	cmd.AddCommand(show, reconcile)
	return cmd
}

func reportCmd() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Project reports in KES",
	}
	cmd.PersistentFlags().StringVar(&project, "project", "", "Project id (server default when empty)")

	income := &cobra.Command{
		Use:   "income",
		Short: "Print the income statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var stmt domain.IncomeStatement
			if err := newAPIClient().get(cmd.Context(), reportPath("income-statement", project), "incomeStatement", &stmt); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), stmt)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(w, "Revenue\t%d\t\n", stmt.Revenue)
			fmt.Fprintf(w, "Cost\t%d\t\n", stmt.Cost)
			fmt.Fprintf(w, "Gross profit\t%d\t\n", stmt.GrossProfit)
			fmt.Fprintf(w, "Expenses\t%d\t\n", stmt.Expenses)
			fmt.Fprintf(w, "Net profit\t%d\t\n", stmt.NetProfit)
			fmt.Fprintf(w, "Amount paid\t%d\t\n", stmt.TotalAmountPaid)
			return w.Flush()
		},
	}

	totals := &cobra.Command{
		Use:   "totals",
		Short: "Print account totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var t domain.AccountTotals
			if err := newAPIClient().get(cmd.Context(), reportPath("totals", project), "totals", &t); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "debit %d  credit %d  balance %d %s\n", t.TotalDebit, t.TotalCredit, t.TotalBalance, t.Currency)
			return nil
		},
	}

	reconcile := &cobra.Command{
		Use:   "reconcile",
		Short: "List parties whose stored balance differs from their ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rep usecase.ReconciliationReport
			if err := newAPIClient().get(cmd.Context(), reportPath("reconciliation", project), "reconciliation", &rep); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d of %d parties reconciled\n", rep.Reconciled, rep.TotalParties)
			if len(rep.Discrepancies) == 0 {
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tID\tRECORDED\tLEDGER\tDIFFERENCE")
			for _, d := range rep.Discrepancies {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", d.Kind, d.PartyID, d.RecordedBalance, d.LedgerBalance, d.Difference)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(income, totals, reconcile)
	return cmd
}

type migrationRunner struct {
	up   func(databaseURL, migrationsPath string, logger zerolog.Logger) error
	down func(databaseURL, migrationsPath string, logger zerolog.Logger) error
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL")
	cmd.PersistentFlags().StringVar(&path, "path", "internal/infrastructure/postgres/migrations", "Migrations directory")

	run := func(fn func(string, string, zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			l := logger.New(logger.Config{Level: "info", Format: "console", Output: cmd.ErrOrStderr()})
			return fn(databaseURL, path, l)
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", Args: cobra.NoArgs, RunE: run(migrator.up)},
		&cobra.Command{Use: "down", Short: "Roll back all migrations", Args: cobra.NoArgs, RunE: run(migrator.down)},
	)
	return cmd
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient() *apiClient {
	return &apiClient{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// get fetches path and decodes the envelope payload under key into v.
func (c *apiClient) get(ctx context.Context, path, key string, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || string(env["success"]) != "true" {
		var failure struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &failure)
		return fmt.Errorf("request failed (status %d): %s: %s", resp.StatusCode, failure.Error, failure.Message)
	}
	return json.Unmarshal(env[key], v)
}

func partyPath(kind domain.PartyKind, id string) string {
	return "/api/v1/" + string(kind) + "s/" + url.PathEscape(id)
}

func reportPath(report, project string) string {
	p := "/api/v1/reports/" + report
	if project != "" {
		p += "?project_id=" + url.QueryEscape(project)
	}
	return p
}

func printLedger(out io.Writer, d *usecase.PartyDetails) error {
	fmt.Fprintf(out, "%s (%s) balance %d %s\n\n", d.Info.Name, d.Info.ID, d.Info.Balance, d.Info.Currency)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSOURCE\tDESCRIPTION\tDEBIT\tCREDIT\tBALANCE")
	for _, line := range d.Ledger.Entries {
		source := string(line.SourceType)
		if line.Memo {
			source += " (memo)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			line.Date, source, truncate(line.Description, 40), line.Debit, line.Credit, line.Balance)
	}
	fmt.Fprintf(w, "\tTOTAL\t\t%d\t%d\t%d\n", d.Ledger.Totals.TotalDebit, d.Ledger.Totals.TotalCredit, d.Ledger.Totals.Difference)
	if d.Ledger.Totals.TotalCommissions != nil {
		fmt.Fprintf(w, "\tCOMMISSIONS\t\t\t\t%d\n", *d.Ledger.Totals.TotalCommissions)
	}
	return w.Flush()
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
