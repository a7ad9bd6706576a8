package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/internal/repository"
	"github.com/familybudget/backend/internal/service"
)

var (
	flagMonth   int
	flagYear    int
	flagJSON    bool
	flagTimeout time.Duration
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare active summaries with archived expenses for a month",
	Long: "Reports every user whose accounted spending differs from the expense archive " +
		"or whose category counters went negative. Exits non-zero when any drift is found.",
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	now := time.Now().UTC()
	reconcileCmd.Flags().IntVar(&flagMonth, "month", int(now.Month()), "Month to reconcile (1-12)")
	reconcileCmd.Flags().IntVar(&flagYear, "year", now.Year(), "Year to reconcile")
	reconcileCmd.Flags().BoolVar(&flagJSON, "json", false, "Print reports as JSON")
	reconcileCmd.Flags().DurationVar(&flagTimeout, "timeout", 5*time.Minute, "Abort after this long")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	key := model.PeriodKey{Month: flagMonth, Year: flagYear}
	if !key.Valid() {
		return fmt.Errorf("invalid period %s", key)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	reports, err := service.NewReconcileService(repository.NewLedgerRepository(db)).ReconcilePeriod(ctx, key)
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		writeReports(cmd.OutOrStdout(), key, reports, flagQuiet)
	}

	if n := countDrifted(reports); n > 0 {
		return fmt.Errorf("%d of %d periods are inconsistent", n, len(reports))
	}
	return nil
}

func countDrifted(reports []model.ReconcileReport) int {
	n := 0
	for i := range reports {
		if !reports[i].Consistent() {
			n++
		}
	}
	return n
}

func writeReports(w io.Writer, key model.PeriodKey, reports []model.ReconcileReport, quiet bool) {
	if !quiet {
		fmt.Fprintf(w, "Reconciliation for %s: %d active periods\n\n", key, len(reports))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tPERIOD ID\tEXPENSES\tARCHIVED\tACCOUNTED\tDRIFT\tNEGATIVE")
	for _, r := range reports {
		if quiet && r.Consistent() {
			continue
		}
		negative := "-"
		if len(r.NegativeCategories) > 0 {
			negative = fmt.Sprint(r.NegativeCategories)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			r.UserID, r.PeriodID, r.ExpenseCount, r.ArchivedTotal, r.AccountedTotal, r.Drift, negative)
	}
	_ = tw.Flush()
}
