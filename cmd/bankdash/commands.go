package main

import (
	"github.com/aristath/bankdash/internal/dashboard"
	"github.com/aristath/bankdash/internal/domain"
	"github.com/spf13/cobra"
)

func dashboardCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the overview, recent transactions and system status",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator()
			if err != nil {
				return err
			}
			orch.LoadDashboard(cmd.Context())
			return opts.report(orch, func(s dashboard.State) any {
				return map[string]any{
					"stats_overview":      s.StatsOverview,
					"recent_transactions": s.RecentTransactions,
					"system_health":       s.SystemHealth,
					"system_metadata":     s.SystemMetadata,
				}
			})
		},
	}
}

func transactionsCmd(opts *globalOptions) *cobra.Command {
	var (
		page    int
		filters struct {
			useChip, fraud, minAmount, maxAmount, state string
		}
		id    string
		types bool
	)

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List a filtered page of transactions",
		Long: `List a filtered page of transactions.

Examples:
  bankdash transactions --page 2 --fraud Fraudulent
  bankdash transactions --min 100 --max 500 --state CA
  bankdash transactions --id 7475327
  bankdash transactions --types`,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			switch {
			case types:
				orch.LoadTransactionTypes(ctx)
				return opts.report(orch, func(s dashboard.State) any {
					return s.TransactionTypes
				})
			case id != "":
				orch.LoadTransaction(ctx, id)
				return opts.report(orch, func(s dashboard.State) any {
					return s.SelectedTransaction
				})
			}

			orch.SetFilterUseChip(filters.useChip)
			orch.SetFilterIsFraud(filters.fraud)
			orch.SetFilterMinAmount(filters.minAmount)
			orch.SetFilterMaxAmount(filters.maxAmount)
			orch.SetFilterMerchantState(filters.state)
			orch.SetTransactionsPage(page)
			orch.LoadTransactions(ctx)
			return opts.report(orch, func(s dashboard.State) any {
				return map[string]any{
					"page":         s.TransactionsQuery.Page,
					"total_pages":  s.TransactionsQuery.TotalPages(s.TotalTransactions),
					"total":        s.TotalTransactions,
					"summary":      s.TransactionsSummary,
					"transactions": s.Transactions,
				}
			})
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().StringVar(&filters.useChip, "use-chip", dashboard.FilterAll, "payment channel")
	cmd.Flags().StringVar(&filters.fraud, "fraud", dashboard.FilterAll, "All, Fraudulent or Legitimate")
	cmd.Flags().StringVar(&filters.minAmount, "min", "", "minimum amount")
	cmd.Flags().StringVar(&filters.maxAmount, "max", "", "maximum amount")
	cmd.Flags().StringVar(&filters.state, "state", "", "merchant state")
	cmd.Flags().StringVar(&id, "id", "", "show a single transaction")
	cmd.Flags().BoolVar(&types, "types", false, "list transaction types")

	return cmd
}

func customersCmd(opts *globalOptions) *cobra.Command {
	var (
		page         int
		top          bool
		id           string
		transactions bool
	)

	cmd := &cobra.Command{
		Use:   "customers",
		Short: "List customers, top customers or a customer profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			switch {
			case top:
				orch.LoadTopCustomers(ctx)
				return opts.report(orch, func(s dashboard.State) any {
					return s.TopCustomers
				})
			case id != "" && transactions:
				orch.LoadCustomerTransactions(ctx, id)
				return opts.report(orch, func(s dashboard.State) any {
					return s.CustomerTransactions
				})
			case id != "":
				orch.SetSearchCustomerID(id)
				orch.SearchCustomer(ctx)
				return opts.report(orch, func(s dashboard.State) any {
					return s.CustomerProfile
				})
			}

			orch.SetCustomersPage(page)
			orch.LoadCustomers(ctx)
			return opts.report(orch, func(s dashboard.State) any {
				return map[string]any{
					"page":        s.CustomersPage.Page,
					"total_pages": s.CustomersPage.TotalPages(s.TotalCustomers),
					"total":       s.TotalCustomers,
					"customers":   s.Customers,
				}
			})
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().BoolVar(&top, "top", false, "show the top customers by volume")
	cmd.Flags().StringVar(&id, "id", "", "show a customer profile")
	cmd.Flags().BoolVar(&transactions, "transactions", false, "with --id, list the customer's transactions")

	return cmd
}

func fraudCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fraud",
		Short: "Show the fraud summary and per-type breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator()
			if err != nil {
				return err
			}
			orch.LoadFraudData(cmd.Context())
			return opts.report(orch, func(s dashboard.State) any {
				return map[string]any{
					"fraud_summary": s.FraudSummary,
					"fraud_by_type": s.FraudByType,
				}
			})
		},
	}
}

func statsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show amount distribution, per-type and daily statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator()
			if err != nil {
				return err
			}
			orch.LoadStatsData(cmd.Context())
			return opts.report(orch, func(s dashboard.State) any {
				return map[string]any{
					"amount_distribution": s.AmountDistribution,
					"stats_by_type":       s.StatsByType,
					"daily_stats":         s.DailyStats,
					"daily_trend":         s.DailyTrend,
				}
			})
		},
	}
}

func predictCmd(opts *globalOptions) *cobra.Command {
	var form dashboard.PredictionForm

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score a hypothetical transaction with the fraud model",
		Long: `Score a hypothetical transaction with the fraud model.

Example:
  bankdash predict --amount 250 --mcc 5411 --state CA`,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator()
			if err != nil {
				return err
			}
			orch.SubmitPrediction(cmd.Context(), form)
			return opts.report(orch, func(s dashboard.State) any {
				return map[string]domain.Document{"prediction": s.FraudPrediction}
			})
		},
	}

	cmd.Flags().StringVar(&form.Amount, "amount", "", "transaction amount")
	cmd.Flags().StringVar(&form.MCC, "mcc", "", "merchant category code")
	cmd.Flags().StringVar(&form.MerchantState, "state", "", "merchant state")
	cmd.Flags().StringVar(&form.UseChip, "use-chip", dashboard.DefaultUseChip, "payment channel")

	return cmd
}
