package dashboard

import (
	"github.com/aristath/bankdash/internal/analytics"
	"github.com/aristath/bankdash/internal/cache"
	"github.com/aristath/bankdash/internal/domain"
)

// TransactionFilters are the user-entered predicates for the transactions page.
// Amounts stay raw strings until a load validates them.
type TransactionFilters struct {
	UseChip       string `json:"use_chip"`
	IsFraud       *int   `json:"is_fraud"`
	MinAmount     string `json:"min_amount"`
	MaxAmount     string `json:"max_amount"`
	MerchantState string `json:"merchant_state"`
}

// Reset clears every predicate.
func (f *TransactionFilters) Reset() {
	*f = TransactionFilters{}
}

// TransactionsQuery is the paging and filter state of the transactions page.
type TransactionsQuery struct {
	Pager
	Filters TransactionFilters `json:"filters"`
}

// State is everything the dashboard publishes. Collections are replaced
// wholesale on every fetch and never mutated in place, so a shallow copy is
// safe to hand out.
type State struct {
	IsLoading    bool   `json:"is_loading"`
	ErrorMessage string `json:"error_message"`

	// Dashboard
	StatsOverview      domain.Document      `json:"stats_overview"`
	SystemHealth       domain.Document      `json:"system_health"`
	SystemMetadata     domain.Document      `json:"system_metadata"`
	RecentTransactions []domain.Transaction `json:"recent_transactions"`

	// Transactions
	Transactions        []domain.Transaction `json:"transactions"`
	TotalTransactions   int                  `json:"total_transactions"`
	TransactionTypes    []string             `json:"transaction_types"`
	TransactionsQuery   TransactionsQuery    `json:"transactions_query"`
	TransactionsSummary analytics.Summary    `json:"transactions_summary"`
	SelectedTransaction *domain.Transaction  `json:"selected_transaction"`

	// Customers
	Customers            []domain.Customer    `json:"customers"`
	TotalCustomers       int                  `json:"total_customers"`
	CustomersPage        Pager                `json:"customers_page"`
	TopCustomers         []domain.Customer    `json:"top_customers"`
	CustomerProfile      domain.Document      `json:"customer_profile"`
	CustomerTransactions []domain.Transaction `json:"customer_transactions"`
	SearchCustomerID     string               `json:"search_customer_id"`

	// Fraud
	FraudSummary    domain.Document    `json:"fraud_summary"`
	FraudByType     []domain.FraudStat `json:"fraud_by_type"`
	FraudPrediction domain.Document    `json:"fraud_prediction"`
	MerchantStates  []string           `json:"merchant_states"`
	MCCCodes        []string           `json:"mcc_codes"`

	// Stats
	AmountDistribution domain.Document        `json:"amount_distribution"`
	StatsByType        []domain.TypeStat      `json:"stats_by_type"`
	DailyStats         []domain.DailyStat     `json:"daily_stats"`
	DailyTrend         []analytics.TrendPoint `json:"daily_trend"`

	Cache []cache.Entry `json:"cache"`
}

func newState(pageSize int) State {
	return State{
		TransactionsQuery: TransactionsQuery{Pager: NewPager(pageSize)},
		CustomersPage:     NewPager(pageSize),
		MerchantStates:    append([]string(nil), USStates...),
		MCCCodes:          append([]string(nil), CommonMCCCodes...),
	}
}
