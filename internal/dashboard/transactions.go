package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/aristath/bankdash/internal/analytics"
	"github.com/aristath/bankdash/internal/cache"
	"github.com/aristath/bankdash/internal/clients/bankapi"
	"github.com/aristath/bankdash/internal/domain"
	"github.com/aristath/bankdash/internal/events"
)

// transactionQuery builds the API query from the published filters, parsing
// the amount inputs.
func (o *Orchestrator) transactionQuery() (bankapi.TransactionQuery, error) {
	var q TransactionsQuery
	o.read(func(s *State) {
		q = s.TransactionsQuery
	})

	query := bankapi.TransactionQuery{
		Page:          q.Page,
		Limit:         q.PageSize,
		UseChip:       q.Filters.UseChip,
		IsFraud:       q.Filters.IsFraud,
		MerchantState: q.Filters.MerchantState,
	}
	if raw := strings.TrimSpace(q.Filters.MinAmount); raw != "" {
		amount, err := domain.ParseMoney(raw)
		if err != nil {
			return query, ErrInvalidMinAmount
		}
		query.MinAmount = &amount
	}
	if raw := strings.TrimSpace(q.Filters.MaxAmount); raw != "" {
		amount, err := domain.ParseMoney(raw)
		if err != nil {
			return query, ErrInvalidMaxAmount
		}
		query.MaxAmount = &amount
	}
	return query, nil
}

// LoadTransactions fetches the current page with the current filters. Amount
// filters are validated first; invalid input aborts before any request.
// Transaction pages are never cached.
func (o *Orchestrator) LoadTransactions(ctx context.Context) {
	query, err := o.transactionQuery()
	if err != nil {
		o.reject(SectionTransactions, err)
		return
	}

	start := o.begin(SectionTransactions)
	defer o.end(SectionTransactions)

	page, err := o.api.GetTransactions(ctx, query)
	if err != nil {
		o.fail(SectionTransactions, loadError("transactions", err))
		return
	}

	txs := o.normalizer.Transactions(page.Transactions)
	summary := analytics.SummarizeAmounts(txs)
	o.update(func(s *State) {
		s.Transactions = txs
		s.TotalTransactions = page.Total
		s.TransactionsSummary = summary
	})
	o.loaded(SectionTransactions, start, 1, nil)
}

// SearchTransactions posts free-form criteria to the search endpoint and
// publishes the first page of matches in place of the transactions page.
// Paging afterwards returns to the filtered listing. Results are never cached.
func (o *Orchestrator) SearchTransactions(ctx context.Context, criteria domain.Document) {
	if len(criteria) == 0 {
		o.reject(SectionTransactions, ErrSearchCriteriaRequired)
		return
	}

	var pageSize int
	o.update(func(s *State) {
		s.TransactionsQuery.Reset()
		pageSize = s.TransactionsQuery.PageSize
	})

	start := o.begin(SectionTransactions)
	defer o.end(SectionTransactions)

	page, err := o.api.SearchTransactions(ctx, criteria, 1, pageSize)
	if err != nil {
		o.fail(SectionTransactions, fmt.Sprintf("Error searching transactions: %v", err))
		return
	}

	txs := o.normalizer.Transactions(page.Transactions)
	summary := analytics.SummarizeAmounts(txs)
	o.update(func(s *State) {
		s.Transactions = txs
		s.TotalTransactions = page.Total
		s.TransactionsSummary = summary
	})
	o.loaded(SectionTransactions, start, 1, nil)
}

// LoadTransactionTypes fetches the payment channel labels. It does not toggle
// the loading flag.
func (o *Orchestrator) LoadTransactionTypes(ctx context.Context) {
	var cached bool
	o.read(func(s *State) {
		cached = len(s.TransactionTypes) > 0
	})
	if cached && o.cache.IsFresh(cache.KeyTransactionTypes) {
		return
	}

	types, err := o.api.GetTransactionTypes(ctx)
	if err != nil {
		o.fail(SectionTransactions, loadError("transaction types", err))
		o.changed(SectionTransactions)
		return
	}
	if types == nil {
		types = []string{}
	}
	o.cache.Touch(cache.KeyTransactionTypes)
	o.mutate(SectionTransactions, func(s *State) {
		s.TransactionTypes = types
	})
}

// NextPage moves to the next transactions page and re-fetches. No-op on the
// last page or when the page size is not positive.
func (o *Orchestrator) NextPage(ctx context.Context) {
	var moved bool
	o.update(func(s *State) {
		moved = s.TransactionsQuery.Next(s.TotalTransactions)
	})
	if moved {
		o.LoadTransactions(ctx)
	}
}

// PrevPage moves to the previous transactions page and re-fetches. No-op on page 1.
func (o *Orchestrator) PrevPage(ctx context.Context) {
	var moved bool
	o.update(func(s *State) {
		moved = s.TransactionsQuery.Prev()
	})
	if moved {
		o.LoadTransactions(ctx)
	}
}

// LoadTransaction fetches a single transaction into SelectedTransaction.
func (o *Orchestrator) LoadTransaction(ctx context.Context, id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		o.reject(SectionTransactions, ErrTransactionIDRequired)
		return
	}

	start := o.begin(SectionTransactions)
	defer o.end(SectionTransactions)

	raw, err := o.api.GetTransaction(ctx, id)
	if err != nil {
		o.fail(SectionTransactions, loadError("transaction", err))
		return
	}
	tx, err := o.normalizer.Transaction(raw)
	if err != nil {
		o.fail(SectionTransactions, loadError("transaction", fmt.Errorf("invalid transaction %s: %w", id, err)))
		return
	}
	o.update(func(s *State) {
		s.SelectedTransaction = &tx
	})
	o.loaded(SectionTransactions, start, 1, nil)
}

// DeleteTransaction deletes a transaction, then invalidates every cache key
// and reloads the current page. Nothing is removed locally before the API
// confirms.
func (o *Orchestrator) DeleteTransaction(ctx context.Context, id string) {
	if !o.deleteTransaction(ctx, id) {
		return
	}
	o.LoadTransactions(ctx)
}

func (o *Orchestrator) deleteTransaction(ctx context.Context, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		o.reject(SectionTransactions, ErrTransactionIDRequired)
		return false
	}

	start := o.begin(SectionTransactions)
	defer o.end(SectionTransactions)

	if _, err := o.api.DeleteTransaction(ctx, id); err != nil {
		o.fail(SectionTransactions, fmt.Sprintf("Error deleting transaction: %v", err))
		return false
	}

	o.cache.Invalidate()
	o.events.Emit(SectionTransactions, &events.CacheInvalidatedData{})
	o.update(func(s *State) {
		if s.SelectedTransaction != nil && string(s.SelectedTransaction.ID) == id {
			s.SelectedTransaction = nil
		}
	})
	o.loaded(SectionTransactions, start, 1, nil)
	return true
}

// ClearSelectedTransaction drops the selected transaction.
func (o *Orchestrator) ClearSelectedTransaction() {
	o.mutate(SectionTransactions, func(s *State) {
		s.SelectedTransaction = nil
	})
}

// SetTransactionsPage selects the page for the next load. Pages below 1 select the first page.
func (o *Orchestrator) SetTransactionsPage(page int) {
	if page < 1 {
		page = 1
	}
	o.mutate(SectionTransactions, func(s *State) {
		s.TransactionsQuery.Page = page
	})
}
