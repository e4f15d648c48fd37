package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aristath/bankdash/internal/cache"
	"github.com/aristath/bankdash/internal/clients/bankapi"
	"github.com/aristath/bankdash/internal/domain"
	"github.com/aristath/bankdash/internal/normalizer"
)

// LoadCustomers fetches the current customers page. When the API returns bare
// IDs, profiles are looked up concurrently and failed lookups are dropped;
// TotalCustomers still reports the API total. Customer pages are never cached.
func (o *Orchestrator) LoadCustomers(ctx context.Context) {
	var pager Pager
	o.read(func(s *State) {
		pager = s.CustomersPage
	})

	start := o.begin(SectionCustomers)
	defer o.end(SectionCustomers)

	page, err := o.api.GetCustomers(ctx, pager.Page, pager.PageSize)
	if err != nil {
		o.fail(SectionCustomers, loadError("customers", err))
		return
	}
	coll, err := normalizer.DecodeCustomerCollection(page.Customers)
	if err != nil {
		o.fail(SectionCustomers, loadError("customers", err))
		return
	}

	customers := o.normalizer.Customers(ctx, coll, o.api)
	o.update(func(s *State) {
		s.Customers = customers
		s.TotalCustomers = page.Total
	})

	calls := 1
	if coll.Kind == normalizer.KindIDs {
		calls += len(coll.IDs)
	}
	o.loaded(SectionCustomers, start, calls, nil)
}

// NextCustomersPage moves to the next customers page and re-fetches.
func (o *Orchestrator) NextCustomersPage(ctx context.Context) {
	var moved bool
	o.update(func(s *State) {
		moved = s.CustomersPage.Next(s.TotalCustomers)
	})
	if moved {
		o.LoadCustomers(ctx)
	}
}

// PrevCustomersPage moves to the previous customers page and re-fetches.
func (o *Orchestrator) PrevCustomersPage(ctx context.Context) {
	var moved bool
	o.update(func(s *State) {
		moved = s.CustomersPage.Prev()
	})
	if moved {
		o.LoadCustomers(ctx)
	}
}

// LoadTopCustomers fetches the top customers by volume. It does not toggle the
// loading flag.
func (o *Orchestrator) LoadTopCustomers(ctx context.Context) {
	var cached bool
	o.read(func(s *State) {
		cached = len(s.TopCustomers) > 0
	})
	if cached && o.cache.IsFresh(cache.KeyTopCustomers) {
		return
	}

	raw, err := o.api.GetTopCustomers(ctx, TopCustomersLimit)
	if err == nil {
		var coll normalizer.CustomerCollection
		coll, err = normalizer.DecodeCustomerCollection(raw)
		if err == nil {
			top := o.normalizer.Customers(ctx, coll, o.api)
			o.cache.Touch(cache.KeyTopCustomers)
			o.mutate(SectionCustomers, func(s *State) {
				s.TopCustomers = top
			})
			return
		}
	}

	o.fail(SectionCustomers, loadError("top customers", err))
	o.changed(SectionCustomers)
}

// parseCustomerID validates a user-entered customer ID.
func parseCustomerID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrCustomerIDRequired
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrCustomerIDNotNumeric
	}
	return id, nil
}

// SearchCustomer looks up the profile for SearchCustomerID.
func (o *Orchestrator) SearchCustomer(ctx context.Context) {
	var raw string
	o.read(func(s *State) {
		raw = s.SearchCustomerID
	})
	id, err := parseCustomerID(raw)
	if err != nil {
		o.reject(SectionCustomers, err)
		return
	}

	start := o.begin(SectionCustomers)
	defer o.end(SectionCustomers)

	profile, err := o.api.GetCustomerProfile(ctx, id)
	switch {
	case bankapi.IsNotFound(err), err == nil && len(profile) == 0:
		o.fail(SectionCustomers, customerNotFound(strings.TrimSpace(raw)))
		return
	case err != nil:
		o.fail(SectionCustomers, fmt.Sprintf("Error searching customer: %v", err))
		return
	}

	o.update(func(s *State) {
		s.CustomerProfile = profile
	})
	o.loaded(SectionCustomers, start, 1, nil)
}

// LoadCustomerProfile fetches a profile by ID.
func (o *Orchestrator) LoadCustomerProfile(ctx context.Context, customerID string) {
	id, err := parseCustomerID(customerID)
	if err != nil {
		o.reject(SectionCustomers, err)
		return
	}

	start := o.begin(SectionCustomers)
	defer o.end(SectionCustomers)

	profile, err := o.api.GetCustomerProfile(ctx, id)
	if err != nil {
		o.fail(SectionCustomers, loadError("customer profile", err))
		return
	}
	o.update(func(s *State) {
		s.CustomerProfile = profile
	})
	o.loaded(SectionCustomers, start, 1, nil)
}

// SetCustomerProfile publishes a profile directly. Nil or empty clears it.
func (o *Orchestrator) SetCustomerProfile(profile domain.Document) {
	if len(profile) == 0 {
		profile = nil
	}
	o.mutate(SectionCustomers, func(s *State) {
		s.CustomerProfile = profile
	})
}

// ClearCustomerProfile drops the profile and its transactions.
func (o *Orchestrator) ClearCustomerProfile() {
	o.mutate(SectionCustomers, func(s *State) {
		s.CustomerProfile = nil
		s.CustomerTransactions = nil
	})
}

// LoadCustomerTransactions fetches the first page of transactions made by a customer.
func (o *Orchestrator) LoadCustomerTransactions(ctx context.Context, customerID string) {
	id, err := parseCustomerID(customerID)
	if err != nil {
		o.reject(SectionCustomers, err)
		return
	}

	var pageSize int
	o.read(func(s *State) {
		pageSize = s.CustomersPage.PageSize
	})

	start := o.begin(SectionCustomers)
	defer o.end(SectionCustomers)

	page, err := o.api.GetTransactionsByCustomer(ctx, id, 1, pageSize)
	if err != nil {
		o.fail(SectionCustomers, loadError("customer transactions", err))
		return
	}
	txs := o.normalizer.Transactions(page.Transactions)
	o.update(func(s *State) {
		s.CustomerTransactions = txs
	})
	o.loaded(SectionCustomers, start, 1, nil)
}

// SetCustomersPage selects the page for the next load. Pages below 1 select the first page.
func (o *Orchestrator) SetCustomersPage(page int) {
	if page < 1 {
		page = 1
	}
	o.mutate(SectionCustomers, func(s *State) {
		s.CustomersPage.Page = page
	})
}
