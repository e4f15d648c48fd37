package dashboard

// SetFilterUseChip sets the payment channel filter. "All" clears it.
func (o *Orchestrator) SetFilterUseChip(value string) {
	if value == FilterAll {
		value = ""
	}
	o.mutate(SectionTransactions, func(s *State) {
		s.TransactionsQuery.Filters.UseChip = value
	})
}

// SetFilterIsFraud maps the dropdown value to a 0/1 filter. Anything other than
// "Fraudulent" or "Legitimate" clears it.
func (o *Orchestrator) SetFilterIsFraud(value string) {
	var flag *int
	switch value {
	case FilterFraudulent:
		v := 1
		flag = &v
	case FilterLegitimate:
		v := 0
		flag = &v
	}
	o.mutate(SectionTransactions, func(s *State) {
		s.TransactionsQuery.Filters.IsFraud = flag
	})
}

// SetFilterMinAmount stores the raw minimum amount. It is validated on load.
func (o *Orchestrator) SetFilterMinAmount(value string) {
	o.mutate(SectionTransactions, func(s *State) {
		s.TransactionsQuery.Filters.MinAmount = value
	})
}

// SetFilterMaxAmount stores the raw maximum amount. It is validated on load.
func (o *Orchestrator) SetFilterMaxAmount(value string) {
	o.mutate(SectionTransactions, func(s *State) {
		s.TransactionsQuery.Filters.MaxAmount = value
	})
}

func (o *Orchestrator) SetFilterMerchantState(value string) {
	o.mutate(SectionTransactions, func(s *State) {
		s.TransactionsQuery.Filters.MerchantState = value
	})
}

// SetFilters replaces every filter at once, applying the same mappings as the
// individual setters.
func (o *Orchestrator) SetFilters(f TransactionFilters) {
	if f.UseChip == FilterAll {
		f.UseChip = ""
	}
	o.mutate(SectionTransactions, func(s *State) {
		s.TransactionsQuery.Filters = f
	})
}

// ResetFilters clears all filters and returns to page 1. It does not re-fetch.
func (o *Orchestrator) ResetFilters() {
	o.mutate(SectionTransactions, func(s *State) {
		s.TransactionsQuery.Filters.Reset()
		s.TransactionsQuery.Reset()
	})
}

// SetSearchCustomerID stores the raw customer search input.
func (o *Orchestrator) SetSearchCustomerID(value string) {
	o.mutate(SectionCustomers, func(s *State) {
		s.SearchCustomerID = value
	})
}

// IsFraudFilterValue maps a 0/1 filter back to its dropdown label.
func IsFraudFilterValue(flag *int) string {
	if flag == nil {
		return FilterAll
	}
	if *flag == 1 {
		return FilterFraudulent
	}
	return FilterLegitimate
}
