package dashboard

import (
	"errors"
	"fmt"
)

// Validation failures. Messages are shown to the user verbatim.
var (
	ErrInvalidMinAmount       = errors.New("Invalid minimum amount")
	ErrInvalidMaxAmount       = errors.New("Invalid maximum amount")
	ErrCustomerIDRequired     = errors.New("Please enter a customer ID")
	ErrCustomerIDNotNumeric   = errors.New("Customer ID must be a number")
	ErrTransactionIDRequired  = errors.New("Please enter a transaction ID")
	ErrSearchCriteriaRequired = errors.New("Please enter search criteria")
	ErrAmountRequired         = errors.New("Please enter an amount")
	ErrMCCRequired            = errors.New("Please enter a MCC code")
	ErrMerchantStateRequired  = errors.New("Please enter a merchant state")
	ErrInvalidPredictionInput = errors.New("Invalid input: Amount must be a number and MCC must be an integer")
)

func loadError(what string, err error) string {
	return fmt.Sprintf("Error loading %s: %v", what, err)
}

func customerNotFound(id string) string {
	return fmt.Sprintf("Customer %s not found", id)
}
