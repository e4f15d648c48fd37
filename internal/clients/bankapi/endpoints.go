package bankapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aristath/bankdash/internal/domain"
)

// TransactionQuery holds paging and the optional filters of /api/transactions.
// Unset filters are omitted from the query string.
type TransactionQuery struct {
	Page          int
	Limit         int
	UseChip       string
	IsFraud       *int
	MinAmount     *domain.Money
	MaxAmount     *domain.Money
	MerchantState string
}

// Values encodes the query.
func (q TransactionQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.UseChip != "" {
		v.Set("use_chip", q.UseChip)
	}
	if q.IsFraud != nil {
		v.Set("isFraud", strconv.Itoa(*q.IsFraud))
	}
	if q.MinAmount != nil {
		v.Set("min_amount", q.MinAmount.String())
	}
	if q.MaxAmount != nil {
		v.Set("max_amount", q.MaxAmount.String())
	}
	if q.MerchantState != "" {
		v.Set("merchant_state", q.MerchantState)
	}
	return v
}

// TransactionPage is one page of raw transaction records.
type TransactionPage struct {
	Transactions []json.RawMessage `json:"transactions"`
	Total        int               `json:"total"`
}

// CustomerPage is one page of customers. Customers is left raw because the API
// returns either bare IDs or full records.
type CustomerPage struct {
	Customers json.RawMessage `json:"customers"`
	Total     int             `json:"total"`
}

func pageValues(page, limit int) url.Values {
	return url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
}

func decode[T any](raw json.RawMessage, method, endpoint string) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &TransportError{
			Method:   method,
			Endpoint: endpoint,
			Err:      fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return out, nil
}

func (c *Client) getAs(ctx context.Context, route, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, route, path, query, nil)
}

func (c *Client) getDocument(ctx context.Context, route, path string, query url.Values) (domain.Document, error) {
	raw, err := c.getAs(ctx, route, path, query)
	if err != nil {
		return nil, err
	}
	return decode[domain.Document](raw, http.MethodGet, path)
}

func (c *Client) getList(ctx context.Context, route, path string, query url.Values) ([]json.RawMessage, error) {
	raw, err := c.getAs(ctx, route, path, query)
	if err != nil {
		return nil, err
	}
	return decode[[]json.RawMessage](raw, http.MethodGet, path)
}

// Transactions

// GetTransactions returns a filtered page of transactions.
func (c *Client) GetTransactions(ctx context.Context, q TransactionQuery) (*TransactionPage, error) {
	raw, err := c.getAs(ctx, "/api/transactions", "/api/transactions", q.Values())
	if err != nil {
		return nil, err
	}
	page, err := decode[TransactionPage](raw, http.MethodGet, "/api/transactions")
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetTransactionTypes returns the payment channel labels.
func (c *Client) GetTransactionTypes(ctx context.Context) ([]string, error) {
	raw, err := c.getAs(ctx, "/api/transactions/types", "/api/transactions/types", nil)
	if err != nil {
		return nil, err
	}
	return decode[[]string](raw, http.MethodGet, "/api/transactions/types")
}

// GetRecentTransactions returns the n most recent transactions.
func (c *Client) GetRecentTransactions(ctx context.Context, n int) ([]json.RawMessage, error) {
	return c.getList(ctx, "/api/transactions/recent", "/api/transactions/recent",
		url.Values{"n": {strconv.Itoa(n)}})
}

// SearchTransactions posts free-form criteria.
func (c *Client) SearchTransactions(ctx context.Context, criteria domain.Document, page, limit int) (*TransactionPage, error) {
	const path = "/api/transactions/search"
	raw, err := c.do(ctx, http.MethodPost, path, path, pageValues(page, limit), criteria)
	if err != nil {
		return nil, err
	}
	result, err := decode[TransactionPage](raw, http.MethodPost, path)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTransactionsByCustomer returns a page of transactions made by a customer.
func (c *Client) GetTransactionsByCustomer(ctx context.Context, customerID, page, limit int) (*TransactionPage, error) {
	path := fmt.Sprintf("/api/transactions/by-customer/%d", customerID)
	raw, err := c.getAs(ctx, "/api/transactions/by-customer/{id}", path, pageValues(page, limit))
	if err != nil {
		return nil, err
	}
	result, err := decode[TransactionPage](raw, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTransactionsToCustomer returns transactions received by a customer.
func (c *Client) GetTransactionsToCustomer(ctx context.Context, customerID int) ([]json.RawMessage, error) {
	path := fmt.Sprintf("/api/transactions/to-customer/%d", customerID)
	return c.getList(ctx, "/api/transactions/to-customer/{id}", path, nil)
}

// GetTransaction returns one raw transaction.
func (c *Client) GetTransaction(ctx context.Context, id string) (json.RawMessage, error) {
	return c.getAs(ctx, "/api/transactions/{id}", "/api/transactions/"+url.PathEscape(id), nil)
}

// DeleteTransaction deletes a transaction. The API only allows this in test mode.
func (c *Client) DeleteTransaction(ctx context.Context, id string) (domain.Document, error) {
	path := "/api/transactions/" + url.PathEscape(id)
	raw, err := c.do(ctx, http.MethodDelete, "/api/transactions/{id}", path, nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[domain.Document](raw, http.MethodDelete, path)
}

// Customers

// GetCustomers returns a page of customers.
func (c *Client) GetCustomers(ctx context.Context, page, limit int) (*CustomerPage, error) {
	raw, err := c.getAs(ctx, "/api/customers", "/api/customers", pageValues(page, limit))
	if err != nil {
		return nil, err
	}
	result, err := decode[CustomerPage](raw, http.MethodGet, "/api/customers")
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTopCustomers returns the top n customers by volume, as IDs or records.
func (c *Client) GetTopCustomers(ctx context.Context, n int) (json.RawMessage, error) {
	return c.getAs(ctx, "/api/customers/top", "/api/customers/top", url.Values{"n": {strconv.Itoa(n)}})
}

// GetCustomerProfile returns a customer's profile document.
func (c *Client) GetCustomerProfile(ctx context.Context, customerID int) (domain.Document, error) {
	return c.getDocument(ctx, "/api/customers/{id}", fmt.Sprintf("/api/customers/%d", customerID), nil)
}

// Stats

func (c *Client) GetStatsOverview(ctx context.Context) (domain.Document, error) {
	return c.getDocument(ctx, "/api/stats/overview", "/api/stats/overview", nil)
}

func (c *Client) GetAmountDistribution(ctx context.Context, bins int) (domain.Document, error) {
	return c.getDocument(ctx, "/api/stats/amount-distribution", "/api/stats/amount-distribution",
		url.Values{"bins": {strconv.Itoa(bins)}})
}

func (c *Client) GetStatsByType(ctx context.Context) ([]json.RawMessage, error) {
	return c.getList(ctx, "/api/stats/by-type", "/api/stats/by-type", nil)
}

func (c *Client) GetDailyStats(ctx context.Context, limit int) ([]json.RawMessage, error) {
	return c.getList(ctx, "/api/stats/daily", "/api/stats/daily", url.Values{"limit": {strconv.Itoa(limit)}})
}

// Fraud

func (c *Client) GetFraudSummary(ctx context.Context) (domain.Document, error) {
	return c.getDocument(ctx, "/api/fraud/summary", "/api/fraud/summary", nil)
}

func (c *Client) GetFraudByType(ctx context.Context) ([]json.RawMessage, error) {
	return c.getList(ctx, "/api/fraud/by-type", "/api/fraud/by-type", nil)
}

// PredictFraud scores a hypothetical transaction.
func (c *Client) PredictFraud(ctx context.Context, req domain.PredictionRequest) (domain.Document, error) {
	const path = "/api/fraud/predict"
	raw, err := c.do(ctx, http.MethodPost, path, path, nil, req)
	if err != nil {
		return nil, err
	}
	return decode[domain.Document](raw, http.MethodPost, path)
}

// System

func (c *Client) GetHealth(ctx context.Context) (domain.Document, error) {
	return c.getDocument(ctx, "/api/system/health", "/api/system/health", nil)
}

func (c *Client) GetMetadata(ctx context.Context) (domain.Document, error) {
	return c.getDocument(ctx, "/api/system/metadata", "/api/system/metadata", nil)
}
