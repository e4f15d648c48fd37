package server

import (
	"context"
	"net/http"

	"github.com/aristath/bankdash/internal/dashboard"
	"github.com/aristath/bankdash/internal/domain"
	"github.com/go-chi/chi/v5"
)

type sessionKey struct{}

// sessionMiddleware resolves {sessionID}, answering 404 for unknown sessions and
// 429 once the session exceeds its request rate.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		sess, ok := s.sessions.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		if !sess.limiter.Allow() {
			s.log.Warn().Str("session_id", id).Msg("Session rate limit exceeded")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *Session {
	sess, _ := r.Context().Value(sessionKey{}).(*Session)
	return sess
}

// loadContext detaches a load from the request so a disconnecting client does
// not publish a cancellation error. The gateway applies its own deadline.
func loadContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// action runs op against the session's orchestrator and answers with the
// resulting snapshot.
func (s *Server) action(op func(ctx context.Context, o *dashboard.Orchestrator)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		op(loadContext(r), sess.Orchestrator)
		s.writeSnapshot(w, r, sess.Orchestrator.Snapshot())
	}
}

// POST /api/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	s.writeJSON(w, http.StatusCreated, map[string]string{"session_id": sess.ID})
}

// DELETE /api/sessions/{sessionID}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Remove(sessionFrom(r).ID)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/sessions/{sessionID}/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, r, sessionFrom(r))
}

func (s *Server) handleLoadDashboard(w http.ResponseWriter, r *http.Request) {
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.LoadDashboard(ctx)
	})(w, r)
}

// Transactions

func (s *Server) handleLoadTransactions(w http.ResponseWriter, r *http.Request) {
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.LoadTransactions(ctx)
	})(w, r)
}

func (s *Server) handleNextPage(w http.ResponseWriter, r *http.Request) {
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.NextPage(ctx)
	})(w, r)
}

func (s *Server) handlePrevPage(w http.ResponseWriter, r *http.Request) {
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.PrevPage(ctx)
	})(w, r)
}

func (s *Server) handleLoadTransactionTypes(w http.ResponseWriter, r *http.Request) {
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.LoadTransactionTypes(ctx)
	})(w, r)
}

// POST /api/sessions/{sessionID}/transactions/search
// The body is a JSON object of search criteria passed through to the banking API.
func (s *Server) handleSearchTransactions(w http.ResponseWriter, r *http.Request) {
	var criteria domain.Document
	if err := decodeBody(r, &criteria); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.SearchTransactions(ctx, criteria)
	})(w, r)
}

// filtersRequest carries the filter form. IsFraud is the dropdown label.
type filtersRequest struct {
	UseChip       string `json:"use_chip"`
	IsFraud       string `json:"is_fraud"`
	MinAmount     string `json:"min_amount"`
	MaxAmount     string `json:"max_amount"`
	MerchantState string `json:"merchant_state"`
}

// PUT /api/sessions/{sessionID}/transactions/filters
func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.action(func(_ context.Context, o *dashboard.Orchestrator) {
		o.SetFilterUseChip(req.UseChip)
		o.SetFilterIsFraud(req.IsFraud)
		o.SetFilterMinAmount(req.MinAmount)
		o.SetFilterMaxAmount(req.MaxAmount)
		o.SetFilterMerchantState(req.MerchantState)
	})(w, r)
}

func (s *Server) handleResetFilters(w http.ResponseWriter, r *http.Request) {
	s.action(func(_ context.Context, o *dashboard.Orchestrator) {
		o.ResetFilters()
	})(w, r)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "txID")
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.LoadTransaction(ctx, id)
	})(w, r)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "txID")
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.DeleteTransaction(ctx, id)
	})(w, r)
}

// Customers

func (s *Server) handleLoadCustomers(w http.ResponseWriter, r *http.Request) {
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.LoadCustomers(ctx)
	})(w, r)
}

func (s *Server) handleNextCustomersPage(w http.ResponseWriter, r *http.Request) {
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.NextCustomersPage(ctx)
	})(w, r)
}

func (s *Server) handlePrevCustomersPage(w http.ResponseWriter, r *http.Request) {
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.PrevCustomersPage(ctx)
	})(w, r)
}

func (s *Server) handleLoadTopCustomers(w http.ResponseWriter, r *http.Request) {
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.LoadTopCustomers(ctx)
	})(w, r)
}

type searchRequest struct {
	CustomerID string `json:"customer_id"`
}

// POST /api/sessions/{sessionID}/customers/search
func (s *Server) handleSearchCustomer(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.SetSearchCustomerID(req.CustomerID)
		o.SearchCustomer(ctx)
	})(w, r)
}

func (s *Server) handleClearCustomerProfile(w http.ResponseWriter, r *http.Request) {
	s.action(func(_ context.Context, o *dashboard.Orchestrator) {
		o.ClearCustomerProfile()
	})(w, r)
}

func (s *Server) handleGetCustomerProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "customerID")
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.LoadCustomerProfile(ctx, id)
	})(w, r)
}

func (s *Server) handleLoadCustomerTransactions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "customerID")
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.LoadCustomerTransactions(ctx, id)
	})(w, r)
}

// Fraud and stats

func (s *Server) handleLoadFraud(w http.ResponseWriter, r *http.Request) {
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.LoadFraudData(ctx)
	})(w, r)
}

// POST /api/sessions/{sessionID}/fraud/predict
// Form validation failures are reported through the snapshot's error message.
func (s *Server) handlePredictFraud(w http.ResponseWriter, r *http.Request) {
	var form dashboard.PredictionForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.SubmitPrediction(ctx, form)
	})(w, r)
}

func (s *Server) handleLoadStats(w http.ResponseWriter, r *http.Request) {
	s.action(func(ctx context.Context, o *dashboard.Orchestrator) {
		o.LoadStatsData(ctx)
	})(w, r)
}

type invalidateRequest struct {
	Keys []string `json:"keys"`
}

// POST /api/sessions/{sessionID}/cache/invalidate
// No keys invalidates everything.
func (s *Server) handleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.action(func(_ context.Context, o *dashboard.Orchestrator) {
		o.InvalidateCache(req.Keys...)
	})(w, r)
}
