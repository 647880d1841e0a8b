package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/umar-saleem/points-ledger/internal/ledger"
	"github.com/umar-saleem/points-ledger/internal/models"
	"github.com/umar-saleem/points-ledger/internal/storage/memory"
)

func newTestServer() *Server {
	store := memory.NewStore()
	return NewServer(ledger.NewTransactor(store, store), zap.NewNop())
}

func doJSON(t *testing.T, s *Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	return resp, payload
}

func TestHealth(t *testing.T) {
	s := newTestServer()

	resp, _ := doJSON(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreditThenBalance(t *testing.T) {
	s := newTestServer()

	resp, body := doJSON(t, s, http.MethodPost, "/accounts/1/credit", `{"amount": 1500}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var account models.Account
	require.NoError(t, json.Unmarshal(body, &account))
	assert.Equal(t, int64(1), account.AccountID)
	assert.Equal(t, int64(1500), account.Balance)

	resp, body = doJSON(t, s, http.MethodGet, "/accounts/1/balance", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &account))
	assert.Equal(t, int64(1500), account.Balance)
}

func TestDebitInsufficientFunds(t *testing.T) {
	s := newTestServer()

	resp, body := doJSON(t, s, http.MethodPost, "/accounts/1/debit", `{"amount": 500}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var e errorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "INSUFFICIENT_FUNDS", e.Code)
}

func TestBalanceLimitExceeded(t *testing.T) {
	s := newTestServer()

	for i := 0; i < 10; i++ {
		resp, _ := doJSON(t, s, http.MethodPost, "/accounts/1/credit", `{"amount": 1000000}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := doJSON(t, s, http.MethodPost, "/accounts/1/credit", `{"amount": 100}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var e errorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "BALANCE_LIMIT_EXCEEDED", e.Code)
}

func TestInvalidAmounts(t *testing.T) {
	s := newTestServer()

	cases := []struct {
		name string
		path string
		body string
	}{
		{"fractional credit", "/accounts/1/credit", `{"amount": 10.5}`},
		{"zero credit", "/accounts/1/credit", `{"amount": 0}`},
		{"negative debit", "/accounts/1/debit", `{"amount": -100}`},
		{"credit above cap", "/accounts/1/credit", `{"amount": 1000001}`},
		{"debit off the unit grid", "/accounts/1/debit", `{"amount": 1050}`},
		{"not json", "/accounts/1/credit", `points please`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, s, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var e errorResponse
			require.NoError(t, json.Unmarshal(body, &e))
			assert.Equal(t, "INVALID_AMOUNT", e.Code)
		})
	}
}

func TestInvalidKeys(t *testing.T) {
	s := newTestServer()

	for _, path := range []string{
		"/accounts/0/balance",
		"/accounts/-4/balance",
		"/accounts/abc/balance",
	} {
		resp, body := doJSON(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)

		var e errorResponse
		require.NoError(t, json.Unmarshal(body, &e))
		assert.Equal(t, "INVALID_KEY", e.Code)
	}
}

func TestHistory(t *testing.T) {
	s := newTestServer()

	resp, body := doJSON(t, s, http.MethodGet, "/accounts/1/history", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	doJSON(t, s, http.MethodPost, "/accounts/1/credit", `{"amount": 1000}`)
	doJSON(t, s, http.MethodPost, "/accounts/1/debit", `{"amount": 300}`)

	resp, body = doJSON(t, s, http.MethodGet, "/accounts/1/history", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []models.LedgerEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, models.OperationCredit, entries[0].Kind)
	assert.Equal(t, int64(1000), entries[0].Amount)
	assert.Equal(t, models.OperationDebit, entries[1].Kind)
	assert.Equal(t, int64(300), entries[1].Amount)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()

	doJSON(t, s, http.MethodPost, "/accounts/1/credit", `{"amount": 1000}`)

	resp, body := doJSON(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "points_ledger_balance_operations_total")
}
