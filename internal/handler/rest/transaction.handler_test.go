package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transaction-analyzer/internal/service"
	"transaction-analyzer/models"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*httptest.Server, *service.TransactionAnalyzer) {
	t.Helper()
	analyzer := service.NewTransactionAnalyzer([]models.Transaction{
		{ID: "1", Date: "2019-01-01", Amount: 100, Type: models.TransactionTypeDebit, Description: "groceries", MerchantName: "SuperMart", CardType: "Visa"},
		{ID: "2", Date: "2019-01-20", Amount: 50, Type: models.TransactionTypeCredit, Description: "refund", MerchantName: "Super Mart", CardType: "Amex"},
		{ID: "3", Date: "2019-02-03", Amount: 150, Type: models.TransactionTypeDebit, Description: "shoes", MerchantName: "SuperMart", CardType: "Visa"},
	})
	h := NewTransactionRestHandler(analyzer, service.NewReportService(analyzer), nil)
	srv := httptest.NewServer(h.Router([]string{"*"}))
	t.Cleanup(srv.Close)
	return srv, analyzer
}

func doRequest(t *testing.T, method, url, body string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	if len(env.Data) == 0 {
		return out
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestListAndLookup(t *testing.T) {
	srv, _ := newTestServer(t)

	status, env := doRequest(t, http.MethodGet, srv.URL+"/transactions", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", env.Status)
	assert.Len(t, decodeData[[]models.Transaction](t, env), 3)

	status, env = doRequest(t, http.MethodGet, srv.URL+"/transactions/3", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "shoes", decodeData[models.Transaction](t, env).Description)

	status, env = doRequest(t, http.MethodGet, srv.URL+"/transactions/42", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "error", env.Status)
}

func TestFilters(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name    string
		path    string
		wantIDs []string
	}{
		{name: "by type", path: "/transactions/type/debit", wantIDs: []string{"1", "3"}},
		{name: "unknown type", path: "/transactions/type/refund", wantIDs: []string{}},
		{name: "by merchant", path: "/transactions/merchant/SuperMart", wantIDs: []string{"1", "3"}},
		{name: "merchant with space", path: "/transactions/merchant/Super%20Mart", wantIDs: []string{"2"}},
		{name: "date range", path: "/transactions/range?start=2019-01-01&end=2019-01-31", wantIDs: []string{"1", "2"}},
		{name: "before", path: "/transactions/before?date=2019-01-20", wantIDs: []string{"1"}},
		{name: "amount range", path: "/transactions/amount?min=50&max=100", wantIDs: []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, http.MethodGet, srv.URL+tt.path, "")
			require.Equal(t, http.StatusOK, status)

			got := decodeData[[]models.Transaction](t, env)
			ids := []string{}
			for _, tx := range got {
				ids = append(ids, tx.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestBadQueryParameters(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{
		"/transactions/range?start=2019-01-01",
		"/transactions/range?start=yesterday&end=2019-01-01",
		"/transactions/before",
		"/transactions/amount?min=abc&max=1",
		"/stats/total?month=13",
		"/stats/total?year=abc",
		"/stats/busiest-month?type=credit",
	} {
		status, env := doRequest(t, http.MethodGet, srv.URL+path, "")
		assert.Equal(t, http.StatusBadRequest, status, path)
		assert.Equal(t, "error", env.Status, path)
	}
}

func TestStats(t *testing.T) {
	srv, _ := newTestServer(t)

	_, env := doRequest(t, http.MethodGet, srv.URL+"/stats/total", "")
	assert.Equal(t, 300.0, decodeData[map[string]float64](t, env)["total_amount"])

	_, env = doRequest(t, http.MethodGet, srv.URL+"/stats/total?year=2019&month=1", "")
	assert.Equal(t, 150.0, decodeData[map[string]float64](t, env)["total_amount"])

	_, env = doRequest(t, http.MethodGet, srv.URL+"/stats/average", "")
	assert.Equal(t, 100.0, decodeData[map[string]float64](t, env)["average_amount"])

	_, env = doRequest(t, http.MethodGet, srv.URL+"/stats/debit-total", "")
	assert.Equal(t, 250.0, decodeData[map[string]float64](t, env)["total_debit_amount"])

	_, env = doRequest(t, http.MethodGet, srv.URL+"/stats/busiest-month", "")
	assert.Equal(t, 1, decodeData[map[string]int](t, env)["month"])

	_, env = doRequest(t, http.MethodGet, srv.URL+"/stats/busiest-month?type=debit", "")
	assert.Equal(t, 1, decodeData[map[string]int](t, env)["month"])

	_, env = doRequest(t, http.MethodGet, srv.URL+"/stats/dominant-type", "")
	assert.Equal(t, "debit", decodeData[map[string]string](t, env)["dominant_type"])

	_, env = doRequest(t, http.MethodGet, srv.URL+"/transactions/types", "")
	assert.Equal(t, []string{"debit", "credit"}, decodeData[[]string](t, env))

	_, env = doRequest(t, http.MethodGet, srv.URL+"/transactions/descriptions", "")
	assert.Equal(t, []string{"groceries", "refund", "shoes"}, decodeData[[]string](t, env))

	_, env = doRequest(t, http.MethodGet, srv.URL+"/stats/summary", "")
	sum := decodeData[service.Summary](t, env)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, models.DominantDebit, sum.DominantType)
}

func TestAddTransaction(t *testing.T) {
	srv, analyzer := newTestServer(t)

	body := `{
		"transaction_id": "4",
		"transaction_date": "2019-03-01",
		"transaction_amount": 12.5,
		"transaction_type": "credit",
		"transaction_description": "cashback",
		"merchant_name": "Bank",
		"card_type": "Visa"
	}`
	status, env := doRequest(t, http.MethodPost, srv.URL+"/transactions", body)

	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, 4, analyzer.Count())
	got, ok := analyzer.FindTransactionByID("4")
	require.True(t, ok)
	assert.Equal(t, 12.5, got.Amount)
}

func TestAddTransactionValidationErrors(t *testing.T) {
	srv, analyzer := newTestServer(t)

	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{name: "malformed json", body: `{"transaction_id":`, wantMessage: "invalid request body"},
		{name: "missing field", body: `{"transaction_id":"9"}`, wantMessage: "transaction_date"},
		{
			name:        "invalid type",
			body:        `{"transaction_id":"9","transaction_date":"2019-01-01","transaction_amount":1,"transaction_type":"refund","transaction_description":"d","merchant_name":"m","card_type":"c"}`,
			wantMessage: "invalid transaction type",
		},
		{
			name:        "string amount",
			body:        `{"transaction_id":"9","transaction_date":"2019-01-01","transaction_amount":"1","transaction_type":"debit","transaction_description":"d","merchant_name":"m","card_type":"c"}`,
			wantMessage: "non-negative number",
		},
		{
			name:        "negative amount",
			body:        `{"transaction_id":"9","transaction_date":"2019-01-01","transaction_amount":-5,"transaction_type":"debit","transaction_description":"d","merchant_name":"m","card_type":"c"}`,
			wantMessage: "non-negative number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, http.MethodPost, srv.URL+"/transactions", tt.body)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "error", env.Status)
			assert.Contains(t, env.Message, tt.wantMessage)
			assert.Equal(t, 3, analyzer.Count())
		})
	}
}
