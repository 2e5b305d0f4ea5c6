package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/gigpay/internal/auth"
	"github.com/nurpe/gigpay/internal/db"
	"github.com/nurpe/gigpay/internal/excel"
	"github.com/nurpe/gigpay/internal/http/middleware"
	"github.com/nurpe/gigpay/internal/metrics"
	"github.com/nurpe/gigpay/internal/pdf"
	"github.com/nurpe/gigpay/internal/repository"
	"github.com/nurpe/gigpay/internal/service"
)

type testServer struct {
	t      *testing.T
	router http.Handler
	parser *auth.Parser
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	database, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)

	engine, err := service.NewEngine(context.Background(), repository.NewStore(database), zerolog.Nop(), service.EngineOptions{
		Owner:       "owner",
		EscrowVault: "vault",
		FeeRate:     service.DefaultFeeRate,
		Metrics:     metrics.NewEngineMetrics(),
	})
	require.NoError(t, err)

	parser := auth.NewParser("test-secret")
	exports := service.NewExportService(engine, pdf.NewGenerator(), excel.NewGenerator())
	handler := NewHandler(engine, exports, zerolog.Nop())
	router := NewRouter(handler, middleware.Auth(parser), nil, "test", nil)

	return &testServer{t: t, router: router, parser: parser}
}

func (s *testServer) do(method, path, caller string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		token, err := s.parser.Issue(caller, time.Hour)
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func requireCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	require.Equal(t, code, decode(t, rec)["code"])
}

func TestContractFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/accounts/client/deposit", "owner", gin.H{"amount": 1_000_000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/contracts", "client", gin.H{
		"freelancer":   "freelancer",
		"title":        "Mobile app",
		"total_amount": 1_000_000,
		"deadline":     1735689600,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, float64(1), decode(t, rec)["contract_id"])

	rec = s.do(http.MethodPost, "/contracts/1/milestones", "client", gin.H{
		"milestone_id": 1,
		"description":  "MVP",
		"amount":       500_000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/contracts/1/milestones/1/approve", "freelancer", nil)
	requireCode(t, rec, http.StatusForbidden, "not_client")

	rec = s.do(http.MethodPost, "/contracts/1/milestones/1/submit", "freelancer", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/contracts/1/milestones/1/approve", "client", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/contracts/1/milestones/1/approve", "client", nil)
	requireCode(t, rec, http.StatusConflict, "invalid_status")

	rec = s.do(http.MethodGet, "/accounts/freelancer", "freelancer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(487_500), decode(t, rec)["balance"])

	rec = s.do(http.MethodGet, "/contracts/1/funds", "client", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(500_000), decode(t, rec)["escrowed_amount"])

	rec = s.do(http.MethodGet, "/contracts/1/ledger", "client", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["entries"], 3)

	rec = s.do(http.MethodGet, "/contracts", "freelancer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["contracts"], 1)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/contracts/1", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/contracts/1", "client", nil)
	requireCode(t, rec, http.StatusNotFound, "contract_not_found")

	rec = s.do(http.MethodGet, "/contracts/abc", "client", nil)
	requireCode(t, rec, http.StatusBadRequest, "invalid_input")

	rec = s.do(http.MethodPut, "/platform/fee", "owner", gin.H{"fee_rate": 1500})
	requireCode(t, rec, http.StatusBadRequest, "fee_exceeds_maximum")

	rec = s.do(http.MethodPut, "/platform/fee", "client", gin.H{"fee_rate": 100})
	requireCode(t, rec, http.StatusForbidden, "not_owner")

	rec = s.do(http.MethodPost, "/contracts", "client", gin.H{"freelancer": "freelancer", "title": "t", "total_amount": 10})
	requireCode(t, rec, http.StatusConflict, "insufficient_funds")

	rec = s.do(http.MethodPost, "/contracts", "client", gin.H{"freelancer": "freelancer", "title": "t", "total_amount": 0})
	requireCode(t, rec, http.StatusBadRequest, "insufficient_amount")

	rec = s.do(http.MethodPost, "/contracts", "client", gin.H{"title": "t"})
	requireCode(t, rec, http.StatusBadRequest, "invalid_input")
}

func TestPlatformFeeEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/platform/fee", "anyone", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(250), decode(t, rec)["fee_rate"])

	rec = s.do(http.MethodGet, "/platform/fee/calculate?amount=1000000", "anyone", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(25_000), decode(t, rec)["fee"])

	rec = s.do(http.MethodGet, "/platform/fee/calculate?amount=-5", "anyone", nil)
	requireCode(t, rec, http.StatusBadRequest, "invalid_input")
}

func TestDisputeAndRatingOverHTTP(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/accounts/client/deposit", "owner", gin.H{"amount": 100}).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/contracts", "client", gin.H{
		"freelancer": "freelancer", "title": "Logo", "total_amount": 100,
	}).Code)

	rec := s.do(http.MethodPost, "/contracts/1/dispute", "freelancer", gin.H{"reason": "scope creep"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/contracts/1/dispute/resolve", "owner", gin.H{"resolution": "freelancer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/contracts/1/dispute", "client", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "resolved", decode(t, rec)["status"])

	rec = s.do(http.MethodPost, "/contracts/1/rating", "client", gin.H{"score": 6})
	requireCode(t, rec, http.StatusBadRequest, "invalid_rating")
	rec = s.do(http.MethodPost, "/contracts/1/rating", "client", gin.H{"score": 5, "comment": "fast"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/contracts/1/rating", "client", gin.H{"score": 4})
	requireCode(t, rec, http.StatusConflict, "duplicate_rating")

	rec = s.do(http.MethodGet, "/contracts/1/rating", "freelancer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(5), decode(t, rec)["score"])
}

func TestExportsOverHTTP(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/accounts/client/deposit", "owner", gin.H{"amount": 100}).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/contracts", "client", gin.H{
		"freelancer": "freelancer", "title": "Brand Kit", "total_amount": 100,
	}).Code)

	rec := s.do(http.MethodGet, "/contracts/1/statement.pdf", "client", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "contract-1-brand-kit-statement.pdf")
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = s.do(http.MethodGet, "/contracts/1/ledger.xlsx", "owner", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "contract-1-brand-kit-ledger.xlsx")

	rec = s.do(http.MethodGet, "/contracts/1/statement.pdf", "stranger", nil)
	requireCode(t, rec, http.StatusForbidden, "not_party")
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRaiseDisputeAcceptsEmptyBody(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/accounts/client/deposit", "owner", gin.H{"amount": 100}).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/contracts", "client", gin.H{
		"freelancer": "freelancer", "title": "Copywriting", "total_amount": 100,
	}).Code)

	rec := s.do(http.MethodPost, "/contracts/1/dispute", "client", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/contracts/1/dispute", "client", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "", decode(t, rec)["reason"])

	req := httptest.NewRequest(http.MethodPost, "/contracts/1/dispute", bytes.NewBufferString("{not json"))
	token, err := s.parser.Issue("client", time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	requireCode(t, rec, http.StatusBadRequest, "invalid_input")
}

func TestBalanceReadableByHolderAndOwnerOnly(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/accounts/client/deposit", "owner", gin.H{"amount": 70})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(70), decode(t, rec)["balance"])

	rec = s.do(http.MethodGet, "/accounts/client", "client", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(70), decode(t, rec)["balance"])

	rec = s.do(http.MethodGet, "/accounts/client", "owner", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/accounts/client", "freelancer", nil)
	requireCode(t, rec, http.StatusForbidden, "not_holder")

	rec = s.do(http.MethodGet, "/accounts/vault", "freelancer", nil)
	requireCode(t, rec, http.StatusForbidden, "not_holder")
}

func TestOversizedAmountIsBadRequest(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/accounts/client/deposit", "owner", json.RawMessage(`{"amount": 9223372036854775808}`))
	requireCode(t, rec, http.StatusBadRequest, "amount_too_large")

	rec = s.do(http.MethodPost, "/contracts", "client", json.RawMessage(`{"freelancer": "freelancer", "title": "t", "total_amount": 18446744073709551615}`))
	requireCode(t, rec, http.StatusBadRequest, "amount_too_large")
}
