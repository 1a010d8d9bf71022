package yieldagent_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	yieldagent "github.com/vitwit/yieldagent"
	"github.com/vitwit/yieldagent/logger"
	"github.com/vitwit/yieldagent/metrics"
	"github.com/vitwit/yieldagent/types"
)

const validClaim = `{"txHash":"abc123","amount":0.001}`

func newTestAgent(t *testing.T, opts ...yieldagent.Option) *yieldagent.Agent {
	t.Helper()
	agent, err := yieldagent.NewWithDefaults(opts...)
	require.NoError(t, err)
	return agent
}

func do(t *testing.T, agent http.Handler, method, path, payment string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if payment != "" {
		req.Header.Set(yieldagent.HeaderPayment, payment)
	}
	w := httptest.NewRecorder()
	agent.ServeHTTP(w, req)
	return w
}

func assertCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "X-Payment", w.Header().Get("Access-Control-Allow-Headers"))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestPreflight_AnyPathReturnsEmpty200(t *testing.T) {
	agent := newTestAgent(t)

	for _, path := range []string{"/", "/health", "/x402-info", "/nope", "/deep/path"} {
		w := do(t, agent, http.MethodOptions, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Empty(t, w.Body.Bytes(), path)
		assertCORS(t, w)
	}
}

func TestPreflight_IgnoresPaymentHeader(t *testing.T) {
	agent := newTestAgent(t)

	w := do(t, agent, http.MethodOptions, "/", "not-json")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHealth(t *testing.T) {
	agent := newTestAgent(t)

	w := do(t, agent, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assertCORS(t, w)
}

func TestInfo_AdvertisesSingleSolanaRequirement(t *testing.T) {
	agent := newTestAgent(t)

	w := do(t, agent, http.MethodGet, "/x402-info", "")
	require.Equal(t, http.StatusOK, w.Code)
	assertCORS(t, w)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.ElementsMatch(t, []string{"protocolVersion", "accepts"}, keys(raw))
	assert.Equal(t, float64(1), raw["protocolVersion"])
	accepts, ok := raw["accepts"].([]any)
	require.True(t, ok)
	require.Len(t, accepts, 1)

	var body types.X402Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.ProtocolVersion)
	require.Len(t, body.Accepts, 1)

	req := body.Accepts[0]
	assert.Equal(t, "exact", req.Scheme)
	assert.Equal(t, "solana", req.Network)
	assert.Equal(t, "0.001", req.MaxAmountRequired)
	assert.Equal(t, "SOL", req.Asset)
	assert.Equal(t, types.DefaultPaymentAddress, req.PayTo)
	assert.Equal(t, types.DefaultDescription, req.Description)
	assert.Equal(t, 3600, req.MaxTimeoutSeconds)
}

func TestRoot_NoClaimServesLandingPage(t *testing.T) {
	agent := newTestAgent(t)

	w := do(t, agent, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), types.DefaultPaymentAddress)
	assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")
	assert.Empty(t, w.Header().Get(yieldagent.HeaderPaymentVerified))
	assertCORS(t, w)
}

func TestRoot_LandingPageListsCatalogAndPrice(t *testing.T) {
	agent := newTestAgent(t)

	body := do(t, agent, http.MethodGet, "/", "").Body.String()
	for _, name := range agent.Catalog().Protocols() {
		assert.Contains(t, body, name)
	}
	assert.Contains(t, body, "0.001 SOL")
	assert.Contains(t, body, "Solana Mainnet")
	assert.Contains(t, body, "amount: 0.001 }")
}

func TestRoot_ValidClaimUnlocksCatalog(t *testing.T) {
	fixed := time.Date(2026, 10, 18, 9, 30, 15, 123000000, time.UTC)
	agent := newTestAgent(t, yieldagent.WithClock(func() time.Time { return fixed }))

	w := do(t, agent, http.MethodGet, "/", validClaim)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get(yieldagent.HeaderPaymentVerified))
	assertCORS(t, w)

	var body types.YieldResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data.Opportunities, 5)
	assert.Equal(t, "Solana", body.Data.Network)
	assert.Equal(t, "2026-10-18T09:30:15.123Z", body.Data.LastUpdated)
	assert.Equal(t, "Kamino", body.Data.Opportunities[0].Protocol)
	assert.Equal(t, types.RiskMedium, body.Data.Opportunities[2].Risk)
}

func TestRoot_ValidClaimBodyShape(t *testing.T) {
	agent := newTestAgent(t)

	w := do(t, agent, http.MethodGet, "/", validClaim)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, true, raw["success"])

	data, ok := raw["data"].(map[string]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"opportunities", "network", "lastUpdated"}, keys(data))

	first := data["opportunities"].([]any)[0].(map[string]any)
	assert.ElementsMatch(t, []string{"id", "protocol", "apy", "risk", "tvl", "asset"}, keys(first))
	assert.Equal(t, float64(1), first["id"])
}

func TestRoot_ClaimOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		payment string
		status  int
		errMsg  string
	}{
		{"wrong amount", `{"txHash":"abc123","amount":0.002}`, http.StatusPaymentRequired, "Invalid"},
		{"not json", `not-json`, http.StatusPaymentRequired, "Bad header"},
		{"truncated json", `{"txHash":"abc123"`, http.StatusPaymentRequired, "Bad header"},
		{"json null", `null`, http.StatusPaymentRequired, "Bad header"},
		{"missing tx hash", `{"amount":0.001}`, http.StatusPaymentRequired, "Invalid"},
		{"empty tx hash", `{"txHash":"","amount":0.001}`, http.StatusPaymentRequired, "Invalid"},
		{"missing amount", `{"txHash":"abc123"}`, http.StatusPaymentRequired, "Invalid"},
		{"string amount", `{"txHash":"abc123","amount":"0.001"}`, http.StatusPaymentRequired, "Invalid"},
		{"numeric tx hash", `{"txHash":42,"amount":0.001}`, http.StatusPaymentRequired, "Invalid"},
		{"boolean tx hash", `{"txHash":true,"amount":0.001}`, http.StatusPaymentRequired, "Invalid"},
		{"array", `[1,2]`, http.StatusPaymentRequired, "Invalid"},
		{"bare number", `0.001`, http.StatusPaymentRequired, "Invalid"},
		{"overpaid", `{"txHash":"abc123","amount":1}`, http.StatusPaymentRequired, "Invalid"},
	}

	agent := newTestAgent(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, agent, http.MethodGet, "/", tt.payment)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.errMsg, decodeError(t, w))
			assert.Empty(t, w.Header().Get(yieldagent.HeaderPaymentVerified))
			assertCORS(t, w)
		})
	}
}

func TestRoot_EquivalentAmountLiteralsAccepted(t *testing.T) {
	agent := newTestAgent(t)

	for _, payment := range []string{
		`{"txHash":"abc123","amount":0.0010}`,
		`{"txHash":"abc123","amount":1e-3}`,
		` {"amount":0.001,"txHash":"abc123","extra":true} `,
	} {
		w := do(t, agent, http.MethodGet, "/", payment)
		assert.Equal(t, http.StatusOK, w.Code, payment)
	}
}

func TestUnknownRoute_Returns404(t *testing.T) {
	agent := newTestAgent(t)

	for _, path := range []string{"/anything-unmatched", "/health/", "/x402-info/extra", "/HEALTH"} {
		w := do(t, agent, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "Not found", decodeError(t, w))
		assertCORS(t, w)
	}
}

func TestRoutesMatchOnPathForAnyNonPreflightMethod(t *testing.T) {
	agent := newTestAgent(t)

	w := do(t, agent, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, agent, http.MethodDelete, "/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoot_RepeatedClaimReturnsSameCatalog(t *testing.T) {
	agent := newTestAgent(t)

	var first, second types.YieldResponse
	require.NoError(t, json.Unmarshal(do(t, agent, http.MethodGet, "/", validClaim).Body.Bytes(), &first))
	require.NoError(t, json.Unmarshal(do(t, agent, http.MethodGet, "/", validClaim).Body.Bytes(), &second))

	assert.Equal(t, first.Data.Opportunities, second.Data.Opportunities)
	for _, ts := range []string{first.Data.LastUpdated, second.Data.LastUpdated} {
		_, err := time.Parse(time.RFC3339Nano, ts)
		assert.NoError(t, err, ts)
	}
}

func TestConcurrentRequests(t *testing.T) {
	agent := newTestAgent(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payment := validClaim
			want := http.StatusOK
			if i%2 == 1 {
				payment = "not-json"
				want = http.StatusPaymentRequired
			}
			w := do(t, agent, http.MethodGet, "/", payment)
			assert.Equal(t, want, w.Code)
		}(i)
	}
	wg.Wait()
}

type stubVerifier struct {
	result *types.VerificationResult
	err    error
	claims []*types.PaymentClaim
}

func (s *stubVerifier) Verify(_ context.Context, claim *types.PaymentClaim) (*types.VerificationResult, error) {
	s.claims = append(s.claims, claim)
	return s.result, s.err
}

func TestWithVerifier_ReplacesPredicate(t *testing.T) {
	stub := &stubVerifier{result: &types.VerificationResult{IsValid: true, TxHash: "anything"}}
	agent := newTestAgent(t, yieldagent.WithVerifier(stub))

	w := do(t, agent, http.MethodGet, "/", `{"txHash":"","amount":5}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, stub.claims, 1)
	assert.Equal(t, "5", stub.claims[0].Amount.String())
}

func TestWithVerifier_ErrorBecomesInvalid(t *testing.T) {
	stub := &stubVerifier{err: errors.New("ledger unreachable")}
	agent := newTestAgent(t, yieldagent.WithVerifier(stub))

	w := do(t, agent, http.MethodGet, "/", validClaim)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "Invalid", decodeError(t, w))
}

func observedAgent(t *testing.T, opts ...yieldagent.Option) (*yieldagent.Agent, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	opts = append(opts, yieldagent.WithLogger(logger.NewZapLoggerFrom(zap.New(core))))
	return newTestAgent(t, opts...), logs
}

func TestWithVerifier_ErrorLoggedAsInvalidClaim(t *testing.T) {
	stub := &stubVerifier{err: errors.New("ledger unreachable")}
	agent, logs := observedAgent(t, yieldagent.WithVerifier(stub))

	do(t, agent, http.MethodGet, "/", validClaim)

	entries := logs.FilterMessage("payment claim verification failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, types.ErrInvalidClaim, fields["code"])
	assert.Contains(t, fields["error"], "ledger unreachable")
	assert.NotEmpty(t, fields["request_id"])
}

func TestLogs_CarryErrorCodes(t *testing.T) {
	agent, logs := observedAgent(t)

	do(t, agent, http.MethodGet, "/missing", "")
	do(t, agent, http.MethodGet, "/", "not-json")
	do(t, agent, http.MethodGet, "/", `{"txHash":"abc123","amount":0.002}`)

	notFound := logs.FilterMessage("route not found").All()
	require.Len(t, notFound, 1)
	assert.Equal(t, types.ErrRouteNotFound, notFound[0].ContextMap()["code"])
	assert.Equal(t, "/missing", notFound[0].ContextMap()["path"])

	malformed := logs.FilterMessage("malformed payment claim").All()
	require.Len(t, malformed, 1)
	assert.Equal(t, zapcore.WarnLevel, malformed[0].Level)
	assert.Equal(t, types.ErrMalformedClaim, malformed[0].ContextMap()["code"])

	rejected := logs.FilterMessage("payment claim rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, types.ErrInvalidClaim, rejected[0].ContextMap()["code"])
}

type recordingMetrics struct {
	mu        sync.Mutex
	counters  map[string]int
	latencies int
}

func (r *recordingMetrics) IncCounter(name string, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counters == nil {
		r.counters = map[string]int{}
	}
	r.counters[name+"/"+labels["network"]]++
}

func (r *recordingMetrics) ObserveLatency(string, time.Duration, map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latencies++
}

func TestMetricsRecordedPerOutcome(t *testing.T) {
	rec := &recordingMetrics{}
	agent := newTestAgent(t, yieldagent.WithMetrics(rec))

	do(t, agent, http.MethodGet, "/", validClaim)
	do(t, agent, http.MethodGet, "/", `{"txHash":"abc123","amount":0.002}`)
	do(t, agent, http.MethodGet, "/", "not-json")
	do(t, agent, http.MethodGet, "/missing", "")

	assert.Equal(t, 4, rec.counters[metrics.EventRequest+"/solana"])
	assert.Equal(t, 1, rec.counters[metrics.EventClaimAccepted+"/solana"])
	assert.Equal(t, 1, rec.counters[metrics.EventClaimRejected+"/solana"])
	assert.Equal(t, 1, rec.counters[metrics.EventClaimMalformed+"/solana"])
	assert.Equal(t, 1, rec.counters[metrics.EventNotFound+"/solana"])
	assert.Equal(t, 4, rec.latencies)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := types.DefaultAgentConfig()
	cfg.PaymentAddress = "not-a-solana-address"

	_, err := yieldagent.New(cfg)
	require.Error(t, err)

	var x402Err *types.X402Error
	require.ErrorAs(t, err, &x402Err)
	assert.Equal(t, types.ErrConfigError, x402Err.Code)
}

func TestNew_CopiesConfig(t *testing.T) {
	cfg := types.DefaultAgentConfig()
	agent, err := yieldagent.New(cfg)
	require.NoError(t, err)

	cfg.PaymentAmount = "5"
	assert.Equal(t, "0.001", agent.Requirements().MaxAmountRequired)
	assert.Equal(t, "0.001", agent.Config().PaymentAmount)
}

func TestNew_CustomAmountDrivesPredicateAndPage(t *testing.T) {
	cfg := types.DefaultAgentConfig()
	cfg.PaymentAmount = "0.25"
	agent, err := yieldagent.New(cfg)
	require.NoError(t, err)

	assert.Equal(t, http.StatusPaymentRequired, do(t, agent, http.MethodGet, "/", validClaim).Code)
	assert.Equal(t, http.StatusOK, do(t, agent, http.MethodGet, "/", `{"txHash":"x","amount":0.25}`).Code)
	assert.Contains(t, do(t, agent, http.MethodGet, "/", "").Body.String(), "0.25 SOL")
}

func TestGetVersion(t *testing.T) {
	v := yieldagent.GetVersion()
	assert.Equal(t, yieldagent.Version, v["library_version"])
	assert.Equal(t, yieldagent.ProtocolVersion, v["protocol_version"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
