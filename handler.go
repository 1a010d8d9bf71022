package yieldagent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/oklog/ulid/v2"
	"github.com/vitwit/yieldagent/metrics"
	"github.com/vitwit/yieldagent/types"
	"github.com/vitwit/yieldagent/utils"
)

// Header names
const (
	HeaderPayment         = "X-Payment"
	HeaderPaymentVerified = "X-Payment-Verified"
)

// Routes
const (
	PathRoot   = "/"
	PathHealth = "/health"
	PathInfo   = "/x402-info"
)

const (
	jsonContentType = "application/json"
	htmlContentType = "text/html; charset=utf-8"
)

// route pairs a predicate with its handler. Routes are tried in order and the
// first match wins, so OPTIONS is answered before any path is looked at.
type route struct {
	name  string
	match func(r *http.Request) bool
	serve func(w http.ResponseWriter, r *http.Request) int
}

func (a *Agent) buildRoutes() []route {
	return []route{
		{name: "preflight", match: methodIs(http.MethodOptions), serve: a.servePreflight},
		{name: "health", match: pathIs(PathHealth), serve: a.serveHealth},
		{name: "info", match: pathIs(PathInfo), serve: a.serveInfo},
		{name: "root", match: pathIs(PathRoot), serve: a.serveRoot},
	}
}

func methodIs(method string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		return r.Method == method
	}
}

func pathIs(path string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		return r.URL.Path == path
	}
}

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ServeHTTP dispatches r to the first matching route. Every response carries
// the CORS header set.
func (a *Agent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := ulid.Make().String()
	r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

	setCORSHeaders(w.Header())

	name, status := a.dispatch(w, r)

	labels := a.labels()
	a.metrics.IncCounter(metrics.EventRequest, labels)
	a.metrics.ObserveLatency(metrics.OperationHandle, time.Since(start), labels)

	a.logger.Debug("request handled", map[string]any{
		"request_id": requestID,
		"method":     r.Method,
		"path":       r.URL.Path,
		"route":      name,
		"status":     status,
		"duration":   time.Since(start).String(),
	})
}

func (a *Agent) dispatch(w http.ResponseWriter, r *http.Request) (string, int) {
	for _, rt := range a.routes {
		if rt.match(r) {
			return rt.name, rt.serve(w, r)
		}
	}

	a.metrics.IncCounter(metrics.EventNotFound, a.labels())
	a.logger.Debug("route not found", map[string]any{
		"request_id": requestIDFrom(r.Context()),
		"code":       types.ErrRouteNotFound,
		"path":       r.URL.Path,
	})
	return "not_found", a.writeJSON(w, http.StatusNotFound, types.ErrorResponse{Error: types.MessageNotFound})
}

func (a *Agent) servePreflight(w http.ResponseWriter, _ *http.Request) int {
	w.WriteHeader(http.StatusOK)
	return http.StatusOK
}

func (a *Agent) serveHealth(w http.ResponseWriter, _ *http.Request) int {
	return a.writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok"})
}

func (a *Agent) serveInfo(w http.ResponseWriter, _ *http.Request) int {
	return a.writeJSON(w, http.StatusOK, types.X402Response{
		ProtocolVersion: int(a.config.X402Version),
		Accepts:         []types.PaymentRequirements{a.requirements},
	})
}

// serveRoot shows the landing page to visitors without a claim and the
// catalog to visitors whose claim is accepted.
func (a *Agent) serveRoot(w http.ResponseWriter, r *http.Request) int {
	header := r.Header.Get(HeaderPayment)
	if header == "" {
		return a.writeHTML(w, http.StatusOK, a.page)
	}

	requestID := requestIDFrom(r.Context())

	claim, err := utils.ParsePaymentClaim(header)
	if err != nil {
		a.metrics.IncCounter(metrics.EventClaimMalformed, a.labels())
		a.logger.Warn("malformed payment claim", map[string]any{
			"request_id": requestID,
			"code":       errorCode(err),
			"error":      err.Error(),
		})
		return a.writeJSON(w, http.StatusPaymentRequired, types.ErrorResponse{Error: types.MessageMalformedClaim})
	}

	result, err := a.verifier.Verify(r.Context(), claim)
	if err != nil {
		err = &types.X402Error{
			Code:    types.ErrInvalidClaim,
			Message: fmt.Sprintf("verifier failed: %v", err),
		}
		a.metrics.IncCounter(metrics.EventClaimRejected, a.labels())
		a.logger.Error("payment claim verification failed", map[string]any{
			"request_id": requestID,
			"code":       errorCode(err),
			"error":      err.Error(),
		})
		return a.writeJSON(w, http.StatusPaymentRequired, types.ErrorResponse{Error: types.MessageInvalidClaim})
	}

	if result == nil || !result.IsValid {
		reason := "no verification result"
		if result != nil {
			reason = result.InvalidReason
		}
		a.metrics.IncCounter(metrics.EventClaimRejected, a.labels())
		a.logger.Debug("payment claim rejected", map[string]any{
			"request_id": requestID,
			"code":       types.ErrInvalidClaim,
			"reason":     reason,
		})
		return a.writeJSON(w, http.StatusPaymentRequired, types.ErrorResponse{Error: types.MessageInvalidClaim})
	}

	a.metrics.IncCounter(metrics.EventClaimAccepted, a.labels())
	a.logger.Info("payment claim accepted", map[string]any{
		"request_id": requestID,
		"tx_hash":    result.TxHash,
		"amount":     result.Amount,
	})

	w.Header().Set(HeaderPaymentVerified, "true")
	return a.writeJSON(w, http.StatusOK, types.YieldResponse{
		Success: true,
		Data: types.YieldData{
			Opportunities: a.catalog.All(),
			Network:       a.network().DisplayName(),
			LastUpdated:   utils.FormatTimestamp(a.now()),
		},
	})
}

// errorCode extracts the X402Error code from err, or "" for foreign errors.
func errorCode(err error) string {
	var x402Err *types.X402Error
	if errors.As(err, &x402Err) {
		return x402Err.Code
	}
	return ""
}

func (a *Agent) labels() map[string]string {
	return map[string]string{"network": a.network().String()}
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", http.MethodGet)
	h.Set("Access-Control-Allow-Headers", HeaderPayment)
}

func (a *Agent) writeJSON(w http.ResponseWriter, status int, payload any) int {
	body, err := sonic.ConfigStd.Marshal(payload)
	if err != nil {
		a.logger.Error("failed to encode response", map[string]any{"error": err.Error()})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return http.StatusInternalServerError
	}

	return a.write(w, status, jsonContentType, body)
}

func (a *Agent) writeHTML(w http.ResponseWriter, status int, body []byte) int {
	return a.write(w, status, htmlContentType, body)
}

func (a *Agent) write(w http.ResponseWriter, status int, contentType string, body []byte) int {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		a.logger.Error("failed to write response", map[string]any{"error": err.Error()})
	}
	return status
}
