package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stock-logistic/quoting-cli/internal/config"
	"github.com/stock-logistic/quoting-cli/internal/convo"
	"github.com/stock-logistic/quoting-cli/internal/model"
	"github.com/stock-logistic/quoting-cli/internal/pricing"
	"github.com/stock-logistic/quoting-cli/internal/quote"
	"github.com/stock-logistic/quoting-cli/internal/store"
)

// newTestEnv builds a router over an in-memory store, mirroring what serve
// wires at startup.
func newTestEnv(t *testing.T) (*quoteEnv, http.Handler) {
	t.Helper()

	cfg = &config.Config{
		Store:  config.StoreConfig{Driver: "memory"},
		Server: config.ServerConfig{Port: 0, CORSOrigins: []string{"*"}},
	}

	st := store.NewMemory()
	engine := pricing.NewEngine()
	builder := quote.NewBuilder()
	env := &quoteEnv{
		Store:   st,
		Engine:  engine,
		Builder: builder,
		Handler: convo.NewHandler(st, engine, builder),
	}
	t.Cleanup(env.Close)

	return env, newRouter(env)
}

func postChat(t *testing.T, router http.Handler, sessionID, message string) (*httptest.ResponseRecorder, convo.Reply) {
	t.Helper()

	payload, err := json.Marshal(map[string]string{
		"session_id": sessionID,
		"message":    message,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var reply convo.Reply
	if rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reply))
	}
	return rr, reply
}

func TestHealthEndpoint(t *testing.T) {
	_, router := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestChatCompletesQuote(t *testing.T) {
	_, router := newTestEnv(t)

	pickup := time.Now().AddDate(0, 0, 30).Format("02/01/2006")
	msg := fmt.Sprintf(
		"Necesito transportar 1500 kg de Madrid a París, mercancía general, servicio estándar, recogida %s",
		pickup,
	)

	rr, reply := postChat(t, router, "", msg)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.True(t, reply.Completed)
	require.NotNil(t, reply.Quote)
	assert.Equal(t, 23481.10, reply.Quote.Costs.Total)
	assert.NotEmpty(t, reply.SessionID)

	// The generated quote is retrievable.
	req := httptest.NewRequest(http.MethodGet, "/quotes/"+reply.Quote.QuoteID, nil)
	qr := httptest.NewRecorder()
	router.ServeHTTP(qr, req)
	require.Equal(t, http.StatusOK, qr.Code)

	var got model.QuoteRecord
	require.NoError(t, json.Unmarshal(qr.Body.Bytes(), &got))
	assert.Equal(t, reply.Quote.QuoteID, got.QuoteID)
}

func TestChatStepAndResume(t *testing.T) {
	_, router := newTestEnv(t)

	rr, reply := postChat(t, router, "", "Hola, quiero enviar mercancía a Lyon")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, reply.Completed)
	assert.NotEmpty(t, reply.Missing)
	sessionID := reply.SessionID

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+sessionID, nil)
	sr := httptest.NewRecorder()
	router.ServeHTTP(sr, req)
	require.Equal(t, http.StatusOK, sr.Code)

	var resumed convo.Reply
	require.NoError(t, json.Unmarshal(sr.Body.Bytes(), &resumed))
	assert.Equal(t, sessionID, resumed.SessionID)
	assert.False(t, resumed.Completed)
	assert.NotEmpty(t, resumed.Text)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	_, router := newTestEnv(t)

	rr, _ := postChat(t, router, "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestChatRejectsMalformedBody(t *testing.T) {
	_, router := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte("{nope")))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessionNotFound(t *testing.T) {
	_, router := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/sessions/desconocida", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteSession(t *testing.T) {
	_, router := newTestEnv(t)

	_, reply := postChat(t, router, "", "Envío a Burdeos")
	require.NotEmpty(t, reply.SessionID)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/"+reply.SessionID, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/sessions/"+reply.SessionID, nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestQuoteNotFound(t *testing.T) {
	_, router := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/quotes/SL-19700101-0", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStatusEndpoint(t *testing.T) {
	_, router := newTestEnv(t)

	_, _ = postChat(t, router, "", "Hola")

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "memory", body["store"])
	assert.EqualValues(t, 1, body["sessions"])
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/quotes?limit=5&offset=bad", nil)
	assert.Equal(t, 5, queryInt(req, "limit", 50))
	assert.Equal(t, 0, queryInt(req, "offset", 0))
	assert.Equal(t, 50, queryInt(req, "missing", 50))
}
