package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/shadowvote/common"
	"github.com/tranvictor/shadowvote/metrics"
	"github.com/tranvictor/shadowvote/service"
	"github.com/tranvictor/shadowvote/shadowvote/chaintest"
	"github.com/tranvictor/shadowvote/store"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	m := metrics.New()
	svc := service.New(context.Background(), service.Options{
		Latency: &store.Latency{},
		Metrics: m,
	})
	if opts.Registry == nil {
		opts.Registry = m.Registry()
	}
	ts := httptest.NewServer(New(svc, opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func errorOf(t *testing.T, data []byte) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(data, &body))
	return body["error"]
}

func TestListAndGetPolls(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, data := do(t, http.MethodGet, ts.URL+"/polls", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var polls []common.Poll
	require.NoError(t, json.Unmarshal(data, &polls))
	require.Len(t, polls, 3)
	assert.Equal(t, store.Fixtures(), polls)

	resp, data = do(t, http.MethodGet, ts.URL+"/polls/2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p common.Poll
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, "Which blockchain do you prefer?", p.Question)
	assert.Contains(t, string(data), `"isActive":true`)

	resp, data = do(t, http.MethodGet, ts.URL+"/polls/42", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Failed to get poll: Poll with ID 42 not found", errorOf(t, data))
}

func TestCreateAndVote(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, data := do(t, http.MethodPost, ts.URL+"/polls", `{"question":"Pick one","options":["A","B"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id":"4","known":true}`, string(data))

	resp, _ = do(t, http.MethodPost, ts.URL+"/polls/4/vote", `{"choice":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, ts.URL+"/polls/4/vote", `{"choice":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data = do(t, http.MethodPost, ts.URL+"/polls/4/vote", `{"choice":5}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorOf(t, data), "Invalid choice")

	_, data = do(t, http.MethodGet, ts.URL+"/polls/4", "")
	var p common.Poll
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, []int{0, 2}, p.Counts)
}

func TestErrorStatuses(t *testing.T) {
	ts := newTestServer(t, Options{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"inactive poll", http.MethodPost, "/polls/3/vote", `{"choice":0}`, http.StatusConflict},
		{"unknown poll", http.MethodPost, "/polls/9/vote", `{"choice":0}`, http.StatusNotFound},
		{"missing choice", http.MethodPost, "/polls/1/vote", `{}`, http.StatusBadRequest},
		{"malformed vote", http.MethodPost, "/polls/1/vote", `{"choice":`, http.StatusBadRequest},
		{"one option", http.MethodPost, "/polls", `{"question":"Q","options":["A"]}`, http.StatusBadRequest},
		{"blank question", http.MethodPost, "/polls", `{"question":" ","options":["A","B"]}`, http.StatusBadRequest},
		{"malformed poll", http.MethodPost, "/polls", `[]`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, data := do(t, tc.method, ts.URL+tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.NotEmpty(t, errorOf(t, data))
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, statusOf(common.Wrap(common.OpGetAllPolls, io.ErrUnexpectedEOF)))
	assert.Equal(t, http.StatusBadGateway, statusOf(common.NewError(common.KindUnknownEventShape, "x")))
	assert.Equal(t, http.StatusConflict, statusOf(common.NewError(common.KindInactive, "x")))
	assert.Equal(t, http.StatusGatewayTimeout, statusOf(common.Wrap(common.OpVote, context.DeadlineExceeded)))
}

func TestWritesAreRateLimited(t *testing.T) {
	ts := newTestServer(t, Options{WriteRPS: 0.001, WriteBurst: 1})

	resp, _ := do(t, http.MethodPost, ts.URL+"/polls/1/vote", `{"choice":0}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := do(t, http.MethodPost, ts.URL+"/polls/1/vote", `{"choice":0}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "too many requests", errorOf(t, data))

	// reads are not limited
	resp, _ = do(t, http.MethodGet, ts.URL+"/polls/1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, _ := do(t, http.MethodGet, ts.URL+"/healthz", "")
	_, err := uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, id)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))
}

func TestHealthIdentityAndMetrics(t *testing.T) {
	ts := newTestServer(t, Options{})

	_, data := do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.JSONEq(t, `{"status":"ok","backend":"fallback"}`, string(data))

	resp, data := do(t, http.MethodGet, ts.URL+"/identity", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ident struct {
		Address     string `json:"address"`
		Placeholder bool   `json:"placeholder"`
	}
	require.NoError(t, json.Unmarshal(data, &ident))
	assert.True(t, ident.Placeholder)
	assert.True(t, strings.HasPrefix(ident.Address, "0x"))

	do(t, http.MethodGet, ts.URL+"/polls", "")
	resp, data = do(t, http.MethodGet, ts.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `shadowvote_operations_total{backend="fallback",op="get polls",outcome="ok"} 1`)
}

func TestRemoteBackendOverHTTP(t *testing.T) {
	chain := chaintest.New()
	chain.NoWait = true
	svc := service.New(context.Background(), service.Options{
		Connection: chain,
		Contract:   chaintest.ContractAddress.Hex(),
	})
	require.Equal(t, service.ModeRemote, svc.Mode())
	ts := httptest.NewServer(New(svc, Options{}).Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/polls", "application/json", bytes.NewBufferString(`{"question":"Q","options":["A","B"]}`))
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id":null,"known":false}`, string(data))

	resp, data = do(t, http.MethodGet, ts.URL+"/polls", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var polls []common.Poll
	require.NoError(t, json.Unmarshal(data, &polls))
	require.Len(t, polls, 1)
	assert.Equal(t, chain.Account.AddressHex(), polls[0].Creator)

	// no metrics registry configured
	resp, _ = do(t, http.MethodGet, ts.URL+"/metrics", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
