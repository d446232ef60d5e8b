package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/jsongram/internal/config"
	"github.com/reoring/jsongram/middleware"
)

func newTestServer(t *testing.T) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.MaxBodyBytes = 4096
	reg := prometheus.NewRegistry()
	ts := httptest.NewServer(New(cfg, nil, reg).Handler())
	t.Cleanup(ts.Close)
	return ts, reg
}

func post(t *testing.T, ts *httptest.Server, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var data []byte
	switch b := body.(type) {
	case string:
		data = []byte(b)
	default:
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts, _ := newTestServer(t)
	const id = "3f1c2a9e-6f1d-4c43-9f3e-0d6d8b1e2a77"
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.NotEqual(t, "not-a-uuid", resp2.Header.Get(RequestIDHeader))
}

func TestCompileFromSample(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := post(t, ts, "/v1/compile", `{"name":"person","sample":{"name":"Ada","age":36}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out compileResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "root", out.Root)
	assert.Equal(t, "object_person", out.Entry)
	assert.True(t, strings.HasPrefix(out.Grammar, "root ::= object_person\n"))
	assert.Empty(t, out.Issues)

	resp, body = post(t, ts, "/v1/check", checkRequest{Grammar: out.Grammar, Input: `{"age":1,"name":"Bob"}`})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var chk checkResponse
	require.NoError(t, json.Unmarshal(body, &chk))
	assert.True(t, chk.Accepted)

	_, body = post(t, ts, "/v1/check", checkRequest{Grammar: out.Grammar, Input: `{"age":"one"}`})
	require.NoError(t, json.Unmarshal(body, &chk))
	assert.False(t, chk.Accepted)
}

func TestCompileFromShapeWithDeclaredKeys(t *testing.T) {
	ts, _ := newTestServer(t)
	shape := `{"kind":"object","fields":[{"name":"id","kind":"integer"},{"name":"note","kind":"string","optional":true}]}`
	resp, body := post(t, ts, "/v1/compile", `{"shape":`+shape+`,"keys":"declared","separator":"-"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out compileResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Contains(t, out.Entry, "object-")
	assert.NotContains(t, out.Grammar, "member-")
}

func TestCompileErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"no source", `{"name":"x"}`, http.StatusBadRequest, ""},
		{"both sources", `{"sample":1,"shape":{"kind":"string"}}`, http.StatusBadRequest, ""},
		{"malformed body", `{"sample":`, http.StatusBadRequest, ""},
		{"invalid shape", `{"shape":{"kind":"array"}}`, http.StatusBadRequest, ""},
		{"unknown key policy", `{"sample":{"a":1},"keys":"sorted"}`, http.StatusBadRequest, ""},
		{"empty object", `{"sample":{}}`, http.StatusUnprocessableEntity, "unsupported_schema"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := post(t, ts, "/v1/compile", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode, string(body))
			var out middleware.ErrorBody
			require.NoError(t, json.Unmarshal(body, &out))
			assert.NotEmpty(t, out.Error)
			if tc.code != "" {
				require.NotEmpty(t, out.Issues)
				assert.Equal(t, tc.code, out.Issues[0].Code)
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	ts, _ := newTestServer(t)
	big := `{"sample":"` + strings.Repeat("x", 8192) + `"}`
	resp, _ := post(t, ts, "/v1/compile", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestCheckErrors(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, _ := post(t, ts, "/v1/check", checkRequest{Grammar: "root ::= undefined_rule", Input: "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, ts, "/v1/check", checkRequest{Grammar: `root ::= "x"`, Input: "x", Rule: "missing"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, ts, "/v1/check", checkRequest{Grammar: `start ::= "x"`, Input: "x", Rule: "start"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := post(t, ts, "/v1/check", `{"grammar":"root ::= \"x\""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out middleware.ErrorBody
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Issues, 1)
	assert.Equal(t, "required", out.Issues[0].Code)
	assert.Equal(t, "/input", out.Issues[0].Path)

	resp, _ = post(t, ts, "/v1/check", `{"grammar":"a","grammar":"b","input":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, reg := newTestServer(t)
	post(t, ts, "/v1/compile", `{"sample":{"a":1}}`)
	post(t, ts, "/v1/compile", `{"sample":{}}`)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["jsongram_requests_total"])
	assert.True(t, names["jsongram_grammar_rules"])
	assert.True(t, names["jsongram_issues_total"])

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), `jsongram_requests_total{code="200",op="compile"} 1`)
	assert.Contains(t, string(text), `jsongram_issues_total{code="unsupported_schema"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Metrics = false
	ts := httptest.NewServer(New(cfg, nil, nil).Handler())
	defer ts.Close()
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
