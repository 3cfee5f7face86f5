package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/haito/internal/app"
	"github.com/bobmcallan/haito/internal/server"
)

// fakeUpstream serves the Yahoo chart/quote/profile endpoints and a Google
// News RSS search for a single security.
func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/9432.T") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"regularMarketPrice":152.3},"events":{"dividends":{}}}]}}`)
	})
	mux.HandleFunc("/v7/finance/quote", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbols") != "9432.T" {
			fmt.Fprint(w, `{"quoteResponse":{"result":[]}}`)
			return
		}
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"regularMarketPrice":152.3,"longName":"NTT","currency":"JPY","sector":"Communication Services"}]}}`)
	})
	mux.HandleFunc("/rss/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>q</title>
<item><title>NTT 決算発表</title><link>https://example.com/a</link><description>増配</description>
<pubDate>Fri, 01 May 2026 09:00:00 GMT</pubDate><source url="https://example.com">日経</source></item>
</channel></rss>`)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// testServer creates an httptest.Server with the full haito-server handler.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("HAITO_WARM_CACHE", "off")
	upstream := fakeUpstream(t)

	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "dividends.json"), []byte(`{"schedule":[
{"month":3,"entries":[{"ticker":"9432"}]},
{"month":9,"entries":[{"ticker":"9432"}]}]}`), 0644))

	config := `
[storage]
data_path = "` + dataDir + `"

[clients.yahoo]
base_url = "` + upstream.URL + `"
profile_base_url = "` + upstream.URL + `"

[clients.news]
base_url = "` + upstream.URL + `/rss/search"

[logging]
level = "disabled"
`
	configPath := filepath.Join(dir, "haito.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0644))

	a, err := app.NewApp(configPath)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	ts := httptest.NewServer(server.NewServer(a).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealthEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]string
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "ok", got["status"])
}

func TestHoldingLifecycle(t *testing.T) {
	ts := testServer(t)
	base := ts.URL + "/api/portfolio/holdings"

	resp, body := do(t, http.MethodPost, base, `{"ticker":"9432","shares":50,"average_cost":140,"annual_dividend_per_share":140}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created map[string]any
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "NTT", created["name"])
	assert.Equal(t, 152.3, created["current_price"])
	assert.Equal(t, "通信", created["sector"])

	resp, _ = do(t, http.MethodPost, base, `{"ticker":"9432","shares":1}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/portfolio", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 7000.0, summary["annual_dividend"])
	assert.Len(t, summary["holdings"], 1)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/dividends", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var schedule map[string]any
	require.NoError(t, json.Unmarshal(body, &schedule))
	assert.Equal(t, 7000.0, schedule["annual_total"])

	resp, body = do(t, http.MethodGet, ts.URL+"/api/news?ticker=9432", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var news struct {
		Articles []map[string]any `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(body, &news))
	require.Len(t, news.Articles, 1)
	assert.Equal(t, "9432", news.Articles[0]["related_ticker"])

	resp, _ = do(t, http.MethodPut, base+"/9432", `{"shares":100}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, base+"/9432", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, base+"/9432", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStockInfoUnavailable(t *testing.T) {
	ts := testServer(t)

	resp, _ := do(t, http.MethodGet, ts.URL+"/api/stock-info/0000", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
