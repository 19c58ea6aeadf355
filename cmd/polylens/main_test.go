package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{"events":[{"id":"e1","title":"Crypto","slug":"crypto","markets":[
  {"id":"m1","question":"Bitcoin up in March?","conditionId":"0xc1","outcomePrices":"[\"0.6\",\"0.4\"]",
   "volumeNum":2500000,"active":true,"closed":false,"acceptingOrders":true}
]}]}`

func newUpstream(t *testing.T) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /public-search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "zzz qqq" {
			fmt.Fprint(w, `{"events":[]}`)
			return
		}
		fmt.Fprint(w, searchBody)
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `[]`) })
	mux.HandleFunc("GET /tags", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `[]`) })
	mux.HandleFunc("GET /trades", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"conditionId":"0xc1","outcomeIndex":0,"timestamp":1700000000,"price":0.58,"size":3}]`)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	t.Setenv("POLYLENS_POLYMARKET_GAMMA_HOST", ts.URL)
	t.Setenv("POLYLENS_POLYMARKET_DATA_HOST", ts.URL)
	t.Setenv("POLYLENS_LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	newUpstream(t)

	out, err := run(t, "search", "bitcoin", "up")
	require.NoError(t, err)
	assert.Contains(t, out, `SEARCH RESULTS: "bitcoin up"`)
	assert.Contains(t, out, "1. Bitcoin up in March?\n   YES: 60¢ | Volume: $2.5M")

	out, err = run(t, "--json", "search", "bitcoin up", "--limit", "3")
	require.NoError(t, err)
	var res struct {
		Tier    string `json:"tier"`
		Markets []struct {
			ID string `json:"id"`
		} `json:"markets"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "search", res.Tier)
	require.Len(t, res.Markets, 1)
	assert.Equal(t, "m1", res.Markets[0].ID)
}

func TestSearchCommand_NoMatch(t *testing.T) {
	newUpstream(t)

	out, err := run(t, "search", "zzz", "qqq")
	require.NoError(t, err, "an empty result is not a failure")
	assert.Equal(t, "No market found for \"zzz qqq\"\n", out)

	out, err = run(t, "view", "zzz qqq")
	require.NoError(t, err)
	assert.Equal(t, "No market found for \"zzz qqq\"\n", out)
}

func TestViewCommand(t *testing.T) {
	newUpstream(t)

	out, err := run(t, "view", "bitcoin up")
	require.NoError(t, err)
	assert.Contains(t, out, "Bitcoin up in March?\nCrypto\nYES: 60¢ | NO: 40¢\n")
	assert.Contains(t, out, "History: 1 point, 58¢ → 58¢")

	out, err = run(t, "view", "--json", "bitcoin up")
	require.NoError(t, err)
	assert.Contains(t, out, `"condition_id": "0xc1"`)
	assert.Contains(t, out, `"t": 1700000000`)
}

func TestListCommands(t *testing.T) {
	newUpstream(t)

	out, err := run(t, "trending")
	require.NoError(t, err)
	assert.Equal(t, "Unable to fetch markets from Polymarket.\n", out)

	out, err = run(t, "history", "0xc1")
	require.NoError(t, err)
	assert.Contains(t, out, "PRICE HISTORY: 0xc1\n")
	assert.Contains(t, out, "2023-11-14 22:13:20  58¢")
}

func TestConfigErrors(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "trending")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.toml")

	t.Setenv("POLYLENS_HISTORY_STRIDE", "0")
	_, err = run(t, "history", "0xc1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")

	_, err = run(t, "history")
	require.Error(t, err, "history needs a condition id")
}
