package block

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Query(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{
			"owner": r.URL.Query().Get("owner"),
			"query": r.URL.Query().Get("query"),
			"hash":  r.URL.Query().Get("hash"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hash":"` + testHash + `","time":1464030000,"height":413000}`))
	}))
	defer server.Close()

	c := NewHTTPClient(5 * time.Second)
	r, err := c.Query(context.Background(), Source{Name: "test", URL: server.URL + "/"}, "owner-addr", testHash)
	require.NoError(t, err)

	assert.Equal(t, Response{Hash: testHash, Time: 1464030000, Height: 413000}, r)
	assert.Equal(t, "/bitcoin", gotPath)
	assert.Equal(t, map[string]string{"owner": "owner-addr", "query": "getbyhash", "hash": testHash}, gotQuery)
}

func TestHTTPClient_QueryErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
		},
		{
			name: "missing time",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"hash":"` + testHash + `"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewHTTPClient(5*time.Second).Query(context.Background(), Source{Name: "test", URL: server.URL + "/"}, "owner", testHash)
			assert.Error(t, err)
		})
	}
}

func TestHTTPClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := NewHTTPClient(50*time.Millisecond).Query(context.Background(), Source{Name: "slow", URL: server.URL + "/"}, "owner", testHash)
	assert.Error(t, err)
}

func TestOracle_WithHTTPSources(t *testing.T) {
	answer := func(ts int64) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"hash":"` + r.URL.Query().Get("hash") + `","time":` + strconv.FormatInt(ts, 10) + `,"height":413000}`))
		}
	}
	a := httptest.NewServer(answer(1464030000))
	defer a.Close()
	b := httptest.NewServer(answer(1464030000))
	defer b.Close()
	c := httptest.NewServer(answer(42))
	defer c.Close()

	o, err := NewOracle(NewCache(NewMemoryStore(), false), NewHTTPClient(5*time.Second), OracleConfig{
		Owner:      "owner",
		Workers:    3,
		Resolution: ResolutionPlurality,
	}, testLogger())
	require.NoError(t, err)

	blk, err := o.ResolveBlock(context.Background(), testHash, []Source{
		{Name: "c", URL: c.URL + "/"},
		{Name: "a", URL: a.URL + "/"},
		{Name: "b", URL: b.URL + "/"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1464030000), blk.Time)
}
