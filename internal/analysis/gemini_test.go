package analysis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeParsesCandidate(t *testing.T) {
	var gotKey, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"summary\":\"Undangan rapat\",\"category\":\"Undangan\",\"priority\":\"Tinggi\"}"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "", time.Second)
	res, err := c.Analyze(context.Background(), "Mohon hadir rapat besok.")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, Result{Summary: "Undangan rapat", Category: "Undangan", Priority: "Tinggi"}, *res)

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "/v1beta/models/"+DefaultModel+":generateContent", gotPath)
	raw, _ := json.Marshal(gotBody)
	assert.True(t, strings.Contains(string(raw), promptPrefix))
}

func TestAnalyzeDisabledWithoutKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	res, err := NewClient(srv.URL, "", "", time.Second).Analyze(context.Background(), "isi")
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.False(t, called)
}

func TestAnalyzeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k", "", time.Second).Analyze(context.Background(), "isi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestAnalyzeBlankText(t *testing.T) {
	res, err := NewClient("http://unused", "k", "", time.Second).Analyze(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, res)
}
