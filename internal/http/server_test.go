package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lizd/internal/search"
)

// stubSearcher records the last call and returns canned responses.
type stubSearcher struct {
	searchResp *search.Response
	answerResp *search.AnsweredResponse
	err        error

	lastQuery string
	lastTopK  int
}

func (s *stubSearcher) Search(ctx context.Context, query string, topK int) (*search.Response, error) {
	s.lastQuery = query
	s.lastTopK = topK
	if s.err != nil {
		return nil, s.err
	}
	return s.searchResp, nil
}

func (s *stubSearcher) SearchWithAnswer(ctx context.Context, query string, topK int) (*search.AnsweredResponse, error) {
	s.lastQuery = query
	s.lastTopK = topK
	if s.err != nil {
		return nil, s.err
	}
	return s.answerResp, nil
}

func (s *stubSearcher) DefaultTopK() int { return 10 }

func newTestServer(t *testing.T, searcher Searcher) *Server {
	t.Helper()
	srv, err := NewServer(searcher, zap.NewNop(), nil)
	require.NoError(t, err)
	return srv
}

func doJSON(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	t.Run("nil searcher", func(t *testing.T) {
		_, err := NewServer(nil, zap.NewNop(), nil)
		assert.Error(t, err)
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewServer(&stubSearcher{}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		srv, err := NewServer(&stubSearcher{}, zap.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, 8000, srv.config.Port)
	})
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleMetrics(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleSearch(t *testing.T) {
	t.Run("returns the ranked list with wire field names", func(t *testing.T) {
		stub := &stubSearcher{searchResp: &search.Response{
			Query:      "cooperativas",
			TotalFound: 2,
			Results: []search.Result{
				{ID: "1", Title: "Primeiro", Score: 0.9},
				{ID: "2", Title: "Segundo", Score: 0.8},
			},
		}}
		srv := newTestServer(t, stub)

		rec := doJSON(srv, http.MethodPost, "/search", `{"q":"cooperativas","top_k":2}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, `"pergunta":"cooperativas"`)
		assert.Contains(t, body, `"total_encontrados":2`)
		assert.Contains(t, body, `"resultados":[`)
		assert.Contains(t, body, `"titulo":"Primeiro"`)

		assert.Equal(t, "cooperativas", stub.lastQuery)
		assert.Equal(t, 2, stub.lastTopK)
	})

	t.Run("absent top_k falls back to the default", func(t *testing.T) {
		stub := &stubSearcher{searchResp: &search.Response{Query: "q", Results: []search.Result{}}}
		srv := newTestServer(t, stub)

		rec := doJSON(srv, http.MethodPost, "/search", `{"q":"q"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 10, stub.lastTopK)
	})

	t.Run("explicit zero top_k is passed through for clamping", func(t *testing.T) {
		stub := &stubSearcher{searchResp: &search.Response{Query: "q", Results: []search.Result{}}}
		srv := newTestServer(t, stub)

		rec := doJSON(srv, http.MethodPost, "/search", `{"q":"q","top_k":0}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, stub.lastTopK)
	})

	t.Run("empty query is a client error", func(t *testing.T) {
		stub := &stubSearcher{err: search.ErrEmptyQuery}
		srv := newTestServer(t, stub)

		rec := doJSON(srv, http.MethodPost, "/search", `{"q":"   "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Pergunta vazia.")
	})

	t.Run("dependency failure is a bad gateway", func(t *testing.T) {
		stub := &stubSearcher{err: errors.New("embedding query: provider down")}
		srv := newTestServer(t, stub)

		rec := doJSON(srv, http.MethodPost, "/search", `{"q":"q"}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "upstream dependency failure")
	})

	t.Run("malformed body is a client error", func(t *testing.T) {
		srv := newTestServer(t, &stubSearcher{})

		rec := doJSON(srv, http.MethodPost, "/search", `{"q":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty results serialize as an empty array", func(t *testing.T) {
		stub := &stubSearcher{searchResp: &search.Response{
			Query:      "nada",
			TotalFound: 0,
			Results:    []search.Result{},
		}}
		srv := newTestServer(t, stub)

		rec := doJSON(srv, http.MethodPost, "/search", `{"q":"nada"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"resultados":[]`)
		assert.NotContains(t, rec.Body.String(), `"resultados":null`)
	})
}

func TestHandleSearchLiz(t *testing.T) {
	t.Run("returns the list and the prose answer", func(t *testing.T) {
		stub := &stubSearcher{answerResp: &search.AnsweredResponse{
			Response: search.Response{
				Query:      "cooperativas",
				TotalFound: 1,
				Results:    []search.Result{{ID: "1", Title: "Primeiro", Score: 0.9}},
			},
			Answer: "Encontrei o artigo 1.",
		}}
		srv := newTestServer(t, stub)

		rec := doJSON(srv, http.MethodPost, "/search_liz", `{"q":"cooperativas"}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, `"pergunta":"cooperativas"`)
		assert.Contains(t, body, `"itens":[`)
		assert.Contains(t, body, `"resposta":"Encontrei o artigo 1."`)
	})

	t.Run("no results carry the fixed message", func(t *testing.T) {
		stub := &stubSearcher{answerResp: &search.AnsweredResponse{
			Response: search.Response{Query: "nada", Results: []search.Result{}},
			Answer:   search.NoResultsMessage,
		}}
		srv := newTestServer(t, stub)

		rec := doJSON(srv, http.MethodPost, "/search_liz", `{"q":"nada"}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp SearchLizResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, search.NoResultsMessage, resp.Resposta)
		assert.Empty(t, resp.Itens)
	})

	t.Run("empty query is a client error", func(t *testing.T) {
		stub := &stubSearcher{err: search.ErrEmptyQuery}
		srv := newTestServer(t, stub)

		rec := doJSON(srv, http.MethodPost, "/search_liz", `{"q":""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("dependency failure is a bad gateway", func(t *testing.T) {
		stub := &stubSearcher{err: errors.New("formatting answer: chat down")}
		srv := newTestServer(t, stub)

		rec := doJSON(srv, http.MethodPost, "/search_liz", `{"q":"q"}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
