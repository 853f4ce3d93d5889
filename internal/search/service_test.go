package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/lizd/internal/vectorstore"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, 4)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return make([]float32, 4), nil
}

func (f *fakeEmbedder) Dimension() int { return 4 }

type fakeIndex struct {
	hits  []vectorstore.SearchHit
	err   error
	lastK uint64
}

func (f *fakeIndex) EnsureCollection(ctx context.Context, collection string, vectorSize uint64) error {
	return nil
}

func (f *fakeIndex) UpsertBatch(ctx context.Context, collection string, points []vectorstore.Point) error {
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, collection string, vector []float32, k uint64) ([]vectorstore.SearchHit, error) {
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func (f *fakeIndex) Close() error { return nil }

type fakeFormatter struct {
	calls  int
	answer string
	err    error
	query  string
	got    []Result
}

func (f *fakeFormatter) Format(ctx context.Context, query string, results []Result) (string, error) {
	f.calls++
	f.query = query
	f.got = results
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func hit(id, title string, score float32) vectorstore.SearchHit {
	return vectorstore.SearchHit{
		Score:   score,
		Payload: map[string]any{"id": id, "titulo": title},
	}
}

func newTestService(t *testing.T, index *fakeIndex, formatter Formatter) *Service {
	t.Helper()
	svc, err := NewService(&fakeEmbedder{}, index, formatter, nil, Config{Collection: "resumos_liz"})
	require.NoError(t, err)
	return svc
}

func TestNewService(t *testing.T) {
	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewService(nil, &fakeIndex{}, nil, nil, Config{Collection: "c"})
		assert.Error(t, err)
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewService(&fakeEmbedder{}, nil, nil, nil, Config{Collection: "c"})
		assert.Error(t, err)
	})

	t.Run("missing collection", func(t *testing.T) {
		_, err := NewService(&fakeEmbedder{}, &fakeIndex{}, nil, nil, Config{})
		assert.Error(t, err)
	})

	t.Run("nil formatter is allowed", func(t *testing.T) {
		svc, err := NewService(&fakeEmbedder{}, &fakeIndex{}, nil, nil, Config{Collection: "c"})
		require.NoError(t, err)
		assert.Equal(t, 10, svc.DefaultTopK())
	})
}

func TestClampTopK(t *testing.T) {
	svc := newTestService(t, &fakeIndex{}, nil)

	tests := []struct {
		name string
		k    int
		want int
	}{
		{name: "zero clamps to one", k: 0, want: 1},
		{name: "negative clamps to one", k: -5, want: 1},
		{name: "one passes", k: 1, want: 1},
		{name: "in range passes", k: 10, want: 10},
		{name: "max passes", k: 25, want: 25},
		{name: "above max clamps", k: 1000, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.ClampTopK(tt.k))
		})
	}
}

func TestSearch(t *testing.T) {
	t.Run("rejects blank query without embedding", func(t *testing.T) {
		embedder := &fakeEmbedder{}
		svc, err := NewService(embedder, &fakeIndex{}, nil, nil, Config{Collection: "c"})
		require.NoError(t, err)

		for _, q := range []string{"", "   ", "\n\t"} {
			_, err := svc.Search(context.Background(), q, 5)
			assert.ErrorIs(t, err, ErrEmptyQuery)
		}
		assert.Equal(t, 0, embedder.calls)
	})

	t.Run("maps hits to ranked results", func(t *testing.T) {
		index := &fakeIndex{hits: []vectorstore.SearchHit{
			hit("1", "Primeiro", 0.91),
			hit("2", "Segundo", 0.87),
			hit("3", "Terceiro", 0.87),
			hit("4", "Quarto", 0.5),
		}}
		svc := newTestService(t, index, nil)

		resp, err := svc.Search(context.Background(), "cooperativas", 4)
		require.NoError(t, err)

		assert.Equal(t, "cooperativas", resp.Query)
		assert.Equal(t, 4, resp.TotalFound)

		// Index order is preserved, ties included.
		want := []Result{
			{ID: "1", Title: "Primeiro", Score: 0.91},
			{ID: "2", Title: "Segundo", Score: 0.87},
			{ID: "3", Title: "Terceiro", Score: 0.87},
			{ID: "4", Title: "Quarto", Score: 0.5},
		}
		assert.Equal(t, want, resp.Results)
	})

	t.Run("clamps k before querying the index", func(t *testing.T) {
		index := &fakeIndex{}
		svc := newTestService(t, index, nil)

		_, err := svc.Search(context.Background(), "q", 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), index.lastK)

		_, err = svc.Search(context.Background(), "q", 1000)
		require.NoError(t, err)
		assert.Equal(t, uint64(25), index.lastK)
	})

	t.Run("filters hits missing both id and title", func(t *testing.T) {
		index := &fakeIndex{hits: []vectorstore.SearchHit{
			hit("1", "Com tudo", 0.9),
			{Score: 0.8, Payload: map[string]any{}},
			{Score: 0.7, Payload: nil},
			hit("", "Só título", 0.6),
			hit("2", "", 0.5),
		}}
		svc := newTestService(t, index, nil)

		resp, err := svc.Search(context.Background(), "q", 5)
		require.NoError(t, err)

		assert.Equal(t, 3, resp.TotalFound)
		assert.Equal(t, []Result{
			{ID: "1", Title: "Com tudo", Score: 0.9},
			{ID: "", Title: "Só título", Score: 0.6},
			{ID: "2", Title: "", Score: 0.5},
		}, resp.Results)
	})

	t.Run("coerces non-string payload values", func(t *testing.T) {
		index := &fakeIndex{hits: []vectorstore.SearchHit{
			{Score: 0.9, Payload: map[string]any{"id": int64(123), "titulo": "Número"}},
		}}
		svc := newTestService(t, index, nil)

		resp, err := svc.Search(context.Background(), "q", 1)
		require.NoError(t, err)
		assert.Equal(t, "123", resp.Results[0].ID)
	})

	t.Run("empty result set is a slice, not nil", func(t *testing.T) {
		svc := newTestService(t, &fakeIndex{}, nil)

		resp, err := svc.Search(context.Background(), "q", 5)
		require.NoError(t, err)
		assert.NotNil(t, resp.Results)
		assert.Empty(t, resp.Results)
		assert.Equal(t, 0, resp.TotalFound)
	})

	t.Run("wraps embedder failure", func(t *testing.T) {
		embedder := &fakeEmbedder{err: errors.New("provider down")}
		svc, err := NewService(embedder, &fakeIndex{}, nil, nil, Config{Collection: "c"})
		require.NoError(t, err)

		_, err = svc.Search(context.Background(), "q", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding query")
	})

	t.Run("wraps index failure", func(t *testing.T) {
		index := &fakeIndex{err: errors.New("index down")}
		svc := newTestService(t, index, nil)

		_, err := svc.Search(context.Background(), "q", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "searching collection")
	})
}

func TestSearchWithAnswer(t *testing.T) {
	t.Run("formats non-empty results", func(t *testing.T) {
		index := &fakeIndex{hits: []vectorstore.SearchHit{hit("1", "Primeiro", 0.9)}}
		formatter := &fakeFormatter{answer: "Encontrei o artigo 1."}
		svc := newTestService(t, index, formatter)

		resp, err := svc.SearchWithAnswer(context.Background(), "cooperativas", 5)
		require.NoError(t, err)

		assert.Equal(t, "Encontrei o artigo 1.", resp.Answer)
		assert.Equal(t, 1, formatter.calls)
		assert.Equal(t, "cooperativas", formatter.query)
		require.Len(t, formatter.got, 1)
		assert.Equal(t, "1", formatter.got[0].ID)
	})

	t.Run("short-circuits on empty results", func(t *testing.T) {
		formatter := &fakeFormatter{answer: "nunca"}
		svc := newTestService(t, &fakeIndex{}, formatter)

		resp, err := svc.SearchWithAnswer(context.Background(), "nada", 5)
		require.NoError(t, err)

		assert.Equal(t, NoResultsMessage, resp.Answer)
		assert.Equal(t, 0, formatter.calls)
		assert.Equal(t, 0, resp.TotalFound)
	})

	t.Run("nil formatter still serves the no-results case", func(t *testing.T) {
		svc := newTestService(t, &fakeIndex{}, nil)

		resp, err := svc.SearchWithAnswer(context.Background(), "nada", 5)
		require.NoError(t, err)
		assert.Equal(t, NoResultsMessage, resp.Answer)
	})

	t.Run("nil formatter with results is an error", func(t *testing.T) {
		index := &fakeIndex{hits: []vectorstore.SearchHit{hit("1", "Primeiro", 0.9)}}
		svc := newTestService(t, index, nil)

		_, err := svc.SearchWithAnswer(context.Background(), "q", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "formatter")
	})

	t.Run("propagates empty query", func(t *testing.T) {
		svc := newTestService(t, &fakeIndex{}, &fakeFormatter{})

		_, err := svc.SearchWithAnswer(context.Background(), "  ", 5)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("wraps formatter failure", func(t *testing.T) {
		index := &fakeIndex{hits: []vectorstore.SearchHit{hit("1", "Primeiro", 0.9)}}
		formatter := &fakeFormatter{err: errors.New("chat down")}
		svc := newTestService(t, index, formatter)

		_, err := svc.SearchWithAnswer(context.Background(), "q", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "formatting answer")
	})
}

func TestPayloadString(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		key     string
		want    string
	}{
		{name: "nil payload", payload: nil, key: "id", want: ""},
		{name: "missing key", payload: map[string]any{}, key: "id", want: ""},
		{name: "nil value", payload: map[string]any{"id": nil}, key: "id", want: ""},
		{name: "string value", payload: map[string]any{"id": "123"}, key: "id", want: "123"},
		{name: "integer value", payload: map[string]any{"id": int64(7)}, key: "id", want: "7"},
		{name: "bool value", payload: map[string]any{"id": true}, key: "id", want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, payloadString(tt.payload, tt.key))
		})
	}
}
