package http

import "github.com/fyrsmithlabs/lizd/internal/search"

// SearchRequest is the request body for POST /search and POST /search_liz.
type SearchRequest struct {
	// Q is the query text. Must be non-blank.
	Q string `json:"q"`

	// TopK is the requested result count, clamped to [1, 25].
	// When absent, the configured default (10) applies.
	TopK *int `json:"top_k"`
}

// SearchResponse is the response body for POST /search.
type SearchResponse struct {
	Pergunta         string          `json:"pergunta"`
	TotalEncontrados int             `json:"total_encontrados"`
	Resultados       []search.Result `json:"resultados"`
}

// SearchLizResponse is the response body for POST /search_liz.
type SearchLizResponse struct {
	Pergunta string          `json:"pergunta"`
	Itens    []search.Result `json:"itens"`
	Resposta string          `json:"resposta"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
