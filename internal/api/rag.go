package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// RAG answering strategies.
const (
	MethodSimple     = "simple"
	MethodEmbeddings = "embeddings"
)

// RAGExamples lists sample questions and the methods the server offers.
type RAGExamples struct {
	Result
	Examples []string `json:"examples"`
	Methods  []string `json:"methods"`
}

// IndexStatus counts the documents indexed for the embeddings method.
type IndexStatus struct {
	Indexed int `json:"total_documents_indexed"`
	Total   int `json:"total_notas_fiscais"`
}

// RAGStatus is the health report of the question-answering service.
type RAGStatus struct {
	Result
	SimpleReady      bool         `json:"rag_simple_initialized"`
	EmbeddingsReady  bool         `json:"rag_embeddings_initialized"`
	AvailableMethods []string     `json:"available_methods"`
	Index            *IndexStatus `json:"index_status,omitempty"`
}

// RAGAnswer is the reply to a question.
type RAGAnswer struct {
	Result
	Answer        string          `json:"answer"`
	Method        string          `json:"method"`
	QueryType     string          `json:"query_type,omitempty"`
	DataRetrieved json.RawMessage `json:"data_retrieved,omitempty"`
}

// RAGIndexResult summarizes an indexing run.
type RAGIndexResult struct {
	Result
	Total   int `json:"total_notas"`
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
}

type ragQuestion struct {
	Question string `json:"question"`
	Method   string `json:"method"`
}

// RAGExamples fetches the example questions.
func (c *Client) RAGExamples(ctx context.Context) (RAGExamples, error) {
	var out RAGExamples
	err := c.callResult(ctx, http.MethodGet, "/api/rag/examples", nil, &out)
	return out, err
}

// RAGStatus fetches the service status.
func (c *Client) RAGStatus(ctx context.Context) (RAGStatus, error) {
	var out RAGStatus
	err := c.callResult(ctx, http.MethodGet, "/api/rag/status", nil, &out)
	return out, err
}

// RAGAsk submits a question using method.
func (c *Client) RAGAsk(ctx context.Context, question, method string) (RAGAnswer, error) {
	var out RAGAnswer
	err := c.callResult(ctx, http.MethodPost, "/api/rag/ask", ragQuestion{Question: question, Method: method}, &out)
	return out, err
}

// RAGIndex indexes every invoice for the embeddings method. It runs under
// the index timeout instead of the regular request timeout.
func (c *Client) RAGIndex(ctx context.Context) (RAGIndexResult, error) {
	long := *c
	long.http = &http.Client{Transport: c.http.Transport, Timeout: c.indexTimeout}
	var out RAGIndexResult
	err := long.callResult(ctx, http.MethodPost, "/api/rag/index", nil, &out)
	return out, err
}
