// Package rag is the client side of the invoice question-answering service:
// it keeps the chosen answering method, refuses overlapping questions, and
// reports whether the embeddings index is available and complete.
package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/adminfin-dev/adminfin/internal/api"
	"github.com/adminfin-dev/adminfin/internal/prompt"
)

var (
	// ErrBusy is returned when a question is asked while another is in flight.
	ErrBusy = errors.New("uma pergunta já está em andamento")
	// ErrEmptyQuestion is returned for blank questions.
	ErrEmptyQuestion = errors.New("Por favor, digite uma pergunta")
	// ErrEmbeddingsUnavailable is returned when selecting embeddings the server does not offer.
	ErrEmbeddingsUnavailable = errors.New("método embeddings indisponível")
)

// IndexQuestion is the confirmation asked before a full re-index.
const IndexQuestion = "Deseja indexar todos os documentos? Isso pode levar alguns minutos."

// MethodLabel is the display name of an answering method, as sent in either
// the request (simple) or the response (RAG_SIMPLE) spelling.
func MethodLabel(method string) string {
	switch method {
	case api.MethodSimple, "RAG_SIMPLE":
		return "RAG Simples"
	case api.MethodEmbeddings, "RAG_EMBEDDINGS":
		return "RAG Embeddings"
	}
	return method
}

// Status is the service state as shown next to the question box.
type Status struct {
	Online              bool
	Methods             []string
	EmbeddingsAvailable bool
	HasIndex            bool
	Indexed             int
	Total               int
}

// NeedsIndex reports whether some invoices are not indexed yet.
func (s Status) NeedsIndex() bool {
	return s.EmbeddingsAvailable && s.HasIndex && s.Indexed < s.Total
}

// Widget holds the question-box state.
type Widget struct {
	client *api.Client
	logger *logrus.Logger

	mu         sync.Mutex
	method     string
	embeddings bool
	statusSeen bool

	inFlight atomic.Bool
}

// NewWidget creates a Widget using the simple method.
func NewWidget(client *api.Client, logger *logrus.Logger) *Widget {
	return &Widget{client: client, logger: logger, method: api.MethodSimple}
}

// Method returns the selected answering method.
func (w *Widget) Method() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.method
}

// SetMethod selects simple or embeddings. Embeddings is refused once a
// status report has shown the server does not offer it.
func (w *Widget) SetMethod(method string) error {
	method = strings.ToLower(strings.TrimSpace(method))
	w.mu.Lock()
	defer w.mu.Unlock()
	switch method {
	case api.MethodSimple:
	case api.MethodEmbeddings:
		if w.statusSeen && !w.embeddings {
			return ErrEmbeddingsUnavailable
		}
	default:
		return fmt.Errorf("método desconhecido %q (use %s ou %s)", method, api.MethodSimple, api.MethodEmbeddings)
	}
	w.method = method
	return nil
}

// Busy reports whether a question is in flight.
func (w *Widget) Busy() bool {
	return w.inFlight.Load()
}

// Ask submits a question with the selected method. Blank questions are
// rejected locally; a second Ask while one is in flight returns ErrBusy.
func (w *Widget) Ask(ctx context.Context, question string) (api.RAGAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return api.RAGAnswer{}, ErrEmptyQuestion
	}
	if !w.inFlight.CompareAndSwap(false, true) {
		return api.RAGAnswer{}, ErrBusy
	}
	defer w.inFlight.Store(false)

	method := w.Method()
	ans, err := w.client.RAGAsk(ctx, question, method)
	if err != nil {
		w.logger.WithError(err).WithField("method", method).Warn("question failed")
		return api.RAGAnswer{}, err
	}
	return ans, nil
}

// Examples fetches the sample questions.
func (w *Widget) Examples(ctx context.Context) ([]string, error) {
	ex, err := w.client.RAGExamples(ctx)
	if err != nil {
		return nil, err
	}
	return ex.Examples, nil
}

// Status polls the service. The service counts as online when it offers at
// least one method. If embeddings went away the widget falls back to simple.
func (w *Widget) Status(ctx context.Context) (Status, error) {
	st, err := w.client.RAGStatus(ctx)
	if err != nil {
		w.logger.WithError(err).Warn("loading RAG status")
		return Status{}, err
	}

	out := Status{
		Online:              len(st.AvailableMethods) > 0,
		Methods:             st.AvailableMethods,
		EmbeddingsAvailable: slices.Contains(st.AvailableMethods, api.MethodEmbeddings),
	}
	if out.EmbeddingsAvailable && st.Index != nil {
		out.HasIndex = true
		out.Indexed = st.Index.Indexed
		out.Total = st.Index.Total
	}

	w.mu.Lock()
	w.statusSeen = true
	w.embeddings = out.EmbeddingsAvailable
	if !w.embeddings && w.method == api.MethodEmbeddings {
		w.method = api.MethodSimple
	}
	w.mu.Unlock()
	return out, nil
}

// Index re-indexes every invoice after confirmation. A declined
// confirmation returns a zero result and ok false.
func (w *Widget) Index(ctx context.Context, confirm prompt.Confirmer) (api.RAGIndexResult, bool, error) {
	yes, err := confirm.Confirm(IndexQuestion)
	if err != nil || !yes {
		return api.RAGIndexResult{}, false, err
	}
	res, err := w.client.RAGIndex(ctx)
	if err != nil {
		w.logger.WithError(err).Warn("indexing failed")
		return api.RAGIndexResult{}, true, err
	}
	w.logger.WithFields(logrus.Fields{
		"total":   res.Total,
		"indexed": res.Indexed,
		"failed":  res.Failed,
	}).Info("indexing done")
	return res, true, nil
}

// Metadata renders the retrieval metadata of an answer as indented JSON, or
// "" when the server sent none.
func Metadata(ans api.RAGAnswer) (string, error) {
	if len(ans.DataRetrieved) == 0 || string(ans.DataRetrieved) == "null" {
		return "", nil
	}
	out, err := json.MarshalIndent(struct {
		QueryType     string          `json:"query_type,omitempty"`
		Method        string          `json:"method"`
		DataRetrieved json.RawMessage `json:"data_retrieved"`
	}{ans.QueryType, ans.Method, ans.DataRetrieved}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("formatting metadata: %w", err)
	}
	return string(out), nil
}

// IndexSummary renders the result of an indexing run.
func IndexSummary(res api.RAGIndexResult) string {
	return fmt.Sprintf("Indexação concluída!\nTotal: %d\nIndexados: %d\nFalharam: %d", res.Total, res.Indexed, res.Failed)
}

// StatusText renders a status report.
func StatusText(s Status) string {
	var b strings.Builder
	if s.Online {
		b.WriteString("Status: Online\n")
	} else {
		b.WriteString("Status: Offline\n")
	}
	if len(s.Methods) > 0 {
		labels := make([]string, len(s.Methods))
		for i, m := range s.Methods {
			labels[i] = MethodLabel(m)
		}
		fmt.Fprintf(&b, "Métodos: %s\n", strings.Join(labels, ", "))
	}
	switch {
	case !s.EmbeddingsAvailable || !s.HasIndex:
		b.WriteString("Documentos indexados: N/A\n")
	default:
		fmt.Fprintf(&b, "Documentos indexados: %d / %d\n", s.Indexed, s.Total)
	}
	if s.NeedsIndex() {
		b.WriteString("Há notas fiscais não indexadas; execute a indexação.\n")
	}
	return b.String()
}
