package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/adminfin-dev/adminfin/internal/model"
)

// Result is the {success, message, error} header of flat /api/* responses.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (r Result) result() Result { return r }

type resulter interface {
	result() Result
}

// callResult performs a request whose flat body embeds Result and fails when
// success is false even on a 2xx status.
func (c *Client) callResult(ctx context.Context, method, path string, body any, out resulter) error {
	if err := c.callJSON(ctx, method, path, nil, body, out); err != nil {
		return err
	}
	if r := out.result(); !r.Success {
		return c.fail(method, path, http.StatusOK, firstNonEmpty(r.Error, r.Message))
	}
	return nil
}

// Validation is the answer of /api/validar: one lookup per invoice party.
type Validation struct {
	Supplier       Lookup `json:"fornecedor"`
	Billed         Lookup `json:"faturado"`
	Classification Lookup `json:"classificacao"`
}

// LaunchRequest is the invoice plus the ids resolved during review.
type LaunchRequest struct {
	Invoice          model.ExtractedInvoice
	SupplierID       int
	BilledID         int
	ClassificationID int
}

// Launched is the answer of /api/lancar.
type Launched struct {
	Result
	InvoiceID  int `json:"nota_fiscal_id"`
	MovementID int `json:"movimento_id"`
}

type registered struct {
	Result
	ID int `json:"id"`
}

// invoicePayload is the invoice document as the /api/* handlers read it,
// carrying the classification under both key spellings.
func invoicePayload(inv model.ExtractedInvoice) (map[string]any, error) {
	raw, err := json.Marshal(inv)
	if err != nil {
		return nil, fmt.Errorf("encoding invoice: %w", err)
	}
	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("encoding invoice: %w", err)
	}
	payload["Classificacao Despesa"] = inv.ExpenseClassification
	return payload, nil
}

// Validate asks the server to resolve the three invoice parties at once.
func (c *Client) Validate(ctx context.Context, inv model.ExtractedInvoice) (Validation, error) {
	var out Validation
	payload, err := invoicePayload(inv)
	if err != nil {
		return out, err
	}
	err = c.callJSON(ctx, http.MethodPost, "/api/validar", nil, payload, &out)
	return out, err
}

func (c *Client) register(ctx context.Context, what string, inv model.ExtractedInvoice) (int, error) {
	payload, err := invoicePayload(inv)
	if err != nil {
		return 0, err
	}
	var out registered
	if err := c.callResult(ctx, http.MethodPost, "/api/cadastrar/"+what, payload, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// RegisterSupplier creates the invoice issuer server-side and returns its id.
func (c *Client) RegisterSupplier(ctx context.Context, inv model.ExtractedInvoice) (int, error) {
	return c.register(ctx, "fornecedor", inv)
}

// RegisterBilled creates the billed party server-side and returns its id.
func (c *Client) RegisterBilled(ctx context.Context, inv model.ExtractedInvoice) (int, error) {
	return c.register(ctx, "faturado", inv)
}

// RegisterClassification creates the expense classification server-side.
func (c *Client) RegisterClassification(ctx context.Context, inv model.ExtractedInvoice) (int, error) {
	return c.register(ctx, "classificacao", inv)
}

// Launch records the invoice, its movement and installments in one server call.
func (c *Client) Launch(ctx context.Context, req LaunchRequest) (Launched, error) {
	var out Launched
	payload, err := invoicePayload(req.Invoice)
	if err != nil {
		return out, err
	}
	payload["fornecedor_id"] = req.SupplierID
	payload["faturado_id"] = req.BilledID
	payload["classificacao_id"] = req.ClassificationID
	err = c.callResult(ctx, http.MethodPost, "/api/lancar", payload, &out)
	return out, err
}
