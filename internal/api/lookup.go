package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/adminfin-dev/adminfin/internal/model"
)

// Lookup is the answer of an existence check.
type Lookup struct {
	Exists bool `json:"existe"`
	ID     int  `json:"id"`
}

// NewParty is the minimal record posted to /pessoas when an invoice party is missing.
type NewParty struct {
	Type     model.PersonType `json:"tipo"`
	Name     string           `json:"nome"`
	Document string           `json:"documento"`
}

// MovementRecord is the movement posted to /movimentos when an invoice is confirmed.
type MovementRecord struct {
	SupplierID       int                `json:"fornecedor_id"`
	BilledID         int                `json:"faturado_id"`
	ClassificationID int                `json:"classificacao_id"`
	Total            float64            `json:"valor_total"`
	IssueDate        string             `json:"data_emissao"`
	Type             model.MovementType `json:"tipo"`
}

type created struct {
	ID int `json:"id"`
}

// FindPerson checks whether a party with the given type and digit-only document exists.
func (c *Client) FindPerson(ctx context.Context, typ model.PersonType, document string) (Lookup, error) {
	q := url.Values{}
	q.Set("tipo", string(typ))
	q.Set("documento", document)
	var out Lookup
	err := c.callJSON(ctx, http.MethodGet, "/pessoas", q, nil, &out)
	return out, err
}

// FindClassification checks whether a classification with the description exists.
func (c *Client) FindClassification(ctx context.Context, description string) (Lookup, error) {
	q := url.Values{}
	q.Set("descricao", description)
	var out Lookup
	err := c.callJSON(ctx, http.MethodGet, "/classificacao", q, nil, &out)
	return out, err
}

// CreateLookupPerson creates a minimal party record and returns its id.
func (c *Client) CreateLookupPerson(ctx context.Context, p NewParty) (int, error) {
	var out created
	err := c.callJSON(ctx, http.MethodPost, "/pessoas", nil, p, &out)
	return out.ID, err
}

// CreateLookupClassification creates a classification by description and returns its id.
func (c *Client) CreateLookupClassification(ctx context.Context, description string) (int, error) {
	var out created
	body := map[string]string{"descricao": description}
	err := c.callJSON(ctx, http.MethodPost, "/classificacao", nil, body, &out)
	return out.ID, err
}

// CreateMovementRecord posts a movement and returns its id.
func (c *Client) CreateMovementRecord(ctx context.Context, m MovementRecord) (int, error) {
	var out created
	err := c.callJSON(ctx, http.MethodPost, "/movimentos", nil, m, &out)
	return out.ID, err
}

// CreateInstallment posts one installment and returns its id.
func (c *Client) CreateInstallment(ctx context.Context, in model.Installment) (int, error) {
	var out created
	err := c.callJSON(ctx, http.MethodPost, "/parcelas", nil, in, &out)
	return out.ID, err
}
