package model

import "github.com/shopspring/decimal"

// MovementType marks a movement as payable or receivable.
type MovementType string

const (
	MovementPayable    MovementType = "APAGAR"
	MovementReceivable MovementType = "ARECEBER"
)

// Valid reports whether t is a known MovementType.
func (t MovementType) Valid() bool {
	return t == MovementPayable || t == MovementReceivable
}

// Movement is a financial transaction joining a counterparty, a billed
// party and any number of classifications.
type Movement struct {
	ID                int              `json:"id"`
	Type              MovementType     `json:"tipo"`
	Amount            decimal.Decimal  `json:"valor"`
	CounterpartyID    int              `json:"fornecedor_cliente_id,omitempty"`
	CounterpartyName  string           `json:"fornecedor_cliente_nome"`
	BilledID          int              `json:"faturado_id,omitempty"`
	BilledName        string           `json:"faturado_nome"`
	Status            Status           `json:"status"`
	MovedAt           string           `json:"data_movimento"`
	Classifications   []Classification `json:"classificacoes,omitempty"`
	ClassificationIDs []int            `json:"classificacao_ids,omitempty"`
	Installments      []Installment    `json:"parcelas,omitempty"`
}

// SelectedClassificationIDs returns the ids of the classifications attached
// to m, preferring the explicit id list when the backend sends one.
func (m Movement) SelectedClassificationIDs() []int {
	if len(m.ClassificationIDs) > 0 {
		return m.ClassificationIDs
	}
	ids := make([]int, 0, len(m.Classifications))
	for _, c := range m.Classifications {
		ids = append(ids, c.ID)
	}
	return ids
}

// MovementInput is the body of a create or update request on /api/movimentos.
type MovementInput struct {
	Type              MovementType `json:"tipo" validate:"required,oneof=APAGAR ARECEBER"`
	Amount            float64      `json:"valor" validate:"required,gt=0"`
	CounterpartyID    int          `json:"fornecedor_cliente_id" validate:"required"`
	BilledID          int          `json:"faturado_id" validate:"required"`
	ClassificationIDs []int        `json:"classificacao_ids"`
}

// Installment is one scheduled share of a movement's total.
type Installment struct {
	MovementID int     `json:"movimento_id"`
	Number     int     `json:"parcela"`
	Amount     float64 `json:"valor"`
}
