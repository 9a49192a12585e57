package model

// PersonType classifies a party record.
type PersonType string

const (
	PersonSupplier       PersonType = "FORNECEDOR"
	PersonClient         PersonType = "CLIENTE"
	PersonBilled         PersonType = "FATURADO"
	PersonClientSupplier PersonType = "CLIENTE-FORNECEDOR"
)

// PersonTypes lists every accepted PersonType in display order.
var PersonTypes = []PersonType{PersonSupplier, PersonClient, PersonBilled, PersonClientSupplier}

// Valid reports whether t is a known PersonType.
func (t PersonType) Valid() bool {
	for _, pt := range PersonTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// CounterpartyRole reports whether a person of this type can be the
// supplier/client side of a movement.
func (t PersonType) CounterpartyRole() bool {
	return t == PersonSupplier || t == PersonClient || t == PersonClientSupplier
}

// BilledRole reports whether a person of this type can be the billed side of a movement.
func (t PersonType) BilledRole() bool {
	return t == PersonBilled || t == PersonClientSupplier
}

// Person is a client, supplier or billed party as served by /api/pessoas.
type Person struct {
	ID           int        `json:"id"`
	Type         PersonType `json:"tipo"`
	LegalName    string     `json:"razao_social"`
	Document     string     `json:"cpf_cnpj"`
	Status       Status     `json:"status"`
	RegisteredAt string     `json:"data_cadastro"` // ISO-8601, backend clock
}

// PersonInput is the body of a create or update request.
type PersonInput struct {
	Type      PersonType `json:"tipo" validate:"required,oneof=FORNECEDOR CLIENTE FATURADO CLIENTE-FORNECEDOR"`
	LegalName string     `json:"razao_social" validate:"required"`
	Document  string     `json:"cpf_cnpj" validate:"required"`
}
