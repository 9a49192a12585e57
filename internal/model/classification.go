package model

// ClassificationType splits categories into revenue and expense tags.
type ClassificationType string

const (
	ClassificationRevenue ClassificationType = "RECEITA"
	ClassificationExpense ClassificationType = "DESPESA"
)

// Valid reports whether t is a known ClassificationType.
func (t ClassificationType) Valid() bool {
	return t == ClassificationRevenue || t == ClassificationExpense
}

// Classification is an expense or revenue category.
type Classification struct {
	ID           int                `json:"id"`
	Type         ClassificationType `json:"tipo"`
	Description  string             `json:"descricao"`
	Status       Status             `json:"status"`
	RegisteredAt string             `json:"data_cadastro"`
}

// ClassificationInput is the body of a create or update request.
type ClassificationInput struct {
	Type        ClassificationType `json:"tipo" validate:"required,oneof=RECEITA DESPESA"`
	Description string             `json:"descricao" validate:"required"`
}
