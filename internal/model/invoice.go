package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number is a JSON number that the extraction step sometimes emits as a
// string ("3", "1.234,56" is not accepted; decimals use a dot).
type Number float64

// UnmarshalJSON accepts both 12.5 and "12.5". Empty strings and null decode to zero.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			*n = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parsing number %s: %w", string(data), err)
	}
	*n = Number(f)
	return nil
}

// InvoiceSupplier is the issuer block of an extracted invoice.
type InvoiceSupplier struct {
	LegalName string `json:"Razao Social"`
	CNPJ      string `json:"CNPJ"`
}

// InvoiceBilled is the billed-party block of an extracted invoice.
type InvoiceBilled struct {
	Name string `json:"Nome"`
	CPF  string `json:"CPF"`
}

// ExtractedInvoice is the JSON document produced by the invoice extraction
// agent and reviewed before launch.
type ExtractedInvoice struct {
	Supplier              InvoiceSupplier `json:"Fornecedor"`
	Billed                InvoiceBilled   `json:"Faturado"`
	Number                string          `json:"Nota Fiscal"`
	IssueDate             string          `json:"Data Emissao"`
	DueDate               string          `json:"Data de Validade,omitempty"`
	Products              []string        `json:"Descricao Produtos,omitempty"`
	Total                 Number          `json:"Valor Total"`
	InstallmentCount      Number          `json:"Quantidade de Parcelas"`
	ExpenseClassification string          `json:"Classificacao_Despesa"`
}

// UnmarshalJSON also accepts the older "Classificacao Despesa" key.
func (inv *ExtractedInvoice) UnmarshalJSON(data []byte) error {
	type plain ExtractedInvoice
	var aux struct {
		plain
		LegacyClassification string `json:"Classificacao Despesa"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*inv = ExtractedInvoice(aux.plain)
	if inv.ExpenseClassification == "" {
		inv.ExpenseClassification = aux.LegacyClassification
	}
	return nil
}

// Installments returns the installment count as an int; fractional counts truncate.
func (inv ExtractedInvoice) Installments() int {
	return int(inv.InstallmentCount)
}
