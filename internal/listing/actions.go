package listing

import (
	"errors"
	"fmt"

	"github.com/adminfin-dev/adminfin/internal/model"
)

var (
	// ErrInactive is returned when deleting a record that is already INATIVO.
	ErrInactive = errors.New("registro já está inativo")
	// ErrDeclined is returned when the operator does not confirm an action.
	ErrDeclined = errors.New("operação cancelada")
)

// ActionsHeader is the header of the per-row actions column.
const ActionsHeader = "Ações"

// Actions renders the actions cell of a row. Delete stays disabled for
// soft-deleted records.
func Actions(status model.Status) string {
	if status.Inactive() {
		return "editar [excluir desabilitado]"
	}
	return "editar excluir"
}

// DeleteQuestion is the confirmation prompt shown before a soft delete.
func DeleteQuestion(what string, id int) string {
	return fmt.Sprintf("Tem certeza que deseja excluir %s #%d?", what, id)
}
