package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adminfin-dev/adminfin/internal/export"
	"github.com/adminfin-dev/adminfin/internal/listing"
)

// listPage is what the people, classification and movement pages share.
type listPage[T any] interface {
	Table() *listing.Table[T]
	SortByColumn(index int) error
	Render(w io.Writer) error
}

type listOptions struct {
	sorts  []int
	export string
}

func (o *listOptions) register(cmd *cobra.Command) {
	cmd.Flags().IntSliceVar(&o.sorts, "sort", nil, "sort by column index; repeat a column to reverse")
	cmd.Flags().StringVar(&o.export, "export", "", "write the list to a .csv or .xlsx file instead of printing it")
}

func showList[T any](cmd *cobra.Command, page listPage[T], o listOptions) error {
	for _, col := range o.sorts {
		if err := page.SortByColumn(col); err != nil {
			return err
		}
	}

	if o.export == "" {
		return page.Render(cmd.OutOrStdout())
	}

	headers, rows := listing.Rows(page.Table())
	headers, rows = export.WithoutColumn(headers, rows, listing.ActionsHeader)
	if err := export.File(o.export, headers, rows); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d registro(s) exportado(s) para %s\n", len(rows), o.export)
	return nil
}

// report prints the server message of a save or delete. A declined
// confirmation is not an error. The message is printed even when the
// reload that follows a successful change failed.
func report(cmd *cobra.Command, msg string, err error) error {
	if errors.Is(err, listing.ErrDeclined) {
		fmt.Fprintln(cmd.OutOrStdout(), "Operação cancelada")
		return nil
	}
	if msg != "" {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
	return err
}
