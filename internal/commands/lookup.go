package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adminfin-dev/adminfin/internal/api"
	"github.com/adminfin-dev/adminfin/internal/format"
)

func newLookupCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Check whether a person or classification exists",
	}
	cmd.AddCommand(newLookupPersonCommand(a), newLookupClassificationCommand(a))
	return cmd
}

func printLookup(cmd *cobra.Command, l api.Lookup) {
	if l.Exists {
		fmt.Fprintf(cmd.OutOrStdout(), "EXISTE (id %d)\n", l.ID)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), "NÃO EXISTE")
}

func newLookupPersonCommand(a *app) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "person <cpf-or-cnpj>",
		Short: "Look a person up by tax document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := personType(typ)
			if err != nil {
				return err
			}
			l, err := a.client.FindPerson(cmd.Context(), t, format.Digits(args[0]))
			if err != nil {
				return err
			}
			printLookup(cmd, l)
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "restrict to a person type")

	return cmd
}

func newLookupClassificationCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classification <description>",
		Short: "Look a classification up by description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.client.FindClassification(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printLookup(cmd, l)
			return nil
		},
	}
}
