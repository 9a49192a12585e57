package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adminfin-dev/adminfin/internal/format"
	"github.com/adminfin-dev/adminfin/internal/model"
	"github.com/adminfin-dev/adminfin/internal/people"
)

func newPeopleCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "people",
		Aliases: []string{"pessoas"},
		Short:   "Manage clients, suppliers and billed parties",
	}
	cmd.AddCommand(
		newPeopleListCommand(a),
		newPeopleShowCommand(a),
		newPeopleSaveCommand(a, false),
		newPeopleSaveCommand(a, true),
		newPeopleDeleteCommand(a),
	)
	return cmd
}

func personType(s string) (model.PersonType, error) {
	t := model.PersonType(strings.ToUpper(strings.TrimSpace(s)))
	if t != "" && !t.Valid() {
		return "", fmt.Errorf("unknown person type %q", s)
	}
	return t, nil
}

func newPeopleListCommand(a *app) *cobra.Command {
	var (
		typ    string
		all    bool
		search string
		opts   listOptions
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List people",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := personType(typ)
			if err != nil {
				return err
			}
			page := people.NewPage(a.client, a.logger, a.cfg.Location())
			if err := page.LoadFiltered(cmd.Context(), people.Filter{Type: t, IncludeInactive: all, Search: search}); err != nil {
				return err
			}
			return showList[model.Person](cmd, page, opts)
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "FORNECEDOR, CLIENTE, FATURADO or CLIENTE-FORNECEDOR")
	cmd.Flags().BoolVar(&all, "all", false, "include INATIVO records")
	cmd.Flags().StringVar(&search, "search", "", "match legal name or document")
	opts.register(cmd)

	return cmd
}

func newPeopleShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			person, err := a.client.GetPerson(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %d\n", person.ID)
			fmt.Fprintf(out, "Tipo: %s\n", person.Type)
			fmt.Fprintf(out, "Razão Social: %s\n", person.LegalName)
			fmt.Fprintf(out, "CPF/CNPJ: %s\n", person.Document)
			fmt.Fprintf(out, "Status: %s\n", person.Status)
			fmt.Fprintf(out, "Data Cadastro: %s\n", format.Timestamp(person.RegisteredAt, a.cfg.Location()))
			return nil
		},
	}
}

// newPeopleSaveCommand builds "create" or, with update set, "update <id>".
// Update only overrides the flags that were given.
func newPeopleSaveCommand(a *app, update bool) *cobra.Command {
	var typ, name, document string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page := people.NewPage(a.client, a.logger, a.cfg.Location())

			form := page.OpenCreate()
			if update {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if form, err = page.OpenEdit(ctx, id); err != nil {
					return err
				}
			}

			flags := cmd.Flags()
			if !update || flags.Changed("type") {
				form.Type = model.PersonType(typ)
			}
			if !update || flags.Changed("name") {
				form.LegalName = name
			}
			if !update || flags.Changed("document") {
				form.Document = document
			}

			msg, err := page.Save(ctx, form)
			return report(cmd, msg, err)
		},
	}
	if update {
		cmd.Use = "update <id>"
		cmd.Short = "Update a person"
		cmd.Args = cobra.ExactArgs(1)
	}

	cmd.Flags().StringVar(&typ, "type", "", "FORNECEDOR, CLIENTE, FATURADO or CLIENTE-FORNECEDOR")
	cmd.Flags().StringVar(&name, "name", "", "legal name")
	cmd.Flags().StringVar(&document, "document", "", "CPF or CNPJ")

	return cmd
}

func newPeopleDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page := people.NewPage(a.client, a.logger, a.cfg.Location())
			msg, err := page.Delete(cmd.Context(), id, a.confirmer(cmd))
			return report(cmd, msg, err)
		},
	}
}
