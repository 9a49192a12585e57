package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adminfin-dev/adminfin/internal/classifications"
	"github.com/adminfin-dev/adminfin/internal/format"
	"github.com/adminfin-dev/adminfin/internal/model"
)

func newClassificationsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "classifications",
		Aliases: []string{"classificacoes"},
		Short:   "Manage revenue and expense classifications",
	}
	cmd.AddCommand(
		newClassificationsListCommand(a),
		newClassificationsShowCommand(a),
		newClassificationsSaveCommand(a, false),
		newClassificationsSaveCommand(a, true),
		newClassificationsDeleteCommand(a),
	)
	return cmd
}

func classificationType(s string) (model.ClassificationType, error) {
	t := model.ClassificationType(strings.ToUpper(strings.TrimSpace(s)))
	if t != "" && !t.Valid() {
		return "", fmt.Errorf("unknown classification type %q", s)
	}
	return t, nil
}

func newClassificationsListCommand(a *app) *cobra.Command {
	var (
		typ    string
		all    bool
		search string
		opts   listOptions
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List classifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := classificationType(typ)
			if err != nil {
				return err
			}
			page := classifications.NewPage(a.client, a.logger, a.cfg.Location())
			if err := page.LoadFiltered(cmd.Context(), classifications.Filter{Type: t, IncludeInactive: all, Search: search}); err != nil {
				return err
			}
			return showList[model.Classification](cmd, page, opts)
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "RECEITA or DESPESA")
	cmd.Flags().BoolVar(&all, "all", false, "include INATIVO records")
	cmd.Flags().StringVar(&search, "search", "", "match the description")
	opts.register(cmd)

	return cmd
}

func newClassificationsShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one classification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.client.GetClassification(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %d\n", c.ID)
			fmt.Fprintf(out, "Tipo: %s\n", c.Type)
			fmt.Fprintf(out, "Descrição: %s\n", c.Description)
			fmt.Fprintf(out, "Status: %s\n", c.Status)
			fmt.Fprintf(out, "Data Cadastro: %s\n", format.Timestamp(c.RegisteredAt, a.cfg.Location()))
			return nil
		},
	}
}

func newClassificationsSaveCommand(a *app, update bool) *cobra.Command {
	var typ, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a classification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page := classifications.NewPage(a.client, a.logger, a.cfg.Location())

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
			if !update || cmd.Flags().Changed("type") {
				form.Type = model.ClassificationType(typ)
			}
			if !update || cmd.Flags().Changed("description") {
				form.Description = description
			}

			msg, err := page.Save(ctx, form)
			return report(cmd, msg, err)
		},
	}
	if update {
		cmd.Use = "update <id>"
		cmd.Short = "Update a classification"
		cmd.Args = cobra.ExactArgs(1)
	}

	cmd.Flags().StringVar(&typ, "type", "", "RECEITA or DESPESA")
	cmd.Flags().StringVar(&description, "description", "", "description")

	return cmd
}

func newClassificationsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete a classification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page := classifications.NewPage(a.client, a.logger, a.cfg.Location())
			msg, err := page.Delete(cmd.Context(), id, a.confirmer(cmd))
			return report(cmd, msg, err)
		},
	}
}
