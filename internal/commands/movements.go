package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adminfin-dev/adminfin/internal/model"
	"github.com/adminfin-dev/adminfin/internal/movements"
)

func newMovementsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "movements",
		Aliases: []string{"movimentos"},
		Short:   "Manage payable and receivable movements",
	}
	cmd.AddCommand(
		newMovementsListCommand(a),
		newMovementsDetailsCommand(a),
		newMovementsOptionsCommand(a),
		newMovementsSaveCommand(a, false),
		newMovementsSaveCommand(a, true),
		newMovementsDeleteCommand(a),
	)
	return cmd
}

func movementType(s string) (model.MovementType, error) {
	t := model.MovementType(strings.ToUpper(strings.TrimSpace(s)))
	if t != "" && !t.Valid() {
		return "", fmt.Errorf("unknown movement type %q", s)
	}
	return t, nil
}

func newMovementsListCommand(a *app) *cobra.Command {
	var (
		typ   string
		all   bool
		minID int
		opts  listOptions
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := movementType(typ)
			if err != nil {
				return err
			}
			page := movements.NewPage(a.client, a.logger, a.cfg.Location())
			if err := page.LoadFiltered(cmd.Context(), movements.Filter{Type: t, IncludeInactive: all, MinID: minID}); err != nil {
				return err
			}
			return showList[model.Movement](cmd, page, opts)
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "APAGAR or ARECEBER")
	cmd.Flags().BoolVar(&all, "all", false, "include INATIVO records")
	cmd.Flags().IntVar(&minID, "min-id", 0, "only movements with id >= min-id")
	opts.register(cmd)

	return cmd
}

func newMovementsDetailsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "details <id>",
		Aliases: []string{"show"},
		Short:   "Show a movement with its classifications and installments",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page := movements.NewPage(a.client, a.logger, a.cfg.Location())
			details, err := page.Details(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), details)
			return nil
		},
	}
}

func newMovementsOptionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the people and classifications a movement can reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page := movements.NewPage(a.client, a.logger, a.cfg.Location())
			if err := page.LoadReferenceData(cmd.Context()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Fornecedor/Cliente:")
			for _, o := range page.SupplierOptions() {
				fmt.Fprintf(out, "  %d  %s\n", o.ID, o.Label)
			}
			fmt.Fprintln(out, "Faturado:")
			for _, o := range page.BilledOptions() {
				fmt.Fprintf(out, "  %d  %s\n", o.ID, o.Label)
			}
			fmt.Fprintln(out, "Classificações:")
			for _, o := range page.ClassificationOptions(nil) {
				fmt.Fprintf(out, "  %d  %s: %s\n", o.Classification.ID, o.Classification.Type, o.Classification.Description)
			}
			return nil
		},
	}
}

// checkReferences rejects ids the form selects would not offer.
func checkReferences(page *movements.Page, form movements.Form) error {
	hasPerson := func(opts []movements.PersonOption, id int) bool {
		return slices.ContainsFunc(opts, func(o movements.PersonOption) bool { return o.ID == id })
	}
	if form.CounterpartyID != 0 && !hasPerson(page.SupplierOptions(), form.CounterpartyID) {
		return fmt.Errorf("pessoa %d não pode ser fornecedor/cliente", form.CounterpartyID)
	}
	if form.BilledID != 0 && !hasPerson(page.BilledOptions(), form.BilledID) {
		return fmt.Errorf("pessoa %d não pode ser faturado", form.BilledID)
	}
	checked := 0
	for _, o := range page.ClassificationOptions(form.ClassificationIDs) {
		if o.Checked {
			checked++
		}
	}
	if checked != len(form.ClassificationIDs) {
		return fmt.Errorf("classificação desconhecida em %v", form.ClassificationIDs)
	}
	return nil
}

func newMovementsSaveCommand(a *app, update bool) *cobra.Command {
	var (
		typ             string
		amount          float64
		supplier        int
		billed          int
		classifications []int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a movement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page := movements.NewPage(a.client, a.logger, a.cfg.Location())

			var (
				form movements.Form
				err  error
			)
			if update {
				id, perr := parseID(args[0])
				if perr != nil {
					return perr
				}
				form, err = page.OpenEdit(ctx, id)
			} else {
				form, err = page.OpenCreate(ctx)
			}
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !update || flags.Changed("type") {
				form.Type = model.MovementType(typ)
			}
			if !update || flags.Changed("amount") {
				form.Amount = amount
			}
			if !update || flags.Changed("supplier") {
				form.CounterpartyID = supplier
			}
			if !update || flags.Changed("billed") {
				form.BilledID = billed
			}
			if !update || flags.Changed("classification") {
				form.ClassificationIDs = classifications
			}
			if err := checkReferences(page, form); err != nil {
				return err
			}

			msg, err := page.Save(ctx, form)
			return report(cmd, msg, err)
		},
	}
	if update {
		cmd.Use = "update <id>"
		cmd.Short = "Update a movement"
		cmd.Args = cobra.ExactArgs(1)
	}

	cmd.Flags().StringVar(&typ, "type", "", "APAGAR or ARECEBER")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount")
	cmd.Flags().IntVar(&supplier, "supplier", 0, "supplier/client person id")
	cmd.Flags().IntVar(&billed, "billed", 0, "billed person id")
	cmd.Flags().IntSliceVar(&classifications, "classification", nil, "classification id (repeatable)")

	return cmd
}

func newMovementsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete a movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page := movements.NewPage(a.client, a.logger, a.cfg.Location())
			msg, err := page.Delete(cmd.Context(), id, a.confirmer(cmd))
			return report(cmd, msg, err)
		},
	}
}
