package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/adminfin-dev/adminfin/internal/format"
	"github.com/adminfin-dev/adminfin/internal/invoice"
	"github.com/adminfin-dev/adminfin/internal/launchlog"
	"github.com/adminfin-dev/adminfin/internal/listing"
	"github.com/adminfin-dev/adminfin/internal/model"
)

func newInvoiceCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoice",
		Aliases: []string{"nota"},
		Short:   "Review and launch extracted invoices",
	}
	cmd.AddCommand(newInvoiceReviewCommand(a), newInvoiceLogCommand(a))
	return cmd
}

type reviewOptions struct {
	registerMissing bool
	confirm         bool
	server          bool
}

func newInvoiceReviewCommand(a *app) *cobra.Command {
	var opts reviewOptions

	cmd := &cobra.Command{
		Use:   "review <file.json>",
		Short: "Check the parties of an extracted invoice and optionally launch it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := invoice.Load(args[0])
			if err != nil {
				return err
			}
			printInvoice(cmd.OutOrStdout(), inv)
			if opts.server {
				return runServerReview(cmd, a, inv, opts)
			}
			return runReview(cmd, a, inv, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.registerMissing, "register-missing", false, "register every party that does not exist yet")
	cmd.Flags().BoolVar(&opts.confirm, "confirm", false, "launch the movement and its installments")
	cmd.Flags().BoolVar(&opts.server, "server", false, "let the backend validate, register and launch in one call each")

	return cmd
}

func printInvoice(w io.Writer, inv model.ExtractedInvoice) {
	fmt.Fprintf(w, "Nota Fiscal: %s\n", inv.Number)
	fmt.Fprintf(w, "Emissão: %s\n", inv.IssueDate)
	fmt.Fprintf(w, "Fornecedor: %s (%s)\n", inv.Supplier.LegalName, inv.Supplier.CNPJ)
	fmt.Fprintf(w, "Faturado: %s (%s)\n", inv.Billed.Name, inv.Billed.CPF)
	fmt.Fprintf(w, "Classificação: %s\n", inv.ExpenseClassification)
	fmt.Fprintf(w, "Valor Total: %s\n", format.CurrencyFloat(float64(inv.Total)))
	fmt.Fprintf(w, "Parcelas: %d\n\n", inv.Installments())
}

func renderChecks(w io.Writer, checks []invoice.Check) error {
	t := listing.New(
		listing.Column[invoice.Check]{Header: "Verificação", Text: func(c invoice.Check) string { return c.Label }},
		listing.Column[invoice.Check]{Header: "Status", Text: invoice.Check.Badge},
		listing.Column[invoice.Check]{Header: "ID", Text: invoice.Check.IDText},
		listing.Column[invoice.Check]{Header: "Erro", Text: func(c invoice.Check) string {
			if c.Err == nil {
				return ""
			}
			return c.Err.Error()
		}},
	)
	t.Set(checks)
	return listing.Render(w, t)
}

// confirmLaunch asks before anything is written. Not confirming is not an error.
func confirmLaunch(cmd *cobra.Command, a *app, inv model.ExtractedInvoice) (bool, error) {
	ok, err := a.confirmer(cmd).Confirm(fmt.Sprintf("Confirmar lançamento da nota fiscal %s?", inv.Number))
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Operação cancelada")
	}
	return ok, nil
}

func (a *app) appendLaunchLog(entries []launchlog.Entry) {
	if err := launchlog.Append(a.cfg.LaunchLog, entries); err != nil {
		a.logger.WithError(err).Warn("writing launch log")
	}
}

func runReview(cmd *cobra.Command, a *app, inv model.ExtractedInvoice, opts reviewOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	r := invoice.NewReview(a.client, inv, a.logger)

	verr := r.Validate(ctx)
	if err := renderChecks(out, r.Checks()); err != nil {
		return err
	}
	if verr != nil {
		return verr
	}

	if opts.registerMissing {
		if err := r.RegisterMissing(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "\nApós cadastro:")
		if err := renderChecks(out, r.Checks()); err != nil {
			return err
		}
	}

	if !opts.confirm {
		return nil
	}
	if !r.CanConfirm() {
		return invoice.ErrNotReady
	}
	if ok, err := confirmLaunch(cmd, a, inv); err != nil || !ok {
		return err
	}

	now := time.Now()
	res, err := r.Confirm(ctx)
	if err != nil {
		a.appendLaunchLog([]launchlog.Entry{{
			Timestamp: now,
			Invoice:   inv.Number,
			Action:    "movimento",
			Amount:    format.CurrencyFloat(float64(inv.Total)),
			Outcome:   launchlog.OutcomeFailed,
			Details:   err.Error(),
		}})
		return err
	}
	a.appendLaunchLog(res.Entries(inv.Number, float64(inv.Total), now))

	fmt.Fprintf(out, "\nMovimento %d lançado.\n", res.MovementID)
	for _, in := range res.Installments {
		if in.Err != nil {
			fmt.Fprintf(out, "Parcela %d: %s falhou: %v\n", in.Number, format.CurrencyFloat(in.Amount), in.Err)
			continue
		}
		fmt.Fprintf(out, "Parcela %d: %s\n", in.Number, format.CurrencyFloat(in.Amount))
	}
	if failed := res.Failed(); len(failed) > 0 {
		fmt.Fprintf(out, "Atenção: %d parcela(s) não gravada(s).\n", len(failed))
	}
	return nil
}

func runServerReview(cmd *cobra.Command, a *app, inv model.ExtractedInvoice, opts reviewOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	r := invoice.NewServerReview(a.client, inv, a.logger)

	verr := r.Validate(ctx)
	if err := renderChecks(out, r.Checks()); err != nil {
		return err
	}
	if verr != nil {
		return verr
	}

	if opts.registerMissing {
		if err := r.RegisterMissing(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "\nApós cadastro:")
		if err := renderChecks(out, r.Checks()); err != nil {
			return err
		}
	}

	if !opts.confirm {
		return nil
	}
	if !r.CanConfirm() {
		return invoice.ErrNotReady
	}
	if ok, err := confirmLaunch(cmd, a, inv); err != nil || !ok {
		return err
	}

	entry := launchlog.Entry{
		Timestamp: time.Now(),
		Invoice:   inv.Number,
		Action:    "lancamento",
		Amount:    format.CurrencyFloat(float64(inv.Total)),
		Outcome:   launchlog.OutcomeOK,
	}
	res, err := r.Launch(ctx)
	if err != nil {
		entry.Outcome, entry.Details = launchlog.OutcomeFailed, err.Error()
		a.appendLaunchLog([]launchlog.Entry{entry})
		return err
	}
	entry.Reference = fmt.Sprintf("movimento %d nota %d", res.MovementID, res.InvoiceID)
	entry.Details = res.Message
	a.appendLaunchLog([]launchlog.Entry{entry})

	fmt.Fprintf(out, "\n%s\nMovimento %d, nota fiscal %d.\n", res.Message, res.MovementID, res.InvoiceID)
	return nil
}

func newInvoiceLogCommand(a *app) *cobra.Command {
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the launch log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := launchlog.Read(a.cfg.LaunchLog)
			if err != nil {
				return err
			}
			if failedOnly {
				entries = listing.Filter(entries, launchlog.OutcomeFailed, func(e launchlog.Entry) string { return e.Outcome })
			}

			loc := a.cfg.Location()
			t := listing.New(
				listing.Column[launchlog.Entry]{Header: "Data", Text: func(e launchlog.Entry) string {
					return e.Timestamp.In(loc).Format(format.TimestampLayout)
				}, Key: func(e launchlog.Entry) string { return e.Timestamp.UTC().Format(time.RFC3339) }},
				listing.Column[launchlog.Entry]{Header: "Nota", Text: func(e launchlog.Entry) string { return e.Invoice }},
				listing.Column[launchlog.Entry]{Header: "Ação", Text: func(e launchlog.Entry) string { return e.Action }},
				listing.Column[launchlog.Entry]{Header: "Referência", Text: func(e launchlog.Entry) string { return e.Reference }},
				listing.Column[launchlog.Entry]{Header: "Valor", Text: func(e launchlog.Entry) string { return e.Amount }},
				listing.Column[launchlog.Entry]{Header: "Resultado", Text: func(e launchlog.Entry) string { return e.Outcome }},
				listing.Column[launchlog.Entry]{Header: "Detalhes", Text: func(e launchlog.Entry) string { return e.Details }},
			)
			t.Set(entries)
			if err := listing.Render(cmd.OutOrStdout(), t); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), format.Counter(t.Len()))
			return err
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed", false, "only failed steps")

	return cmd
}
