// Package invoice reviews an extracted invoice before it is launched: it
// checks that the supplier, the billed party and the expense classification
// exist, registers the missing ones, and records the movement with its
// installments.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adminfin-dev/adminfin/internal/api"
	"github.com/adminfin-dev/adminfin/internal/format"
	"github.com/adminfin-dev/adminfin/internal/launchlog"
	"github.com/adminfin-dev/adminfin/internal/model"
)

// Placeholder stands in for an id that is not known yet.
const Placeholder = "—"

var (
	// ErrNotReady is returned by Confirm while any of the three ids is unknown.
	ErrNotReady = errors.New("Valide/cadastre Fornecedor, Faturado e Classificação antes de confirmar")
	// ErrAlreadyKnown is returned when registering a party that already has an id.
	ErrAlreadyKnown = errors.New("registro já existe")
	// ErrNotChecked is returned when registering a party whose check has not
	// come back negative.
	ErrNotChecked = errors.New("valide antes de cadastrar")
)

// Check is the state of one existence check.
type Check struct {
	Label   string
	Checked bool
	Exists  bool
	ID      int
	Err     error
}

// Badge is the status shown next to the check.
func (c Check) Badge() string {
	switch {
	case c.Err != nil:
		return "ERRO"
	case !c.Checked:
		return "Aguardando..."
	case c.Exists:
		return "EXISTE"
	}
	return "NÃO EXISTE"
}

// IDText renders the id or the placeholder.
func (c Check) IDText() string {
	if !c.Exists || c.ID == 0 {
		return Placeholder
	}
	return strconv.Itoa(c.ID)
}

// CanRegister reports whether the register action is offered.
func (c Check) CanRegister() bool {
	return c.Checked && c.Err == nil && !c.Exists
}

// registrable returns why the register action is refused, or nil.
func (c Check) registrable() error {
	switch {
	case c.Exists:
		return ErrAlreadyKnown
	case !c.CanRegister():
		return fmt.Errorf("%s: %w", c.Label, ErrNotChecked)
	}
	return nil
}

func (c *Check) resolve(l api.Lookup, err error) {
	c.Checked = true
	c.Err = err
	c.Exists = err == nil && l.Exists && l.ID != 0
	c.ID = 0
	if c.Exists {
		c.ID = l.ID
	}
}

func (c *Check) registered(id int) {
	c.Checked, c.Exists, c.ID, c.Err = true, true, id, nil
}

// Parties holds the three checks of an invoice review.
type Parties struct {
	Supplier       Check
	Billed         Check
	Classification Check
}

func newParties() Parties {
	return Parties{
		Supplier:       Check{Label: "Fornecedor"},
		Billed:         Check{Label: "Faturado"},
		Classification: Check{Label: "Classificação"},
	}
}

// Checks returns the three checks in display order.
func (p *Parties) Checks() []Check {
	return []Check{p.Supplier, p.Billed, p.Classification}
}

// CanConfirm reports whether all three ids are known.
func (p *Parties) CanConfirm() bool {
	for _, c := range p.Checks() {
		if c.IDText() == Placeholder {
			return false
		}
	}
	return true
}

// failures joins the errors of the failed checks.
func (p *Parties) failures(log *logrus.Entry) error {
	var errs []error
	for _, c := range p.Checks() {
		if c.Err != nil {
			log.WithError(c.Err).Warnf("checking %s", c.Label)
			errs = append(errs, fmt.Errorf("%s: %w", c.Label, c.Err))
		}
	}
	return errors.Join(errs...)
}

// Review checks and registers the parties one endpoint at a time, then
// records the movement and its installments itself.
type Review struct {
	Parties

	client  *api.Client
	logger  *logrus.Entry
	invoice model.ExtractedInvoice
}

// NewReview starts a review of inv. Nothing is fetched until Validate.
func NewReview(client *api.Client, inv model.ExtractedInvoice, logger *logrus.Logger) *Review {
	return &Review{
		Parties: newParties(),
		client:  client,
		logger:  logger.WithField("nota_fiscal", inv.Number),
		invoice: inv,
	}
}

// Invoice returns the reviewed document.
func (r *Review) Invoice() model.ExtractedInvoice {
	return r.invoice
}

func (r *Review) supplierDocument() string {
	return format.Digits(r.invoice.Supplier.CNPJ)
}

func (r *Review) billedDocument() string {
	return format.Digits(r.invoice.Billed.CPF)
}

// Validate runs the three existence checks concurrently. Each check records
// its own outcome; the returned error joins the failed ones.
func (r *Review) Validate(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		r.Supplier.resolve(r.client.FindPerson(ctx, model.PersonSupplier, r.supplierDocument()))
	}()
	go func() {
		defer wg.Done()
		r.Billed.resolve(r.client.FindPerson(ctx, model.PersonBilled, r.billedDocument()))
	}()
	go func() {
		defer wg.Done()
		r.Classification.resolve(r.client.FindClassification(ctx, r.invoice.ExpenseClassification))
	}()
	wg.Wait()
	return r.failures(r.logger)
}

// RegisterSupplier creates the supplier from the invoice issuer block.
func (r *Review) RegisterSupplier(ctx context.Context) error {
	if err := r.Supplier.registrable(); err != nil {
		return err
	}
	id, err := r.client.CreateLookupPerson(ctx, api.NewParty{
		Type:     model.PersonSupplier,
		Name:     r.invoice.Supplier.LegalName,
		Document: r.supplierDocument(),
	})
	if err != nil {
		return fmt.Errorf("registering supplier: %w", err)
	}
	r.Supplier.registered(id)
	r.logger.WithField("id", id).Info("supplier registered")
	return nil
}

// RegisterBilled creates the billed party from the invoice.
func (r *Review) RegisterBilled(ctx context.Context) error {
	if err := r.Billed.registrable(); err != nil {
		return err
	}
	id, err := r.client.CreateLookupPerson(ctx, api.NewParty{
		Type:     model.PersonBilled,
		Name:     r.invoice.Billed.Name,
		Document: r.billedDocument(),
	})
	if err != nil {
		return fmt.Errorf("registering billed party: %w", err)
	}
	r.Billed.registered(id)
	r.logger.WithField("id", id).Info("billed party registered")
	return nil
}

// RegisterClassification creates the expense classification.
func (r *Review) RegisterClassification(ctx context.Context) error {
	if err := r.Classification.registrable(); err != nil {
		return err
	}
	id, err := r.client.CreateLookupClassification(ctx, r.invoice.ExpenseClassification)
	if err != nil {
		return fmt.Errorf("registering classification: %w", err)
	}
	r.Classification.registered(id)
	r.logger.WithField("id", id).Info("classification registered")
	return nil
}

// RegisterMissing registers every party whose check came back negative.
func (r *Review) RegisterMissing(ctx context.Context) error {
	if r.Supplier.CanRegister() {
		if err := r.RegisterSupplier(ctx); err != nil {
			return err
		}
	}
	if r.Billed.CanRegister() {
		if err := r.RegisterBilled(ctx); err != nil {
			return err
		}
	}
	if r.Classification.CanRegister() {
		if err := r.RegisterClassification(ctx); err != nil {
			return err
		}
	}
	return nil
}

// InstallmentOutcome is the result of one installment POST.
type InstallmentOutcome struct {
	Number int
	Amount float64
	ID     int
	Err    error
}

// Result is what Confirm recorded.
type Result struct {
	MovementID   int
	Installments []InstallmentOutcome
}

// Failed returns the installments the server rejected.
func (res Result) Failed() []InstallmentOutcome {
	var out []InstallmentOutcome
	for _, in := range res.Installments {
		if in.Err != nil {
			out = append(out, in)
		}
	}
	return out
}

// Entries converts the result to launch-log rows.
func (res Result) Entries(invoiceNumber string, total float64, at time.Time) []launchlog.Entry {
	entries := []launchlog.Entry{{
		Timestamp: at,
		Invoice:   invoiceNumber,
		Action:    "movimento",
		Reference: fmt.Sprintf("movimento %d", res.MovementID),
		Amount:    format.CurrencyFloat(total),
		Outcome:   launchlog.OutcomeOK,
	}}
	for _, in := range res.Installments {
		e := launchlog.Entry{
			Timestamp: at,
			Invoice:   invoiceNumber,
			Action:    "parcela",
			Reference: fmt.Sprintf("movimento %d parcela %d", res.MovementID, in.Number),
			Amount:    format.CurrencyFloat(in.Amount),
			Outcome:   launchlog.OutcomeOK,
		}
		if in.Err != nil {
			e.Outcome = launchlog.OutcomeFailed
			e.Details = in.Err.Error()
		}
		entries = append(entries, e)
	}
	return entries
}

// SplitInstallments divides total evenly into n shares with plain float
// division. The shares are not reconciled against total.
func SplitInstallments(total float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	share := total / float64(n)
	out := make([]float64, n)
	for i := range out {
		out[i] = share
	}
	return out
}

// Confirm posts the payable movement and then one installment per share.
// A failed installment is logged and the loop moves on; nothing is rolled back.
func (r *Review) Confirm(ctx context.Context) (Result, error) {
	if !r.CanConfirm() {
		return Result{}, ErrNotReady
	}

	total := float64(r.invoice.Total)
	movementID, err := r.client.CreateMovementRecord(ctx, api.MovementRecord{
		SupplierID:       r.Supplier.ID,
		BilledID:         r.Billed.ID,
		ClassificationID: r.Classification.ID,
		Total:            total,
		IssueDate:        r.invoice.IssueDate,
		Type:             model.MovementPayable,
	})
	if err != nil {
		return Result{}, fmt.Errorf("recording movement: %w", err)
	}
	log := r.logger.WithField("movimento_id", movementID)
	log.Info("movement recorded")

	res := Result{MovementID: movementID}
	for i, amount := range SplitInstallments(total, r.invoice.Installments()) {
		out := InstallmentOutcome{Number: i + 1, Amount: amount}
		out.ID, out.Err = r.client.CreateInstallment(ctx, model.Installment{
			MovementID: movementID,
			Number:     out.Number,
			Amount:     amount,
		})
		if out.Err != nil {
			log.WithError(out.Err).WithField("parcela", out.Number).Warn("installment failed")
		}
		res.Installments = append(res.Installments, out)
	}
	return res, nil
}
