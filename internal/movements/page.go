// Package movements is the list and form controller of payable and
// receivable movements. The form picks its counterparty, billed party and
// classifications from reference data loaded alongside the list.
package movements

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/adminfin-dev/adminfin/internal/api"
	"github.com/adminfin-dev/adminfin/internal/format"
	"github.com/adminfin-dev/adminfin/internal/listing"
	"github.com/adminfin-dev/adminfin/internal/model"
	"github.com/adminfin-dev/adminfin/internal/prompt"
)

// Filter narrows the list. MinID drops movements with a lower id locally.
type Filter struct {
	Type            model.MovementType
	IncludeInactive bool
	MinID           int
}

// Form is the create/edit form. ID zero means create.
type Form struct {
	ID                int
	Type              model.MovementType
	Amount            float64
	CounterpartyID    int
	BilledID          int
	ClassificationIDs []int
	Status            model.Status
}

// Input returns the request body for the form.
func (f Form) Input() model.MovementInput {
	ids := f.ClassificationIDs
	if ids == nil {
		ids = []int{}
	}
	return model.MovementInput{
		Type:              model.MovementType(strings.ToUpper(strings.TrimSpace(string(f.Type)))),
		Amount:            f.Amount,
		CounterpartyID:    f.CounterpartyID,
		BilledID:          f.BilledID,
		ClassificationIDs: ids,
	}
}

// PersonOption is one entry of the counterparty or billed select.
type PersonOption struct {
	ID    int
	Label string
}

// ClassificationOption is one classification checkbox.
type ClassificationOption struct {
	Classification model.Classification
	Checked        bool
}

// Page holds the listed movements plus the reference data of the form.
type Page struct {
	client *api.Client
	logger *logrus.Logger
	loc    *time.Location
	table  *listing.Table[model.Movement]
	filter Filter

	people          []model.Person
	classifications []model.Classification
}

func NewPage(client *api.Client, logger *logrus.Logger, loc *time.Location) *Page {
	return &Page{
		client: client,
		logger: logger,
		loc:    loc,
		table:  listing.New(columns(loc)...),
	}
}

func columns(loc *time.Location) []listing.Column[model.Movement] {
	return []listing.Column[model.Movement]{
		{Header: "ID", Text: func(m model.Movement) string { return strconv.Itoa(m.ID) }, Number: func(m model.Movement) float64 { return float64(m.ID) }},
		{Header: "Tipo", Text: func(m model.Movement) string { return string(m.Type) }},
		{Header: "Fornecedor/Cliente", Text: func(m model.Movement) string { return m.CounterpartyName }},
		{Header: "Faturado", Text: func(m model.Movement) string { return m.BilledName }},
		{Header: "Valor", Text: func(m model.Movement) string { return format.Currency(m.Amount) }, Number: func(m model.Movement) float64 { return m.Amount.InexactFloat64() }},
		{Header: "Status", Text: func(m model.Movement) string { return string(m.Status) }},
		{
			Header: "Data",
			Text:   func(m model.Movement) string { return format.Timestamp(m.MovedAt, loc) },
			Key:    func(m model.Movement) string { return m.MovedAt },
		},
		{Header: listing.ActionsHeader, Text: func(m model.Movement) string { return listing.Actions(m.Status) }},
	}
}

func (p *Page) Table() *listing.Table[model.Movement] {
	return p.table
}

func (p *Page) Records() []model.Movement {
	return p.table.Records()
}

// LoadAll lists active movements, or all when includeInactive is set.
func (p *Page) LoadAll(ctx context.Context, includeInactive bool) error {
	return p.LoadFiltered(ctx, Filter{IncludeInactive: includeInactive})
}

// LoadFiltered lists by type and status, then applies f.MinID.
func (p *Page) LoadFiltered(ctx context.Context, f Filter) error {
	list, err := p.client.ListMovements(ctx, api.ListQuery{
		Type:            string(f.Type),
		IncludeInactive: f.IncludeInactive,
	})
	if err != nil {
		p.logger.WithError(err).Warn("loading movements")
		return fmt.Errorf("loading movements: %w", err)
	}
	if f.MinID > 0 {
		list = slices.DeleteFunc(list, func(m model.Movement) bool { return m.ID < f.MinID })
	}
	p.table.Set(list)
	p.filter = f
	return nil
}

func (p *Page) Render(w io.Writer) error {
	if err := listing.Render(w, p.table); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, format.Counter(p.table.Len()))
	return err
}

func (p *Page) SortByColumn(index int) error {
	return p.table.Sort(index)
}

// LoadReferenceData fetches active people and classifications concurrently.
// Both sets are replaced only when both calls succeed.
func (p *Page) LoadReferenceData(ctx context.Context) error {
	var (
		people          []model.Person
		classifications []model.Classification
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		people, err = p.client.ListPeople(gctx, api.ListQuery{})
		if err != nil {
			return fmt.Errorf("loading people: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		classifications, err = p.client.ListClassifications(gctx, api.ListQuery{})
		if err != nil {
			return fmt.Errorf("loading classifications: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		p.logger.WithError(err).Warn("loading reference data")
		return err
	}
	p.people = people
	p.classifications = classifications
	return nil
}

func personOptions(people []model.Person, keep func(model.PersonType) bool) []PersonOption {
	var out []PersonOption
	for _, person := range people {
		if keep(person.Type) {
			out = append(out, PersonOption{
				ID:    person.ID,
				Label: fmt.Sprintf("%s (%s)", person.LegalName, person.Document),
			})
		}
	}
	return out
}

// SupplierOptions lists people that can be a movement's counterparty.
func (p *Page) SupplierOptions() []PersonOption {
	return personOptions(p.people, model.PersonType.CounterpartyRole)
}

// BilledOptions lists people that can be billed.
func (p *Page) BilledOptions() []PersonOption {
	return personOptions(p.people, model.PersonType.BilledRole)
}

// ClassificationOptions lists every loaded classification, checking the selected ids.
func (p *Page) ClassificationOptions(selected []int) []ClassificationOption {
	out := make([]ClassificationOption, 0, len(p.classifications))
	for _, c := range p.classifications {
		out = append(out, ClassificationOption{Classification: c, Checked: slices.Contains(selected, c.ID)})
	}
	return out
}

// OpenCreate loads reference data and returns an empty form.
func (p *Page) OpenCreate(ctx context.Context) (Form, error) {
	if err := p.LoadReferenceData(ctx); err != nil {
		return Form{}, err
	}
	return Form{Status: model.StatusActive}, nil
}

// OpenEdit loads reference data and the movement, returning a filled form.
func (p *Page) OpenEdit(ctx context.Context, id int) (Form, error) {
	if err := p.LoadReferenceData(ctx); err != nil {
		return Form{}, err
	}
	m, err := p.client.GetMovement(ctx, id)
	if err != nil {
		return Form{}, fmt.Errorf("loading movement %d: %w", id, err)
	}
	return Form{
		ID:                m.ID,
		Type:              m.Type,
		Amount:            m.Amount.InexactFloat64(),
		CounterpartyID:    m.CounterpartyID,
		BilledID:          m.BilledID,
		ClassificationIDs: m.SelectedClassificationIDs(),
		Status:            m.Status,
	}, nil
}

// Save creates or updates, then reloads with the last filter.
func (p *Page) Save(ctx context.Context, f Form) (string, error) {
	in := f.Input()
	if err := model.Validate(in); err != nil {
		return "", err
	}

	var (
		msg string
		err error
	)
	if f.ID != 0 {
		msg, err = p.client.UpdateMovement(ctx, f.ID, in)
	} else {
		msg, err = p.client.CreateMovement(ctx, in)
	}
	if err != nil {
		return "", err
	}
	p.logger.WithFields(logrus.Fields{"id": f.ID, "tipo": in.Type, "valor": in.Amount}).Info(msg)
	return msg, p.LoadFiltered(ctx, p.filter)
}

// Delete soft-deletes after confirmation. INATIVO records are refused.
func (p *Page) Delete(ctx context.Context, id int, confirm prompt.Confirmer) (string, error) {
	status, err := p.status(ctx, id)
	if err != nil {
		return "", err
	}
	if status.Inactive() {
		return "", listing.ErrInactive
	}
	ok, err := confirm.Confirm(listing.DeleteQuestion("o movimento", id))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", listing.ErrDeclined
	}

	msg, err := p.client.DeleteMovement(ctx, id)
	if err != nil {
		return "", err
	}
	p.logger.WithField("id", id).Info(msg)
	return msg, p.LoadFiltered(ctx, p.filter)
}

func (p *Page) status(ctx context.Context, id int) (model.Status, error) {
	for _, r := range p.table.Records() {
		if r.ID == id {
			return r.Status, nil
		}
	}
	m, err := p.client.GetMovement(ctx, id)
	if err != nil {
		return "", fmt.Errorf("loading movement %d: %w", id, err)
	}
	return m.Status, nil
}

// Details fetches a movement and formats it as a text block.
func (p *Page) Details(ctx context.Context, id int) (string, error) {
	m, err := p.client.GetMovement(ctx, id)
	if err != nil {
		return "", fmt.Errorf("loading movement %d: %w", id, err)
	}
	return FormatDetails(m, p.loc), nil
}

// FormatDetails renders the details block of a movement.
func FormatDetails(m model.Movement, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("DETALHES DO MOVIMENTO\n\n")
	fmt.Fprintf(&b, "ID: %d\n", m.ID)
	fmt.Fprintf(&b, "Tipo: %s\n", m.Type)
	fmt.Fprintf(&b, "Fornecedor/Cliente: %s\n", m.CounterpartyName)
	fmt.Fprintf(&b, "Faturado: %s\n", m.BilledName)
	fmt.Fprintf(&b, "Valor: %s\n", format.Currency(m.Amount))
	fmt.Fprintf(&b, "Status: %s\n", m.Status)
	fmt.Fprintf(&b, "Data: %s\n\n", format.Timestamp(m.MovedAt, loc))

	b.WriteString("Classificações:\n")
	if len(m.Classifications) == 0 {
		b.WriteString("Nenhuma\n")
	}
	for _, c := range m.Classifications {
		fmt.Fprintf(&b, "%s: %s\n", c.Type, c.Description)
	}

	if len(m.Installments) > 0 {
		b.WriteString("\nParcelas:\n")
		for _, in := range m.Installments {
			fmt.Fprintf(&b, "%d: %s\n", in.Number, format.CurrencyFloat(in.Amount))
		}
	}
	return b.String()
}
