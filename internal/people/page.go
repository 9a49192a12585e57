// Package people is the list and form controller of party records
// (suppliers, clients and billed parties).
package people

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adminfin-dev/adminfin/internal/api"
	"github.com/adminfin-dev/adminfin/internal/format"
	"github.com/adminfin-dev/adminfin/internal/listing"
	"github.com/adminfin-dev/adminfin/internal/model"
	"github.com/adminfin-dev/adminfin/internal/prompt"
)

// Filter narrows the list. Type and IncludeInactive go to the server;
// Search is applied locally to the returned records.
type Filter struct {
	Type            model.PersonType
	IncludeInactive bool
	Search          string
}

// Form is the create/edit form. ID zero means create.
type Form struct {
	ID        int
	Type      model.PersonType
	LegalName string
	Document  string
	Status    model.Status
}

// Input returns the request body for the form.
func (f Form) Input() model.PersonInput {
	return model.PersonInput{
		Type:      model.PersonType(strings.ToUpper(strings.TrimSpace(string(f.Type)))),
		LegalName: strings.TrimSpace(f.LegalName),
		Document:  strings.TrimSpace(f.Document),
	}
}

// Page holds the currently listed people and the filter that produced them.
type Page struct {
	client *api.Client
	logger *logrus.Logger
	table  *listing.Table[model.Person]
	filter Filter
}

// NewPage creates a Page. Timestamps render in loc.
func NewPage(client *api.Client, logger *logrus.Logger, loc *time.Location) *Page {
	return &Page{
		client: client,
		logger: logger,
		table:  listing.New(columns(loc)...),
	}
}

func columns(loc *time.Location) []listing.Column[model.Person] {
	return []listing.Column[model.Person]{
		{Header: "ID", Text: func(p model.Person) string { return strconv.Itoa(p.ID) }, Number: func(p model.Person) float64 { return float64(p.ID) }},
		{Header: "Tipo", Text: func(p model.Person) string { return string(p.Type) }},
		{Header: "Razão Social", Text: func(p model.Person) string { return p.LegalName }},
		{Header: "CPF/CNPJ", Text: func(p model.Person) string { return p.Document }},
		{Header: "Status", Text: func(p model.Person) string { return string(p.Status) }},
		{
			Header: "Data Cadastro",
			Text:   func(p model.Person) string { return format.Timestamp(p.RegisteredAt, loc) },
			Key:    func(p model.Person) string { return p.RegisteredAt },
		},
		{Header: listing.ActionsHeader, Text: func(p model.Person) string { return listing.Actions(p.Status) }},
	}
}

// Table exposes the listed records, for exporters.
func (p *Page) Table() *listing.Table[model.Person] {
	return p.table
}

// Records returns the listed people in display order.
func (p *Page) Records() []model.Person {
	return p.table.Records()
}

// LoadAll lists every active person, or every person when includeInactive
// is set. On failure the previous records stay in place.
func (p *Page) LoadAll(ctx context.Context, includeInactive bool) error {
	return p.LoadFiltered(ctx, Filter{IncludeInactive: includeInactive})
}

// LoadFiltered lists people by type and status, then keeps those whose legal
// name or document contains f.Search.
func (p *Page) LoadFiltered(ctx context.Context, f Filter) error {
	people, err := p.client.ListPeople(ctx, api.ListQuery{
		Type:            string(f.Type),
		IncludeInactive: f.IncludeInactive,
	})
	if err != nil {
		p.logger.WithError(err).Warn("loading people")
		return fmt.Errorf("loading people: %w", err)
	}
	people = listing.Filter(people, f.Search,
		func(r model.Person) string { return r.LegalName },
		func(r model.Person) string { return r.Document },
	)
	p.table.Set(people)
	p.filter = f
	return nil
}

// Render writes the table followed by the record counter.
func (p *Page) Render(w io.Writer) error {
	if err := listing.Render(w, p.table); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, format.Counter(p.table.Len()))
	return err
}

// SortByColumn sorts the listed records; repeated calls flip the direction.
func (p *Page) SortByColumn(index int) error {
	return p.table.Sort(index)
}

// OpenCreate returns an empty form for a new person.
func (p *Page) OpenCreate() Form {
	return Form{Status: model.StatusActive}
}

// OpenEdit fetches the person and returns a form filled with it.
func (p *Page) OpenEdit(ctx context.Context, id int) (Form, error) {
	person, err := p.client.GetPerson(ctx, id)
	if err != nil {
		return Form{}, fmt.Errorf("loading person %d: %w", id, err)
	}
	return Form{
		ID:        person.ID,
		Type:      person.Type,
		LegalName: person.LegalName,
		Document:  person.Document,
		Status:    person.Status,
	}, nil
}

// Save creates or updates the person, then reloads the list with the last
// filter. It returns the server message.
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
		msg, err = p.client.UpdatePerson(ctx, f.ID, in)
	} else {
		msg, err = p.client.CreatePerson(ctx, in)
	}
	if err != nil {
		return "", err
	}
	p.logger.WithFields(logrus.Fields{"id": f.ID, "tipo": in.Type}).Info(msg)
	return msg, p.LoadFiltered(ctx, p.filter)
}

// Delete soft-deletes the person after confirmation and reloads the list.
// Records already INATIVO are refused without calling the server.
func (p *Page) Delete(ctx context.Context, id int, confirm prompt.Confirmer) (string, error) {
	status, err := p.status(ctx, id)
	if err != nil {
		return "", err
	}
	if status.Inactive() {
		return "", listing.ErrInactive
	}

	ok, err := confirm.Confirm(listing.DeleteQuestion("a pessoa", id))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", listing.ErrDeclined
	}

	msg, err := p.client.DeletePerson(ctx, id)
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
	person, err := p.client.GetPerson(ctx, id)
	if err != nil {
		return "", fmt.Errorf("loading person %d: %w", id, err)
	}
	return person.Status, nil
}
