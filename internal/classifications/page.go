// Package classifications is the list and form controller of revenue and
// expense classifications.
package classifications

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

// Filter narrows the list. Search matches the description locally.
type Filter struct {
	Type            model.ClassificationType
	IncludeInactive bool
	Search          string
}

// Form is the create/edit form. ID zero means create.
type Form struct {
	ID          int
	Type        model.ClassificationType
	Description string
	Status      model.Status
}

// Input returns the request body for the form.
func (f Form) Input() model.ClassificationInput {
	return model.ClassificationInput{
		Type:        model.ClassificationType(strings.ToUpper(strings.TrimSpace(string(f.Type)))),
		Description: strings.TrimSpace(f.Description),
	}
}

// Page holds the listed classifications.
type Page struct {
	client *api.Client
	logger *logrus.Logger
	table  *listing.Table[model.Classification]
	filter Filter
}

func NewPage(client *api.Client, logger *logrus.Logger, loc *time.Location) *Page {
	return &Page{
		client: client,
		logger: logger,
		table: listing.New(
			listing.Column[model.Classification]{
				Header: "ID",
				Text:   func(c model.Classification) string { return strconv.Itoa(c.ID) },
				Number: func(c model.Classification) float64 { return float64(c.ID) },
			},
			listing.Column[model.Classification]{Header: "Tipo", Text: func(c model.Classification) string { return string(c.Type) }},
			listing.Column[model.Classification]{Header: "Descrição", Text: func(c model.Classification) string { return c.Description }},
			listing.Column[model.Classification]{Header: "Status", Text: func(c model.Classification) string { return string(c.Status) }},
			listing.Column[model.Classification]{
				Header: "Data Cadastro",
				Text:   func(c model.Classification) string { return format.Timestamp(c.RegisteredAt, loc) },
				Key:    func(c model.Classification) string { return c.RegisteredAt },
			},
			listing.Column[model.Classification]{Header: listing.ActionsHeader, Text: func(c model.Classification) string { return listing.Actions(c.Status) }},
		),
	}
}

func (p *Page) Table() *listing.Table[model.Classification] {
	return p.table
}

func (p *Page) Records() []model.Classification {
	return p.table.Records()
}

// LoadAll lists active classifications, or all when includeInactive is set.
func (p *Page) LoadAll(ctx context.Context, includeInactive bool) error {
	return p.LoadFiltered(ctx, Filter{IncludeInactive: includeInactive})
}

// LoadFiltered lists by type and status, then filters descriptions by f.Search.
func (p *Page) LoadFiltered(ctx context.Context, f Filter) error {
	list, err := p.client.ListClassifications(ctx, api.ListQuery{
		Type:            string(f.Type),
		IncludeInactive: f.IncludeInactive,
	})
	if err != nil {
		p.logger.WithError(err).Warn("loading classifications")
		return fmt.Errorf("loading classifications: %w", err)
	}
	p.table.Set(listing.Filter(list, f.Search, func(c model.Classification) string { return c.Description }))
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

func (p *Page) OpenCreate() Form {
	return Form{Status: model.StatusActive}
}

func (p *Page) OpenEdit(ctx context.Context, id int) (Form, error) {
	c, err := p.client.GetClassification(ctx, id)
	if err != nil {
		return Form{}, fmt.Errorf("loading classification %d: %w", id, err)
	}
	return Form{ID: c.ID, Type: c.Type, Description: c.Description, Status: c.Status}, nil
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
		msg, err = p.client.UpdateClassification(ctx, f.ID, in)
	} else {
		msg, err = p.client.CreateClassification(ctx, in)
	}
	if err != nil {
		return "", err
	}
	p.logger.WithFields(logrus.Fields{"id": f.ID, "tipo": in.Type}).Info(msg)
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
	ok, err := confirm.Confirm(listing.DeleteQuestion("a classificação", id))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", listing.ErrDeclined
	}

	msg, err := p.client.DeleteClassification(ctx, id)
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
	c, err := p.client.GetClassification(ctx, id)
	if err != nil {
		return "", fmt.Errorf("loading classification %d: %w", id, err)
	}
	return c.Status, nil
}
