package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/adminfin-dev/adminfin/internal/model"
)

const (
	classificationsPath = "/api/classificacoes"
	movementsPath       = "/api/movimentos"
)

// ListQuery filters a collection on the server side.
type ListQuery struct {
	Type            string
	IncludeInactive bool
	Search          string // sent as busca; list pages filter text locally instead
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Type != "" {
		v.Set("tipo", q.Type)
	}
	v.Set("incluir_inativos", strconv.FormatBool(q.IncludeInactive))
	if q.Search != "" {
		v.Set("busca", q.Search)
	}
	return v
}

func list[T any](ctx context.Context, c *Client, path string, q ListQuery) ([]T, error) {
	var out []T
	if _, err := c.call(ctx, http.MethodGet, path, q.values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func get[T any](ctx context.Context, c *Client, path string, id int) (T, error) {
	var out T
	_, err := c.call(ctx, http.MethodGet, itemPath(path, id), nil, nil, &out)
	return out, err
}

func itemPath(path string, id int) string {
	return fmt.Sprintf("%s/%d", path, id)
}

// ListPeople returns party records matching q.
func (c *Client) ListPeople(ctx context.Context, q ListQuery) ([]model.Person, error) {
	return list[model.Person](ctx, c, c.peoplePath, q)
}

// GetPerson fetches one party record.
func (c *Client) GetPerson(ctx context.Context, id int) (model.Person, error) {
	return get[model.Person](ctx, c, c.peoplePath, id)
}

// CreatePerson posts a new party record and returns the server message.
func (c *Client) CreatePerson(ctx context.Context, in model.PersonInput) (string, error) {
	return c.call(ctx, http.MethodPost, c.peoplePath, nil, in, nil)
}

// UpdatePerson replaces a party record and returns the server message.
func (c *Client) UpdatePerson(ctx context.Context, id int, in model.PersonInput) (string, error) {
	return c.call(ctx, http.MethodPut, itemPath(c.peoplePath, id), nil, in, nil)
}

// DeletePerson soft-deletes a party record; the server marks it INATIVO.
func (c *Client) DeletePerson(ctx context.Context, id int) (string, error) {
	return c.call(ctx, http.MethodDelete, itemPath(c.peoplePath, id), nil, nil, nil)
}

// ListClassifications returns classifications matching q.
func (c *Client) ListClassifications(ctx context.Context, q ListQuery) ([]model.Classification, error) {
	return list[model.Classification](ctx, c, classificationsPath, q)
}

// GetClassification fetches one classification.
func (c *Client) GetClassification(ctx context.Context, id int) (model.Classification, error) {
	return get[model.Classification](ctx, c, classificationsPath, id)
}

// CreateClassification posts a new classification.
func (c *Client) CreateClassification(ctx context.Context, in model.ClassificationInput) (string, error) {
	return c.call(ctx, http.MethodPost, classificationsPath, nil, in, nil)
}

// UpdateClassification replaces a classification.
func (c *Client) UpdateClassification(ctx context.Context, id int, in model.ClassificationInput) (string, error) {
	return c.call(ctx, http.MethodPut, itemPath(classificationsPath, id), nil, in, nil)
}

// DeleteClassification soft-deletes a classification.
func (c *Client) DeleteClassification(ctx context.Context, id int) (string, error) {
	return c.call(ctx, http.MethodDelete, itemPath(classificationsPath, id), nil, nil, nil)
}

// ListMovements returns movements matching q.
func (c *Client) ListMovements(ctx context.Context, q ListQuery) ([]model.Movement, error) {
	return list[model.Movement](ctx, c, movementsPath, q)
}

// GetMovement fetches one movement with its classifications.
func (c *Client) GetMovement(ctx context.Context, id int) (model.Movement, error) {
	return get[model.Movement](ctx, c, movementsPath, id)
}

// CreateMovement posts a new movement.
func (c *Client) CreateMovement(ctx context.Context, in model.MovementInput) (string, error) {
	return c.call(ctx, http.MethodPost, movementsPath, nil, in, nil)
}

// UpdateMovement replaces a movement.
func (c *Client) UpdateMovement(ctx context.Context, id int, in model.MovementInput) (string, error) {
	return c.call(ctx, http.MethodPut, itemPath(movementsPath, id), nil, in, nil)
}

// DeleteMovement soft-deletes a movement.
func (c *Client) DeleteMovement(ctx context.Context, id int) (string, error) {
	return c.call(ctx, http.MethodDelete, itemPath(movementsPath, id), nil, nil, nil)
}
