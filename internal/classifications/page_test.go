package classifications

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminfin-dev/adminfin/internal/api/apitest"
	"github.com/adminfin-dev/adminfin/internal/listing"
	"github.com/adminfin-dev/adminfin/internal/logging"
	"github.com/adminfin-dev/adminfin/internal/model"
	"github.com/adminfin-dev/adminfin/internal/prompt"
)

func setup(t *testing.T) (*Page, *apitest.Backend) {
	t.Helper()
	b := apitest.New(t)
	b.AddClassification(model.Classification{ID: 2, Type: model.ClassificationExpense, Description: "Combustível"})
	b.AddClassification(model.Classification{ID: 10, Type: model.ClassificationRevenue, Description: "Vendas"})
	b.AddClassification(model.Classification{ID: 3, Type: model.ClassificationExpense, Description: "Manutenção e Operação", Status: model.StatusInactive})
	return NewPage(b.Client(t), logging.Discard(), time.UTC), b
}

func descriptions(p *Page) []string {
	var out []string
	for _, c := range p.Records() {
		out = append(out, c.Description)
	}
	return out
}

func TestLoadFilteredByTypeAndSearch(t *testing.T) {
	p, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, p.LoadFiltered(ctx, Filter{Type: model.ClassificationExpense, IncludeInactive: true}))
	assert.Equal(t, []string{"Combustível", "Manutenção e Operação"}, descriptions(p))

	require.NoError(t, p.LoadFiltered(ctx, Filter{IncludeInactive: true, Search: "MANUT"}))
	assert.Equal(t, []string{"Manutenção e Operação"}, descriptions(p))

	require.NoError(t, p.LoadFiltered(ctx, Filter{Search: "manut"}))
	assert.Empty(t, descriptions(p))
}

func TestSortNumericID(t *testing.T) {
	p, _ := setup(t)
	require.NoError(t, p.LoadAll(context.Background(), true))

	require.NoError(t, p.SortByColumn(0))
	var got []int
	for _, c := range p.Records() {
		got = append(got, c.ID)
	}
	assert.Equal(t, []int{2, 3, 10}, got)
}

func TestCreateRevenue(t *testing.T) {
	p, b := setup(t)
	ctx := context.Background()

	form := p.OpenCreate()
	form.Type = model.ClassificationRevenue
	form.Description = "Serviços"
	msg, err := p.Save(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "Classificação criada com sucesso", msg)
	assert.Contains(t, descriptions(p), "Serviços")
	assert.Len(t, b.Classifications(), 4)
}

func TestSaveRejectsUnknownType(t *testing.T) {
	p, b := setup(t)

	_, err := p.Save(context.Background(), Form{Type: "INVESTIMENTO", Description: "Ações"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrRequiredFields)
	assert.Empty(t, b.Attempts(http.MethodPost, "/api/classificacoes"))
}

func TestUpdate(t *testing.T) {
	p, b := setup(t)
	ctx := context.Background()

	form, err := p.OpenEdit(ctx, 2)
	require.NoError(t, err)
	form.Description = "Combustíveis"
	_, err = p.Save(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "Combustíveis", b.Classifications()[0].Description)
}

func TestServerErrorShownVerbatim(t *testing.T) {
	p, b := setup(t)
	b.Fail("/api/classificacoes", "Descrição duplicada")

	_, err := p.Save(context.Background(), Form{Type: model.ClassificationExpense, Description: "Combustível"})
	require.EqualError(t, err, "Descrição duplicada")
}

func TestDelete(t *testing.T) {
	p, b := setup(t)
	ctx := context.Background()
	require.NoError(t, p.LoadAll(ctx, true))

	_, err := p.Delete(ctx, 3, prompt.Always(true))
	assert.ErrorIs(t, err, listing.ErrInactive)

	_, err = p.Delete(ctx, 10, prompt.Always(true))
	require.NoError(t, err)
	assert.Len(t, b.Attempts(http.MethodDelete, "/api/classificacoes/10"), 1)

	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf))
	assert.Contains(t, buf.String(), "3 registro(s) encontrado(s)")
}
