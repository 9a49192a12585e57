package people

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminfin-dev/adminfin/internal/api/apitest"
	"github.com/adminfin-dev/adminfin/internal/format"
	"github.com/adminfin-dev/adminfin/internal/listing"
	"github.com/adminfin-dev/adminfin/internal/logging"
	"github.com/adminfin-dev/adminfin/internal/model"
	"github.com/adminfin-dev/adminfin/internal/prompt"
)

func newTestPage(t *testing.T) (*Page, *apitest.Backend) {
	t.Helper()
	b := apitest.New(t)
	b.AddPerson(model.Person{ID: 9, Type: model.PersonSupplier, LegalName: "Posto Central Ltda", Document: "12.345.678/0001-90", RegisteredAt: "2024-03-01T12:00:00Z"})
	b.AddPerson(model.Person{ID: 10, Type: model.PersonBilled, LegalName: "Maria Souza", Document: "123.456.789-00"})
	b.AddPerson(model.Person{ID: 11, Type: model.PersonClient, LegalName: "Posto Antigo", Document: "555", Status: model.StatusInactive})
	return NewPage(b.Client(t), logging.Discard(), time.UTC), b
}

func ids(p *Page) []int {
	var out []int
	for _, r := range p.Records() {
		out = append(out, r.ID)
	}
	return out
}

func TestLoadAll(t *testing.T) {
	p, _ := newTestPage(t)
	ctx := context.Background()

	require.NoError(t, p.LoadAll(ctx, false))
	assert.Equal(t, []int{9, 10}, ids(p))

	require.NoError(t, p.LoadAll(ctx, true))
	assert.Equal(t, []int{9, 10, 11}, ids(p))
}

func TestLoadFailureKeepsPreviousRecords(t *testing.T) {
	p, b := newTestPage(t)
	ctx := context.Background()
	require.NoError(t, p.LoadAll(ctx, false))

	b.Fail("/api/pessoas", "banco indisponível")
	err := p.LoadAll(ctx, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "banco indisponível")
	assert.Equal(t, []int{9, 10}, ids(p))
}

func TestLoadFilteredSearchesNameOrDocument(t *testing.T) {
	p, b := newTestPage(t)
	ctx := context.Background()

	require.NoError(t, p.LoadFiltered(ctx, Filter{IncludeInactive: true, Search: "POSTO"}))
	assert.Equal(t, []int{9, 11}, ids(p))

	require.NoError(t, p.LoadFiltered(ctx, Filter{Search: "456.789"}))
	assert.Equal(t, []int{10}, ids(p))

	require.NoError(t, p.LoadFiltered(ctx, Filter{Type: model.PersonSupplier, Search: "posto"}))
	assert.Equal(t, []int{9}, ids(p))

	for _, r := range b.Attempts(http.MethodGet, "/api/pessoas") {
		assert.NotContains(t, r.Query, "busca", "free-text search stays client-side")
	}
}

func TestRenderAndCounter(t *testing.T) {
	p, _ := newTestPage(t)
	require.NoError(t, p.LoadAll(context.Background(), true))

	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, "Razão Social")
	assert.Contains(t, out, "01/03/2024 12:00:00")
	assert.Contains(t, out, "3 registro(s) encontrado(s)")

	lines := strings.Split(out, "\n")
	for _, line := range lines {
		if strings.Contains(line, "Posto Antigo") {
			assert.Contains(t, line, "desabilitado")
		}
		if strings.Contains(line, "Maria Souza") {
			assert.NotContains(t, line, "desabilitado")
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	p, _ := newTestPage(t)
	require.NoError(t, p.LoadFiltered(context.Background(), Filter{Search: "inexistente"}))

	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf))
	assert.Contains(t, buf.String(), listing.Placeholder)
	assert.Contains(t, buf.String(), format.Counter(0))
}

func TestSortByID(t *testing.T) {
	p, _ := newTestPage(t)
	require.NoError(t, p.LoadAll(context.Background(), true))

	require.NoError(t, p.SortByColumn(0))
	assert.Equal(t, []int{9, 10, 11}, ids(p))
	require.NoError(t, p.SortByColumn(0))
	assert.Equal(t, []int{11, 10, 9}, ids(p))
}

func TestSaveCreateAndReload(t *testing.T) {
	p, b := newTestPage(t)
	ctx := context.Background()
	require.NoError(t, p.LoadAll(ctx, false))

	form := p.OpenCreate()
	assert.Equal(t, model.StatusActive, form.Status)
	form.Type = "fornecedor"
	form.LegalName = "  Mercado Bom  "
	form.Document = "98.765.432/0001-10"

	msg, err := p.Save(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "Pessoa criada com sucesso", msg)
	assert.Len(t, p.Records(), 3)

	people := b.People()
	created := people[len(people)-1]
	assert.Equal(t, "Mercado Bom", created.LegalName)
	assert.Equal(t, model.PersonSupplier, created.Type)
}

func TestSaveRequiredFields(t *testing.T) {
	p, b := newTestPage(t)

	_, err := p.Save(context.Background(), Form{Type: model.PersonClient, LegalName: "   "})
	assert.ErrorIs(t, err, model.ErrRequiredFields)
	assert.Empty(t, b.Attempts(http.MethodPost, "/api/pessoas"))
}

func TestEditAndUpdate(t *testing.T) {
	p, b := newTestPage(t)
	ctx := context.Background()

	form, err := p.OpenEdit(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", form.LegalName)
	assert.Equal(t, model.PersonBilled, form.Type)

	form.LegalName = "Maria S. Souza"
	_, err = p.Save(ctx, form)
	require.NoError(t, err)

	assert.Len(t, b.Attempts(http.MethodPut, "/api/pessoas/10"), 1)
	for _, r := range b.People() {
		if r.ID == 10 {
			assert.Equal(t, "Maria S. Souza", r.LegalName)
		}
	}
}

func TestEditNotFound(t *testing.T) {
	p, _ := newTestPage(t)
	_, err := p.OpenEdit(context.Background(), 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Pessoa não encontrada")
}

func TestDeleteSoftDeletes(t *testing.T) {
	p, b := newTestPage(t)
	ctx := context.Background()
	require.NoError(t, p.LoadAll(ctx, false))

	var asked string
	confirm := prompt.ConfirmFunc(func(q string) (bool, error) {
		asked = q
		return true, nil
	})

	msg, err := p.Delete(ctx, 9, confirm)
	require.NoError(t, err)
	assert.Equal(t, "Pessoa excluída com sucesso", msg)
	assert.Contains(t, asked, "#9")
	assert.Equal(t, []int{10}, ids(p))

	require.NoError(t, p.LoadAll(ctx, true))
	assert.Equal(t, model.StatusInactive, p.Records()[0].Status)
	assert.Len(t, b.People(), 3)
}

func TestDeleteDeclined(t *testing.T) {
	p, b := newTestPage(t)
	require.NoError(t, p.LoadAll(context.Background(), false))

	_, err := p.Delete(context.Background(), 9, prompt.Always(false))
	assert.ErrorIs(t, err, listing.ErrDeclined)
	assert.Empty(t, b.Attempts(http.MethodDelete, "/api/pessoas/9"))
}

func TestDeleteInactiveRefused(t *testing.T) {
	p, b := newTestPage(t)
	ctx := context.Background()

	// not listed: status comes from the server
	_, err := p.Delete(ctx, 11, prompt.Always(true))
	assert.ErrorIs(t, err, listing.ErrInactive)

	require.NoError(t, p.LoadAll(ctx, true))
	_, err = p.Delete(ctx, 11, prompt.Always(true))
	assert.ErrorIs(t, err, listing.ErrInactive)

	assert.Empty(t, b.Attempts(http.MethodDelete, "/api/pessoas/11"))
}
