package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminfin-dev/adminfin/internal/api"
	"github.com/adminfin-dev/adminfin/internal/api/apitest"
	"github.com/adminfin-dev/adminfin/internal/model"
)

func seedPeople(b *apitest.Backend) {
	b.AddPerson(model.Person{Type: model.PersonSupplier, LegalName: "Posto Central Ltda", Document: "12.345.678/0001-90"})
	b.AddPerson(model.Person{Type: model.PersonBilled, LegalName: "Maria Souza", Document: "123.456.789-00"})
	b.AddPerson(model.Person{Type: model.PersonClient, LegalName: "Antigo Cliente", Document: "999", Status: model.StatusInactive})
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := api.NewClient("ftp://example.com")
	require.Error(t, err)

	_, err = api.NewClient("://nope")
	require.Error(t, err)
}

func TestListPeopleActiveOnly(t *testing.T) {
	b := apitest.New(t)
	seedPeople(b)
	c := b.Client(t)

	people, err := c.ListPeople(context.Background(), api.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, people, 2)

	all, err := c.ListPeople(context.Background(), api.ListQuery{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	reqs := b.Attempts(http.MethodGet, "/api/pessoas")
	require.Len(t, reqs, 2)
	assert.Equal(t, "incluir_inativos=false", reqs[0].Query)
	assert.Equal(t, "incluir_inativos=true", reqs[1].Query)
}

func TestListPeopleByType(t *testing.T) {
	b := apitest.New(t)
	seedPeople(b)
	c := b.Client(t)

	people, err := c.ListPeople(context.Background(), api.ListQuery{Type: string(model.PersonBilled)})
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Maria Souza", people[0].LegalName)
}

func TestRequestIDHeaderSent(t *testing.T) {
	b := apitest.New(t)
	c := b.Client(t)

	_, err := c.ListClassifications(context.Background(), api.ListQuery{})
	require.NoError(t, err)

	reqs := b.Requests()
	require.Len(t, reqs, 1)
	assert.Len(t, reqs[0].RequestID, 36)
}

func TestCreateUpdateDeletePerson(t *testing.T) {
	b := apitest.New(t)
	c := b.Client(t)
	ctx := context.Background()

	msg, err := c.CreatePerson(ctx, model.PersonInput{Type: model.PersonSupplier, LegalName: "Nova Ltda", Document: "11"})
	require.NoError(t, err)
	assert.Equal(t, "Pessoa criada com sucesso", msg)

	people := b.People()
	require.Len(t, people, 1)
	id := people[0].ID

	msg, err = c.UpdatePerson(ctx, id, model.PersonInput{Type: model.PersonClient, LegalName: "Nova SA", Document: "11"})
	require.NoError(t, err)
	assert.Equal(t, "Pessoa atualizada com sucesso", msg)

	got, err := c.GetPerson(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Nova SA", got.LegalName)
	assert.Equal(t, model.PersonClient, got.Type)

	_, err = c.DeletePerson(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, b.People()[0].Status)
}

func TestServerMessageSurfacedVerbatim(t *testing.T) {
	b := apitest.New(t)
	c := b.Client(t)

	_, err := c.GetMovement(context.Background(), 4242)
	require.Error(t, err)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Movimento não encontrado", apiErr.Error())
}

func TestSuccessFalseOn200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "message": "Classificação já existe"}`))
	}))
	defer srv.Close()

	c, err := api.NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.CreateClassification(context.Background(), model.ClassificationInput{Type: model.ClassificationExpense, Description: "X"})
	require.EqualError(t, err, "Classificação já existe")
}

func TestNon2xxWithoutBodyFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := api.NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.ListMovements(context.Background(), api.ListQuery{})
	require.EqualError(t, err, "HTTP 502")
}

func TestPeoplePathOverride(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path
		_, _ = w.Write([]byte(`{"success": true, "data": []}`))
	}))
	defer srv.Close()

	c, err := api.NewClient(srv.URL+"/", api.WithPeoplePath("api/people/"))
	require.NoError(t, err)

	_, err = c.ListPeople(context.Background(), api.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, "/api/people", seen)
}

func TestLookupsAndRecords(t *testing.T) {
	b := apitest.New(t)
	seedPeople(b)
	c := b.Client(t)
	ctx := context.Background()

	found, err := c.FindPerson(ctx, model.PersonSupplier, "12345678000190")
	require.NoError(t, err)
	assert.True(t, found.Exists)
	assert.NotZero(t, found.ID)

	missing, err := c.FindClassification(ctx, "Combustível")
	require.NoError(t, err)
	assert.False(t, missing.Exists)
	assert.Zero(t, missing.ID)

	classID, err := c.CreateLookupClassification(ctx, "Combustível")
	require.NoError(t, err)
	found, err = c.FindClassification(ctx, "combustível")
	require.NoError(t, err)
	assert.Equal(t, classID, found.ID)

	movID, err := c.CreateMovementRecord(ctx, api.MovementRecord{SupplierID: 1, BilledID: 2, ClassificationID: classID, Total: 100, IssueDate: "2024-01-10", Type: model.MovementPayable})
	require.NoError(t, err)
	assert.NotZero(t, movID)

	_, err = c.CreateInstallment(ctx, model.Installment{MovementID: movID, Number: 1, Amount: 50})
	require.NoError(t, err)
	assert.Len(t, b.Installments(), 1)
}

func TestServerSideLaunch(t *testing.T) {
	b := apitest.New(t)
	c := b.Client(t)
	ctx := context.Background()

	inv := model.ExtractedInvoice{
		Supplier:              model.InvoiceSupplier{LegalName: "Posto Central", CNPJ: "12.345.678/0001-90"},
		Billed:                model.InvoiceBilled{Name: "Maria", CPF: "123.456.789-00"},
		Number:                "000123",
		IssueDate:             "10/01/2024",
		Total:                 150,
		InstallmentCount:      1,
		ExpenseClassification: "Combustível",
	}

	v, err := c.Validate(ctx, inv)
	require.NoError(t, err)
	assert.False(t, v.Supplier.Exists)
	assert.False(t, v.Billed.Exists)
	assert.False(t, v.Classification.Exists)

	supplierID, err := c.RegisterSupplier(ctx, inv)
	require.NoError(t, err)
	billedID, err := c.RegisterBilled(ctx, inv)
	require.NoError(t, err)
	classID, err := c.RegisterClassification(ctx, inv)
	require.NoError(t, err)

	v, err = c.Validate(ctx, inv)
	require.NoError(t, err)
	assert.Equal(t, supplierID, v.Supplier.ID)
	assert.Equal(t, billedID, v.Billed.ID)
	assert.Equal(t, classID, v.Classification.ID)

	res, err := c.Launch(ctx, api.LaunchRequest{Invoice: inv, SupplierID: supplierID, BilledID: billedID, ClassificationID: classID})
	require.NoError(t, err)
	assert.NotZero(t, res.MovementID)
	assert.Equal(t, "Nota fiscal lançada com sucesso", res.Message)

	launches := b.Launches()
	require.Len(t, launches, 1)
	assert.Equal(t, "000123", launches[0]["Nota Fiscal"])
	assert.EqualValues(t, supplierID, launches[0]["fornecedor_id"])
}

func TestRAGEndpoints(t *testing.T) {
	b := apitest.New(t)
	b.SetRAGIndex(api.RAGIndexResult{Result: api.Result{Success: true}, Total: 10, Indexed: 9, Failed: 1})
	c := b.Client(t)
	ctx := context.Background()

	ex, err := c.RAGExamples(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, ex.Examples)

	st, err := c.RAGStatus(ctx)
	require.NoError(t, err)
	assert.True(t, st.SimpleReady)
	assert.Equal(t, []string{api.MethodSimple}, st.AvailableMethods)

	ans, err := c.RAGAsk(ctx, "Quanto gastei?", api.MethodEmbeddings)
	require.NoError(t, err)
	assert.Equal(t, "RAG_EMBEDDINGS", ans.Method)
	assert.JSONEq(t, `{"total": 1}`, string(ans.DataRetrieved))

	_, err = c.RAGAsk(ctx, "Quanto gastei?", "fuzzy")
	require.EqualError(t, err, "Método inválido. Use 'simple' ou 'embeddings'")

	idx, err := c.RAGIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, idx.Indexed)
	assert.Equal(t, 1, idx.Failed)
}

func TestContextCancelled(t *testing.T) {
	b := apitest.New(t)
	c := b.Client(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListPeople(ctx, api.ListQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
