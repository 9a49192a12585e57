package commands_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminfin-dev/adminfin/internal/api"
	"github.com/adminfin-dev/adminfin/internal/api/apitest"
	"github.com/adminfin-dev/adminfin/internal/commands"
	"github.com/adminfin-dev/adminfin/internal/config"
	"github.com/adminfin-dev/adminfin/internal/launchlog"
	"github.com/adminfin-dev/adminfin/internal/model"
	"github.com/adminfin-dev/adminfin/internal/rag"
)

const testInvoice = "../invoice/testdata/nota.json"

type env struct {
	backend    *apitest.Backend
	dir        string
	configPath string
	launchLog  string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{
		backend:    apitest.New(t),
		dir:        dir,
		configPath: filepath.Join(dir, "adminfin.yaml"),
		launchLog:  filepath.Join(dir, "logs", "launches.csv"),
	}
	cfg := config.Default()
	cfg.LaunchLog = e.launchLog
	cfg.Log.Level = "error"
	cfg.Display.Timezone = "UTC"
	require.NoError(t, config.Save(e.configPath, cfg))
	return e
}

// run executes the CLI in-process with stdin as the operator's answers.
func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := commands.NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", e.configPath, "--api-url", e.backend.URL}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	assert.Contains(t, commands.NewRootCommand().Version, "dev")
}

func TestPeopleList(t *testing.T) {
	e := newEnv(t)
	e.backend.AddPerson(model.Person{Type: model.PersonSupplier, LegalName: "Zeta Combustíveis", Document: "11111111000111"})
	e.backend.AddPerson(model.Person{Type: model.PersonClient, LegalName: "Alfa Comércio", Document: "22222222000122"})
	e.backend.AddPerson(model.Person{Type: model.PersonBilled, LegalName: "Antigo", Document: "333", Status: model.StatusInactive})

	out, err := e.run(t, "", "people", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Razão Social")
	assert.NotContains(t, out, "Antigo")
	assert.Contains(t, out, "2 registro(s) encontrado(s)")

	out, err = e.run(t, "", "people", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Antigo")
	assert.Contains(t, out, "editar [excluir desabilitado]")

	out, err = e.run(t, "", "people", "list", "--search", "2222")
	require.NoError(t, err)
	assert.Contains(t, out, "Alfa Comércio")
	assert.NotContains(t, out, "Zeta")

	_, err = e.run(t, "", "people", "list", "--type", "vendedor")
	assert.Error(t, err)
}

func TestPeopleListSort(t *testing.T) {
	e := newEnv(t)
	e.backend.AddPerson(model.Person{Type: model.PersonSupplier, LegalName: "Zeta", Document: "1"})
	e.backend.AddPerson(model.Person{Type: model.PersonSupplier, LegalName: "Alfa", Document: "2"})

	out, err := e.run(t, "", "people", "list", "--sort", "2")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Alfa"), strings.Index(out, "Zeta"))

	out, err = e.run(t, "", "people", "list", "--sort", "2", "--sort", "2")
	require.NoError(t, err)
	assert.Greater(t, strings.Index(out, "Alfa"), strings.Index(out, "Zeta"))

	_, err = e.run(t, "", "people", "list", "--sort", "9")
	assert.Error(t, err)
}

func TestPeopleListExport(t *testing.T) {
	e := newEnv(t)
	e.backend.AddPerson(model.Person{Type: model.PersonSupplier, LegalName: "Posto, Central", Document: "12345678000190"})
	path := filepath.Join(e.dir, "exports", "pessoas.csv")

	out, err := e.run(t, "", "people", "list", "--export", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 registro(s) exportado(s)")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ID", "Tipo", "Razão Social", "CPF/CNPJ", "Status", "Data Cadastro"}, rows[0])
	assert.Equal(t, "Posto, Central", rows[1][2])
}

func TestPeopleCreateRequiresFields(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "", "people", "create", "--type", "FORNECEDOR", "--name", "Posto")
	require.ErrorIs(t, err, model.ErrRequiredFields)
	assert.Empty(t, e.backend.Attempts(http.MethodPost, "/api/pessoas"))
}

func TestPeopleCreateUpdateShow(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "people", "create", "--type", "fornecedor", "--name", "Posto Central", "--document", "12.345.678/0001-90")
	require.NoError(t, err)
	assert.Contains(t, out, "Pessoa criada com sucesso")

	people := e.backend.People()
	require.Len(t, people, 1)
	assert.Equal(t, model.PersonSupplier, people[0].Type)
	id := people[0].ID

	out, err = e.run(t, "", "people", "update", strconv.Itoa(id), "--name", "Posto Central Ltda")
	require.NoError(t, err)
	assert.Contains(t, out, "Pessoa atualizada com sucesso")
	people = e.backend.People()
	assert.Equal(t, "Posto Central Ltda", people[0].LegalName)
	assert.Equal(t, model.PersonSupplier, people[0].Type, "untouched flags keep their value")

	out, err = e.run(t, "", "people", "show", strconv.Itoa(id))
	require.NoError(t, err)
	assert.Contains(t, out, "Razão Social: Posto Central Ltda")
	assert.Contains(t, out, "Status: ATIVO")

	_, err = e.run(t, "", "people", "show", "999")
	assert.EqualError(t, err, "Pessoa não encontrada")
}

func TestPeopleDelete(t *testing.T) {
	e := newEnv(t)
	id := e.backend.AddPerson(model.Person{Type: model.PersonSupplier, LegalName: "Posto", Document: "1"})

	out, err := e.run(t, "n\n", "people", "delete", strconv.Itoa(id))
	require.NoError(t, err)
	assert.Contains(t, out, "Tem certeza que deseja excluir a pessoa #")
	assert.Contains(t, out, "Operação cancelada")
	assert.Equal(t, model.StatusActive, e.backend.People()[0].Status)

	out, err = e.run(t, "sim\n", "people", "delete", strconv.Itoa(id))
	require.NoError(t, err)
	assert.Contains(t, out, "Pessoa excluída com sucesso")
	assert.Equal(t, model.StatusInactive, e.backend.People()[0].Status)

	_, err = e.run(t, "", "--yes", "people", "delete", strconv.Itoa(id))
	assert.EqualError(t, err, "registro já está inativo")
	assert.Len(t, e.backend.Attempts(http.MethodDelete, "/api/pessoas/"+strconv.Itoa(id)), 1)
}

func TestClassificationsCommands(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "classifications", "create", "--type", "despesa", "--description", "Combustível")
	require.NoError(t, err)
	assert.Contains(t, out, "Classificação criada com sucesso")
	id := e.backend.Classifications()[0].ID

	out, err = e.run(t, "", "classifications", "list", "--search", "combust")
	require.NoError(t, err)
	assert.Contains(t, out, "Combustível")
	assert.Contains(t, out, "1 registro(s) encontrado(s)")

	_, err = e.run(t, "", "classifications", "update", strconv.Itoa(id), "--type", "RECEITA")
	require.NoError(t, err)
	assert.Equal(t, model.ClassificationRevenue, e.backend.Classifications()[0].Type)

	_, err = e.run(t, "", "-y", "classifications", "delete", strconv.Itoa(id))
	require.NoError(t, err)
	assert.True(t, e.backend.Classifications()[0].Status.Inactive())
}

func seedReferences(b *apitest.Backend) (supplier, billed, class int) {
	supplier = b.AddPerson(model.Person{Type: model.PersonSupplier, LegalName: "Posto Central", Document: "12345678000190"})
	billed = b.AddPerson(model.Person{Type: model.PersonBilled, LegalName: "Maria Souza", Document: "12345678900"})
	class = b.AddClassification(model.Classification{Type: model.ClassificationExpense, Description: "Combustível"})
	return supplier, billed, class
}

func TestMovementsCreateAndDetails(t *testing.T) {
	e := newEnv(t)
	supplier, billed, class := seedReferences(e.backend)

	out, err := e.run(t, "", "movements", "options")
	require.NoError(t, err)
	assert.Contains(t, out, "Posto Central (12345678000190)")
	assert.Contains(t, out, "DESPESA: Combustível")

	out, err = e.run(t, "", "movements", "create", "--type", "apagar", "--amount", "250.5",
		"--supplier", strconv.Itoa(supplier), "--billed", strconv.Itoa(billed), "--classification", strconv.Itoa(class))
	require.NoError(t, err)
	assert.Contains(t, out, "Movimento criado com sucesso")

	movements := e.backend.Movements()
	require.Len(t, movements, 1)
	assert.True(t, decimal.RequireFromString("250.5").Equal(movements[0].Amount))
	id := movements[0].ID

	out, err = e.run(t, "", "movements", "details", strconv.Itoa(id))
	require.NoError(t, err)
	assert.Contains(t, out, "DETALHES DO MOVIMENTO")
	assert.Contains(t, out, "Valor: R$ 250.50")
	assert.Contains(t, out, "DESPESA: Combustível")

	out, err = e.run(t, "", "movements", "list", "--min-id", strconv.Itoa(id+1))
	require.NoError(t, err)
	assert.Contains(t, out, "Nenhum registro encontrado")
}

func TestMovementsCreateRejectsWrongRole(t *testing.T) {
	e := newEnv(t)
	_, billed, class := seedReferences(e.backend)

	_, err := e.run(t, "", "movements", "create", "--type", "APAGAR", "--amount", "10",
		"--supplier", strconv.Itoa(billed), "--billed", strconv.Itoa(billed), "--classification", strconv.Itoa(class))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "não pode ser fornecedor/cliente")
	assert.Empty(t, e.backend.Attempts(http.MethodPost, "/api/movimentos"))

	_, err = e.run(t, "", "movements", "create", "--type", "APAGAR", "--amount", "0",
		"--supplier", "0", "--billed", strconv.Itoa(billed))
	assert.ErrorIs(t, err, model.ErrRequiredFields)
}

func TestInvoiceReviewOnly(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "invoice", "review", testInvoice)
	require.NoError(t, err)
	assert.Contains(t, out, "Nota Fiscal: 000123")
	assert.Contains(t, out, "Valor Total: R$ 100.00")
	assert.Equal(t, 3, strings.Count(out, "NÃO EXISTE"))
	assert.Empty(t, e.backend.Attempts(http.MethodPost, "/pessoas"))

	_, err = e.run(t, "", "invoice", "review", testInvoice, "--confirm")
	assert.ErrorContains(t, err, "Valide/cadastre Fornecedor, Faturado e Classificação")
}

func TestInvoiceReviewLaunch(t *testing.T) {
	e := newEnv(t)
	e.backend.FailInstallment(3)

	out, err := e.run(t, "", "--yes", "invoice", "review", testInvoice, "--register-missing", "--confirm")
	require.NoError(t, err)
	assert.Contains(t, out, "Após cadastro:")
	assert.Contains(t, out, "lançado.")
	assert.Contains(t, out, "Parcela 3: R$ 33.33 falhou")
	assert.Contains(t, out, "Atenção: 1 parcela(s) não gravada(s).")
	assert.Len(t, e.backend.MovementRecords(), 1)
	assert.Len(t, e.backend.Installments(), 2)

	entries, err := launchlog.Read(e.launchLog)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "000123", entries[0].Invoice)
	assert.Equal(t, launchlog.OutcomeFailed, entries[3].Outcome)

	out, err = e.run(t, "", "invoice", "log", "--failed")
	require.NoError(t, err)
	assert.Contains(t, out, "falha ao gravar parcela 3")
	assert.Contains(t, out, "1 registro(s) encontrado(s)")
}

func TestInvoiceReviewDeclined(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "nao\n", "invoice", "review", testInvoice, "--register-missing", "--confirm")
	require.NoError(t, err)
	assert.Contains(t, out, "Operação cancelada")
	assert.Empty(t, e.backend.MovementRecords())
	_, statErr := os.Stat(e.launchLog)
	assert.True(t, os.IsNotExist(statErr))
}

func TestInvoiceReviewServer(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "-y", "invoice", "review", testInvoice, "--server", "--register-missing", "--confirm")
	require.NoError(t, err)
	assert.Contains(t, out, "Nota fiscal lançada com sucesso")
	require.Len(t, e.backend.Launches(), 1)
	assert.Len(t, e.backend.Attempts(http.MethodPost, "/api/validar"), 1)

	entries, err := launchlog.Read(e.launchLog)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "lancamento", entries[0].Action)
	assert.Equal(t, launchlog.OutcomeOK, entries[0].Outcome)
}

func TestLookup(t *testing.T) {
	e := newEnv(t)
	supplier, _, _ := seedReferences(e.backend)

	out, err := e.run(t, "", "lookup", "person", "12.345.678/0001-90", "--type", "FORNECEDOR")
	require.NoError(t, err)
	assert.Equal(t, "EXISTE (id "+strconv.Itoa(supplier)+")\n", out)

	out, err = e.run(t, "", "lookup", "classification", "Energia", "elétrica")
	require.NoError(t, err)
	assert.Equal(t, "NÃO EXISTE\n", out)
}

func TestRAGCommands(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "rag", "ask", "Quanto", "gastei?")
	require.NoError(t, err)
	assert.Contains(t, out, "Resposta para: Quanto gastei?")
	assert.Contains(t, out, "Método: RAG Simples")
	assert.Contains(t, out, `"data_retrieved"`)

	_, err = e.run(t, "", "rag", "ask", "  ")
	assert.EqualError(t, err, "Por favor, digite uma pergunta")

	_, err = e.run(t, "", "rag", "ask", "--method", "fuzzy", "oi")
	assert.Error(t, err)

	out, err = e.run(t, "", "rag", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: Online")
	assert.Contains(t, out, "Documentos indexados: N/A")

	out, err = e.run(t, "", "rag", "examples")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Quanto gastei com combustível?")

	e.backend.SetRAGIndex(api.RAGIndexResult{Result: api.Result{Success: true}, Total: 4, Indexed: 4})
	out, err = e.run(t, "\n", "rag", "index")
	require.NoError(t, err)
	assert.Contains(t, out, "Operação cancelada")
	assert.Empty(t, e.backend.Attempts(http.MethodPost, "/api/rag/index"))

	out, err = e.run(t, "", "--yes", "rag", "index")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexados: 4")
}

func TestRAGAskRefusesUnofferedMethod(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "", "rag", "ask", "--method", "embeddings", "Quanto", "gastei?")
	assert.ErrorIs(t, err, rag.ErrEmbeddingsUnavailable)
	assert.Empty(t, e.backend.Attempts(http.MethodPost, "/api/rag/ask"))

	e.backend.SetRAGStatus(api.RAGStatus{
		Result:           api.Result{Success: true},
		SimpleReady:      true,
		EmbeddingsReady:  true,
		AvailableMethods: []string{api.MethodSimple, api.MethodEmbeddings},
	})
	out, err := e.run(t, "", "rag", "ask", "--method", "embeddings", "Quanto", "gastei?")
	require.NoError(t, err)
	assert.Contains(t, out, "Método: RAG Embeddings")
	assert.Len(t, e.backend.Attempts(http.MethodPost, "/api/rag/ask"), 1)
}

func TestRAGAskWithoutStatus(t *testing.T) {
	e := newEnv(t)
	e.backend.Fail("/api/rag/status", "status fora do ar")

	out, err := e.run(t, "", "rag", "ask", "Quanto", "gastei?")
	require.NoError(t, err)
	assert.Contains(t, out, "Método: RAG Simples")
}

func TestInit(t *testing.T) {
	e := newEnv(t)
	dir := filepath.Join(e.dir, "novo")

	out, err := e.run(t, "", "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "adminfin.yaml")

	cfg, err := config.Load(filepath.Join(dir, config.DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, e.backend.URL, cfg.API.BaseURL)

	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = e.run(t, "", "init", dir)
	assert.ErrorContains(t, err, "already exists")
	_, err = e.run(t, "", "init", dir, "--force")
	assert.NoError(t, err)
}
