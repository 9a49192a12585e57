// Package apitest runs an in-memory backend that speaks the same REST
// contract as the production server. Tests in every client package use it.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/adminfin-dev/adminfin/internal/api"
	"github.com/adminfin-dev/adminfin/internal/format"
	"github.com/adminfin-dev/adminfin/internal/model"
)

// Request is one call observed by the backend.
type Request struct {
	Method    string
	Path      string
	Query     string
	RequestID string
}

// Backend is the fake server.
type Backend struct {
	URL string

	mu               sync.Mutex
	failInstallments map[int]bool
	failPaths        map[string]string
	ragStatus        api.RAGStatus
	ragExamples      api.RAGExamples
	ragIndex         api.RAGIndexResult
	nextID           int
	people           []model.Person
	classifications  []model.Classification
	movements        []model.Movement
	records          []api.MovementRecord
	installments     []model.Installment
	launches         []map[string]any
	requests         []Request
	askGate          chan struct{}
	askStarted       chan struct{}
}

// New starts a Backend and stops it when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{
		nextID:           100,
		failInstallments: map[int]bool{},
		failPaths:        map[string]string{},
		ragStatus: api.RAGStatus{
			Result:           api.Result{Success: true},
			SimpleReady:      true,
			AvailableMethods: []string{api.MethodSimple},
		},
		ragExamples: api.RAGExamples{
			Result:   api.Result{Success: true},
			Examples: []string{"Quanto gastei com combustível?", "Quais notas vencem este mês?"},
			Methods:  []string{api.MethodSimple, api.MethodEmbeddings},
		},
		ragIndex: api.RAGIndexResult{Result: api.Result{Success: true}},
	}

	srv := httptest.NewServer(b.routes())
	t.Cleanup(srv.Close)
	b.URL = srv.URL
	return b
}

// Client returns an api.Client pointed at the backend.
func (b *Backend) Client(t testing.TB, opts ...api.Option) *api.Client {
	t.Helper()
	c, err := api.NewClient(b.URL, opts...)
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	return c
}

func (b *Backend) routes() *gin.Engine {
	r := gin.New()
	r.Use(b.record, b.injectFailures)

	g := r.Group("/api")
	g.GET("/pessoas", b.listPeople)
	g.GET("/pessoas/:id", b.getPerson)
	g.POST("/pessoas", b.savePerson)
	g.PUT("/pessoas/:id", b.savePerson)
	g.DELETE("/pessoas/:id", b.deletePerson)

	g.GET("/classificacoes", b.listClassifications)
	g.GET("/classificacoes/:id", b.getClassification)
	g.POST("/classificacoes", b.saveClassification)
	g.PUT("/classificacoes/:id", b.saveClassification)
	g.DELETE("/classificacoes/:id", b.deleteClassification)

	g.GET("/movimentos", b.listMovements)
	g.GET("/movimentos/:id", b.getMovement)
	g.POST("/movimentos", b.saveMovement)
	g.PUT("/movimentos/:id", b.saveMovement)
	g.DELETE("/movimentos/:id", b.deleteMovement)

	g.POST("/validar", b.validate)
	g.POST("/cadastrar/:what", b.register)
	g.POST("/lancar", b.launch)

	g.GET("/rag/examples", b.ragExamplesHandler)
	g.GET("/rag/status", b.ragStatusHandler)
	g.POST("/rag/ask", b.ask)
	g.POST("/rag/index", b.ragIndexHandler)

	r.GET("/pessoas", b.findPerson)
	r.POST("/pessoas", b.createLookupPerson)
	r.GET("/classificacao", b.findClassification)
	r.POST("/classificacao", b.createLookupClassification)
	r.POST("/movimentos", b.createMovementRecord)
	r.POST("/parcelas", b.createInstallment)
	return r
}

func (b *Backend) record(c *gin.Context) {
	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		Query:     c.Request.URL.RawQuery,
		RequestID: c.GetHeader(api.RequestIDHeader),
	})
	b.mu.Unlock()
	c.Next()
}

func (b *Backend) injectFailures(c *gin.Context) {
	b.mu.Lock()
	msg, broken := b.failPaths[c.Request.URL.Path]
	b.mu.Unlock()
	if broken {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": msg})
		return
	}
	c.Next()
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (b *Backend) id() int {
	b.nextID++
	return b.nextID
}

func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil
}

func includeInactive(c *gin.Context) bool {
	return c.Query("incluir_inativos") == "true"
}

// AddPerson seeds a party record and returns its id. Empty status means ATIVO.
func (b *Backend) AddPerson(p model.Person) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == 0 {
		p.ID = b.id()
	}
	if p.Status == "" {
		p.Status = model.StatusActive
	}
	if p.RegisteredAt == "" {
		p.RegisteredAt = now()
	}
	b.people = append(b.people, p)
	return p.ID
}

// AddClassification seeds a classification and returns its id.
func (b *Backend) AddClassification(cl model.Classification) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cl.ID == 0 {
		cl.ID = b.id()
	}
	if cl.Status == "" {
		cl.Status = model.StatusActive
	}
	if cl.RegisteredAt == "" {
		cl.RegisteredAt = now()
	}
	b.classifications = append(b.classifications, cl)
	return cl.ID
}

// AddMovement seeds a movement and returns its id.
func (b *Backend) AddMovement(m model.Movement) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m.ID == 0 {
		m.ID = b.id()
	}
	if m.Status == "" {
		m.Status = model.StatusActive
	}
	if m.MovedAt == "" {
		m.MovedAt = now()
	}
	b.movements = append(b.movements, m)
	return m.ID
}

// People returns a snapshot of the party records.
func (b *Backend) People() []model.Person {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Person(nil), b.people...)
}

// Classifications returns a snapshot of the classifications.
func (b *Backend) Classifications() []model.Classification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Classification(nil), b.classifications...)
}

// Movements returns a snapshot of the movements.
func (b *Backend) Movements() []model.Movement {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Movement(nil), b.movements...)
}

// MovementRecords returns the bodies posted to /movimentos.
func (b *Backend) MovementRecords() []api.MovementRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.MovementRecord(nil), b.records...)
}

// Installments returns the installments stored so far.
func (b *Backend) Installments() []model.Installment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Installment(nil), b.installments...)
}

// Launches returns the bodies posted to /api/lancar.
func (b *Backend) Launches() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.launches...)
}

// Requests returns every request seen so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Attempts returns the requests with the given method and path.
func (b *Backend) Attempts(method, path string) []Request {
	var out []Request
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Fail makes every request to path answer 500 with msg.
func (b *Backend) Fail(path, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failPaths[path] = msg
}

// FailInstallment makes POST /parcelas answer 500 for installment number n.
func (b *Backend) FailInstallment(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failInstallments[n] = true
}

// SetRAGStatus replaces the /api/rag/status answer.
func (b *Backend) SetRAGStatus(s api.RAGStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ragStatus = s
}

// SetRAGIndex replaces the /api/rag/index answer.
func (b *Backend) SetRAGIndex(r api.RAGIndexResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ragIndex = r
}

// HoldAsk makes /api/rag/ask block until release is called. started is
// closed once the first held request arrives.
func (b *Backend) HoldAsk() (started <-chan struct{}, release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.askGate = make(chan struct{})
	b.askStarted = make(chan struct{})
	gate := b.askGate
	var once sync.Once
	return b.askStarted, func() { once.Do(func() { close(gate) }) }
}

// --- people

func (b *Backend) listPeople(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.Person{}
	for _, p := range b.people {
		if p.Status.Inactive() && !includeInactive(c) {
			continue
		}
		if t := c.Query("tipo"); t != "" && string(p.Type) != t {
			continue
		}
		if q := strings.ToLower(c.Query("busca")); q != "" &&
			!strings.Contains(strings.ToLower(p.LegalName), q) && !strings.Contains(p.Document, q) {
			continue
		}
		out = append(out, p)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

func (b *Backend) personIndex(id int) int {
	for i, p := range b.people {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (b *Backend) getPerson(c *gin.Context) {
	id, _ := paramID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.personIndex(id)
	if i < 0 {
		fail(c, http.StatusNotFound, "Pessoa não encontrada")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": b.people[i]})
}

func (b *Backend) savePerson(c *gin.Context) {
	var in model.PersonInput
	if err := c.ShouldBindJSON(&in); err != nil || in.LegalName == "" || in.Document == "" {
		fail(c, http.StatusBadRequest, "Dados obrigatórios ausentes")
		return
	}
	if !in.Type.Valid() {
		fail(c, http.StatusBadRequest, "Tipo inválido")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := paramID(c); ok {
		i := b.personIndex(id)
		if i < 0 {
			fail(c, http.StatusNotFound, "Pessoa não encontrada")
			return
		}
		b.people[i].Type, b.people[i].LegalName, b.people[i].Document = in.Type, in.LegalName, in.Document
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Pessoa atualizada com sucesso", "data": b.people[i]})
		return
	}
	p := model.Person{ID: b.id(), Type: in.Type, LegalName: in.LegalName, Document: in.Document, Status: model.StatusActive, RegisteredAt: now()}
	b.people = append(b.people, p)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Pessoa criada com sucesso", "data": p})
}

func (b *Backend) deletePerson(c *gin.Context) {
	id, _ := paramID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.personIndex(id)
	if i < 0 {
		fail(c, http.StatusNotFound, "Pessoa não encontrada")
		return
	}
	b.people[i].Status = model.StatusInactive
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Pessoa excluída com sucesso"})
}

// --- classifications

func (b *Backend) listClassifications(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.Classification{}
	for _, cl := range b.classifications {
		if cl.Status.Inactive() && !includeInactive(c) {
			continue
		}
		if t := c.Query("tipo"); t != "" && string(cl.Type) != t {
			continue
		}
		out = append(out, cl)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

func (b *Backend) classificationIndex(id int) int {
	for i, cl := range b.classifications {
		if cl.ID == id {
			return i
		}
	}
	return -1
}

func (b *Backend) getClassification(c *gin.Context) {
	id, _ := paramID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.classificationIndex(id)
	if i < 0 {
		fail(c, http.StatusNotFound, "Classificação não encontrada")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": b.classifications[i]})
}

func (b *Backend) saveClassification(c *gin.Context) {
	var in model.ClassificationInput
	if err := c.ShouldBindJSON(&in); err != nil || in.Description == "" || !in.Type.Valid() {
		fail(c, http.StatusBadRequest, "Dados obrigatórios ausentes")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := paramID(c); ok {
		i := b.classificationIndex(id)
		if i < 0 {
			fail(c, http.StatusNotFound, "Classificação não encontrada")
			return
		}
		b.classifications[i].Type, b.classifications[i].Description = in.Type, in.Description
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Classificação atualizada com sucesso"})
		return
	}
	cl := model.Classification{ID: b.id(), Type: in.Type, Description: in.Description, Status: model.StatusActive, RegisteredAt: now()}
	b.classifications = append(b.classifications, cl)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Classificação criada com sucesso", "data": cl})
}

func (b *Backend) deleteClassification(c *gin.Context) {
	id, _ := paramID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.classificationIndex(id)
	if i < 0 {
		fail(c, http.StatusNotFound, "Classificação não encontrada")
		return
	}
	b.classifications[i].Status = model.StatusInactive
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Classificação excluída com sucesso"})
}

// --- movements

func (b *Backend) listMovements(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.Movement{}
	for _, m := range b.movements {
		if m.Status.Inactive() && !includeInactive(c) {
			continue
		}
		if t := c.Query("tipo"); t != "" && string(m.Type) != t {
			continue
		}
		out = append(out, m)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

func (b *Backend) movementIndex(id int) int {
	for i, m := range b.movements {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (b *Backend) getMovement(c *gin.Context) {
	id, _ := paramID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.movementIndex(id)
	if i < 0 {
		fail(c, http.StatusNotFound, "Movimento não encontrado")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": b.movements[i]})
}

func (b *Backend) personName(id int) string {
	if i := b.personIndex(id); i >= 0 {
		return b.people[i].LegalName
	}
	return ""
}

func (b *Backend) classificationsByID(ids []int) []model.Classification {
	out := []model.Classification{}
	for _, id := range ids {
		if i := b.classificationIndex(id); i >= 0 {
			out = append(out, b.classifications[i])
		}
	}
	return out
}

func (b *Backend) saveMovement(c *gin.Context) {
	var in model.MovementInput
	if err := c.ShouldBindJSON(&in); err != nil || !in.Type.Valid() || in.Amount <= 0 {
		fail(c, http.StatusBadRequest, "Dados obrigatórios ausentes")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	m := model.Movement{
		Type:             in.Type,
		Amount:           decimal.NewFromFloat(in.Amount),
		CounterpartyID:   in.CounterpartyID,
		CounterpartyName: b.personName(in.CounterpartyID),
		BilledID:         in.BilledID,
		BilledName:       b.personName(in.BilledID),
		Classifications:  b.classificationsByID(in.ClassificationIDs),
	}
	if id, ok := paramID(c); ok {
		i := b.movementIndex(id)
		if i < 0 {
			fail(c, http.StatusNotFound, "Movimento não encontrado")
			return
		}
		m.ID, m.Status, m.MovedAt = id, b.movements[i].Status, b.movements[i].MovedAt
		b.movements[i] = m
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Movimento atualizado com sucesso"})
		return
	}
	m.ID, m.Status, m.MovedAt = b.id(), model.StatusActive, now()
	b.movements = append(b.movements, m)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Movimento criado com sucesso", "data": m})
}

func (b *Backend) deleteMovement(c *gin.Context) {
	id, _ := paramID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.movementIndex(id)
	if i < 0 {
		fail(c, http.StatusNotFound, "Movimento não encontrado")
		return
	}
	b.movements[i].Status = model.StatusInactive
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Movimento excluído com sucesso"})
}

// --- invoice lookups

func (b *Backend) findPersonLocked(typ model.PersonType, document string) (int, bool) {
	for _, p := range b.people {
		if format.Digits(p.Document) != document || p.Status.Inactive() {
			continue
		}
		if typ == "" || p.Type == typ || p.Type == model.PersonClientSupplier {
			return p.ID, true
		}
	}
	return 0, false
}

func (b *Backend) findClassificationLocked(description string) (int, bool) {
	for _, cl := range b.classifications {
		if strings.EqualFold(cl.Description, description) && !cl.Status.Inactive() {
			return cl.ID, true
		}
	}
	return 0, false
}

func lookup(c *gin.Context, id int, exists bool) {
	if !exists {
		c.JSON(http.StatusOK, gin.H{"existe": false, "id": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"existe": true, "id": id})
}

func (b *Backend) findPerson(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.findPersonLocked(model.PersonType(c.Query("tipo")), c.Query("documento"))
	lookup(c, id, ok)
}

func (b *Backend) findClassification(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.findClassificationLocked(c.Query("descricao"))
	lookup(c, id, ok)
}

func (b *Backend) createLookupPerson(c *gin.Context) {
	var in api.NewParty
	if err := c.ShouldBindJSON(&in); err != nil || in.Name == "" {
		fail(c, http.StatusBadRequest, "Dados obrigatórios ausentes")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p := model.Person{ID: b.id(), Type: in.Type, LegalName: in.Name, Document: in.Document, Status: model.StatusActive, RegisteredAt: now()}
	b.people = append(b.people, p)
	c.JSON(http.StatusCreated, gin.H{"id": p.ID, "nome": p.LegalName})
}

func (b *Backend) createLookupClassification(c *gin.Context) {
	var in struct {
		Description string `json:"descricao"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.Description == "" {
		fail(c, http.StatusBadRequest, "Descrição obrigatória")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	cl := model.Classification{ID: b.id(), Type: model.ClassificationExpense, Description: in.Description, Status: model.StatusActive, RegisteredAt: now()}
	b.classifications = append(b.classifications, cl)
	c.JSON(http.StatusCreated, gin.H{"id": cl.ID, "descricao": cl.Description})
}

func (b *Backend) createMovementRecord(c *gin.Context) {
	var in api.MovementRecord
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, in)
	id := b.id()
	b.movements = append(b.movements, model.Movement{
		ID:               id,
		Type:             in.Type,
		Amount:           decimal.NewFromFloat(in.Total),
		CounterpartyID:   in.SupplierID,
		CounterpartyName: b.personName(in.SupplierID),
		BilledID:         in.BilledID,
		BilledName:       b.personName(in.BilledID),
		Status:           model.StatusActive,
		MovedAt:          now(),
		Classifications:  b.classificationsByID([]int{in.ClassificationID}),
	})
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (b *Backend) createInstallment(c *gin.Context) {
	var in model.Installment
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failInstallments[in.Number] {
		fail(c, http.StatusInternalServerError, "falha ao gravar parcela "+strconv.Itoa(in.Number))
		return
	}
	b.installments = append(b.installments, in)
	c.JSON(http.StatusCreated, gin.H{"id": b.id()})
}

// --- server-side review

type invoiceBody struct {
	Supplier struct {
		LegalName string `json:"Razao Social"`
		CNPJ      string `json:"CNPJ"`
	} `json:"Fornecedor"`
	Billed struct {
		Name string `json:"Nome"`
		CPF  string `json:"CPF"`
	} `json:"Faturado"`
	Classification string `json:"Classificacao Despesa"`
}

func (b *Backend) validate(c *gin.Context) {
	var in invoiceBody
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	entry := func(id int, ok bool) gin.H {
		if !ok {
			return gin.H{"existe": false, "id": nil}
		}
		return gin.H{"existe": true, "id": id}
	}
	supplierID, supplierOK := b.findPersonLocked("", format.Digits(in.Supplier.CNPJ))
	billedID, billedOK := b.findPersonLocked(model.PersonBilled, format.Digits(in.Billed.CPF))
	classID, classOK := b.findClassificationLocked(in.Classification)
	c.JSON(http.StatusOK, gin.H{
		"fornecedor":    entry(supplierID, supplierOK),
		"faturado":      entry(billedID, billedOK),
		"classificacao": entry(classID, classOK),
	})
}

func (b *Backend) register(c *gin.Context) {
	var in invoiceBody
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.id()
	switch c.Param("what") {
	case "fornecedor":
		b.people = append(b.people, model.Person{ID: id, Type: model.PersonClientSupplier, LegalName: in.Supplier.LegalName, Document: in.Supplier.CNPJ, Status: model.StatusActive, RegisteredAt: now()})
	case "faturado":
		b.people = append(b.people, model.Person{ID: id, Type: model.PersonBilled, LegalName: in.Billed.Name, Document: in.Billed.CPF, Status: model.StatusActive, RegisteredAt: now()})
	case "classificacao":
		b.classifications = append(b.classifications, model.Classification{ID: id, Type: model.ClassificationExpense, Description: in.Classification, Status: model.StatusActive, RegisteredAt: now()})
	default:
		fail(c, http.StatusNotFound, "rota desconhecida")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

func (b *Backend) launch(c *gin.Context) {
	var in map[string]any
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.launches = append(b.launches, in)
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Nota fiscal lançada com sucesso",
		"nota_fiscal_id": b.id(),
		"movimento_id":   b.id(),
	})
}

// --- RAG

func (b *Backend) ragExamplesHandler(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.ragExamples)
}

func (b *Backend) ragStatusHandler(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.ragStatus)
}

func (b *Backend) ragIndexHandler(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.ragIndex)
}

func (b *Backend) ask(c *gin.Context) {
	var in struct {
		Question string `json:"question"`
		Method   string `json:"method"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Question) == "" {
		fail(c, http.StatusBadRequest, "Pergunta não fornecida")
		return
	}
	if in.Method != api.MethodSimple && in.Method != api.MethodEmbeddings {
		fail(c, http.StatusBadRequest, "Método inválido. Use 'simple' ou 'embeddings'")
		return
	}

	b.mu.Lock()
	gate, started := b.askGate, b.askStarted
	b.askGate, b.askStarted = nil, nil
	b.mu.Unlock()
	if gate != nil {
		close(started)
		<-gate
	}

	label := "RAG_SIMPLE"
	if in.Method == api.MethodEmbeddings {
		label = "RAG_EMBEDDINGS"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"answer":         "Resposta para: " + in.Question,
		"method":         label,
		"query_type":     "geral",
		"data_retrieved": gin.H{"total": 1},
	})
}
