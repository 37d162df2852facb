package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuforge/docuforge/pkg/ai/llm"
	"github.com/docuforge/docuforge/pkg/cache"
	"github.com/docuforge/docuforge/pkg/documents"
	"github.com/docuforge/docuforge/pkg/domain"
	"github.com/docuforge/docuforge/pkg/esign"
	"github.com/docuforge/docuforge/pkg/models"
)

// ---------------------------------------------------------------------------
// in-memory document store

type fakeDocStore struct {
	docs map[uuid.UUID]*domain.Document
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: make(map[uuid.UUID]*domain.Document)}
}

func (s *fakeDocStore) Create(_ context.Context, d *domain.Document) error {
	copied := *d
	s.docs[d.ID] = &copied
	return nil
}

func (s *fakeDocStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Document, error) {
	d, ok := s.docs[id]
	if !ok {
		return nil, domain.NewNotFoundError("document")
	}
	copied := *d
	return &copied, nil
}

func (s *fakeDocStore) Update(_ context.Context, d *domain.Document) error {
	stored, ok := s.docs[d.ID]
	if !ok {
		return domain.NewNotFoundError("document")
	}
	if stored.Revision != d.Revision {
		return domain.NewConflictError("document was modified concurrently")
	}
	d.Revision++
	copied := *d
	s.docs[d.ID] = &copied
	return nil
}

func (s *fakeDocStore) ListByUser(_ context.Context, userID uuid.UUID, _ domain.DocumentFilter) ([]*domain.Document, int, error) {
	var out []*domain.Document
	for _, d := range s.docs {
		if d.CreatorID == userID {
			copied := *d
			out = append(out, &copied)
			continue
		}
		if _, ok := d.CollaboratorPermission(userID); ok {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out, len(out), nil
}

func (s *fakeDocStore) ListAll(_ context.Context, _ domain.DocumentFilter) ([]*domain.Document, int, error) {
	var out []*domain.Document
	for _, d := range s.docs {
		copied := *d
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (s *fakeDocStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.docs[id]; !ok {
		return domain.NewNotFoundError("document")
	}
	delete(s.docs, id)
	return nil
}

type cannedLLM struct {
	reply string
}

func (f *cannedLLM) Chat(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{Message: f.reply}, nil
}

func (f *cannedLLM) Complete(ctx context.Context, prompt string, _ ...string) (string, error) {
	resp, err := f.Chat(ctx, llm.ChatRequest{Messages: []llm.ChatMessage{{Role: "user", Content: prompt}}})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ---------------------------------------------------------------------------
// fixture

type docFixture struct {
	handler *DocumentHandler
	svc     *documents.Service
	users   *fakeUserStore
	docs    *fakeDocStore
	owner   *domain.User
}

func setupDocumentHandler(t *testing.T) *docFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	cacheClient, err := cache.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { cacheClient.Close() })

	owner, err := domain.NewUser("Elena Navarro", "elena@example.com", "hashed", domain.ProviderLocal, "", "")
	require.NoError(t, err)
	owner.Subscription.Plan = domain.PlanPremium
	owner.Subscription.Status = domain.SubscriptionActive

	users := newFakeUserStore(owner)
	docs := newFakeDocStore()
	svc := documents.NewService(docs, users, &cannedLLM{reply: `{"title": "Documento generado", "category": "contrato", "document_type": "legal", "content": "Contenido generado de prueba.", "language": "es"}`}, cacheClient, esign.NewService(nil))

	return &docFixture{
		handler: NewDocumentHandler(svc),
		svc:     svc,
		users:   users,
		docs:    docs,
		owner:   owner,
	}
}

func (f *docFixture) seedDoc(t *testing.T) *models.DocumentResponse {
	t.Helper()
	doc, err := f.svc.Create(context.Background(), f.owner.ID, models.CreateDocumentRequest{
		Title:   "Contrato de Arrendamiento",
		Type:    "legal",
		Content: "El arrendador cede el uso de la vivienda al arrendatario.",
	})
	require.NoError(t, err)
	return doc
}

func docRequest(method, body string, userID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	return c, rec
}

// ---------------------------------------------------------------------------
// tests

func TestDocumentCreate(t *testing.T) {
	f := setupDocumentHandler(t)

	c, rec := docRequest(http.MethodPost, `{"title":"Acuerdo Marco","content":"Las partes acuerdan lo siguiente."}`, f.owner.ID)
	require.NoError(t, f.handler.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp models.DocumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Acuerdo Marco", resp.Title)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, 1, resp.Version)
}

func TestDocumentCreateMissingTitle(t *testing.T) {
	f := setupDocumentHandler(t)

	c, rec := docRequest(http.MethodPost, `{"content":"Sin título."}`, f.owner.ID)
	require.NoError(t, f.handler.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentGet(t *testing.T) {
	f := setupDocumentHandler(t)
	doc := f.seedDoc(t)

	c, rec := docRequest(http.MethodGet, "", f.owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)
	require.NoError(t, f.handler.Get(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Contrato de Arrendamiento")
}

func TestDocumentGetMalformedID(t *testing.T) {
	f := setupDocumentHandler(t)

	c, rec := docRequest(http.MethodGet, "", f.owner.ID)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	require.NoError(t, f.handler.Get(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentGetStrangerDenied(t *testing.T) {
	f := setupDocumentHandler(t)
	doc := f.seedDoc(t)

	stranger, err := domain.NewUser("Otro Usuario", "otro@example.com", "hashed", domain.ProviderLocal, "", "")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), stranger))

	c, rec := docRequest(http.MethodGet, "", stranger.ID)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)
	require.NoError(t, f.handler.Get(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDocumentUpdate(t *testing.T) {
	f := setupDocumentHandler(t)
	doc := f.seedDoc(t)

	c, rec := docRequest(http.MethodPut, `{"content":"Texto revisado.","revision":1}`, f.owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)
	require.NoError(t, f.handler.Update(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.DocumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Texto revisado.", resp.Content)
	assert.Equal(t, 2, resp.Version)
}

func TestDocumentUpdateMissingRevision(t *testing.T) {
	f := setupDocumentHandler(t)
	doc := f.seedDoc(t)

	c, rec := docRequest(http.MethodPut, `{"content":"Texto revisado."}`, f.owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)
	require.NoError(t, f.handler.Update(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentUpdateStaleRevision(t *testing.T) {
	f := setupDocumentHandler(t)
	doc := f.seedDoc(t)

	c, rec := docRequest(http.MethodPut, `{"content":"Primera edición.","revision":1}`, f.owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)
	require.NoError(t, f.handler.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// Same revision again: someone else already wrote on top of it
	c, rec = docRequest(http.MethodPut, `{"content":"Edición perdida.","revision":1}`, f.owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)
	require.NoError(t, f.handler.Update(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDocumentListMine(t *testing.T) {
	f := setupDocumentHandler(t)
	f.seedDoc(t)
	f.seedDoc(t)

	c, rec := docRequest(http.MethodGet, "", f.owner.ID)
	require.NoError(t, f.handler.ListMine(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.DocumentListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Documents, 2)
}

func TestDocumentDelete(t *testing.T) {
	f := setupDocumentHandler(t)
	doc := f.seedDoc(t)

	c, rec := docRequest(http.MethodDelete, "", f.owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)
	require.NoError(t, f.handler.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = docRequest(http.MethodGet, "", f.owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)
	require.NoError(t, f.handler.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentGenerate(t *testing.T) {
	f := setupDocumentHandler(t)

	c, rec := docRequest(http.MethodPost, `{"prompt":"Redacta un contrato de servicios para un diseñador freelance."}`, f.owner.ID)
	require.NoError(t, f.handler.Generate(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Contenido generado de prueba.")
}

func TestDocumentGeneratePromptTooShort(t *testing.T) {
	f := setupDocumentHandler(t)

	c, rec := docRequest(http.MethodPost, `{"prompt":"corto"}`, f.owner.ID)
	require.NoError(t, f.handler.Generate(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentExportTxt(t *testing.T) {
	f := setupDocumentHandler(t)
	doc := f.seedDoc(t)

	c, rec := docRequest(http.MethodGet, "", f.owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)
	require.NoError(t, f.handler.Export("txt")(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/plain")
	assert.Contains(t, rec.Body.String(), "El arrendador cede el uso")
}

func TestDocumentShareAndCollaborators(t *testing.T) {
	f := setupDocumentHandler(t)
	doc := f.seedDoc(t)

	collaborator, err := domain.NewUser("Sergio Vidal", "sergio@example.com", "hashed", domain.ProviderLocal, "", "")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), collaborator))

	body := `{"collaborators":[{"user_id":"` + collaborator.ID.String() + `","permission":"edit"}]}`
	c, rec := docRequest(http.MethodPost, body, f.owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)
	require.NoError(t, f.handler.Share(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = docRequest(http.MethodGet, "", f.owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)
	require.NoError(t, f.handler.Collaborators(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), collaborator.ID.String())
}

func TestDocumentShareInvalidPermission(t *testing.T) {
	f := setupDocumentHandler(t)
	doc := f.seedDoc(t)

	body := `{"collaborators":[{"user_id":"` + uuid.NewString() + `","permission":"owner"}]}`
	c, rec := docRequest(http.MethodPost, body, f.owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)
	require.NoError(t, f.handler.Share(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
