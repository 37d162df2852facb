package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDraft(t *testing.T) {
	raw := `{"title":"Contrato de Servicios","category":"contrato_servicios","document_type":"legal","content":"CONTRATO DE SERVICIOS...","language":"es","keywords":["servicios","honorarios"]}`

	draft, err := ParseDraft(raw)
	require.NoError(t, err)
	assert.Equal(t, "Contrato de Servicios", draft.Title)
	assert.Equal(t, "legal", draft.DocumentType)
	assert.Equal(t, "es", draft.Language)
	assert.Len(t, draft.Keywords, 2)
}

func TestParseDraftStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"title\":\"NDA\",\"content\":\"ACUERDO DE CONFIDENCIALIDAD...\"}\n```"

	draft, err := ParseDraft(raw)
	require.NoError(t, err)
	assert.Equal(t, "NDA", draft.Title)
	assert.Equal(t, "ACUERDO DE CONFIDENCIALIDAD...", draft.Content)
}

func TestParseDraftDefaultsTitle(t *testing.T) {
	draft, err := ParseDraft(`{"content":"texto"}`)
	require.NoError(t, err)
	assert.Equal(t, "Documento generado", draft.Title)
}

func TestParseDraftErrors(t *testing.T) {
	_, err := ParseDraft("")
	assert.Error(t, err)

	_, err = ParseDraft("not json at all")
	assert.Error(t, err)

	// Valid JSON but no content
	_, err = ParseDraft(`{"title":"x"}`)
	assert.Error(t, err)
}

func TestParseConversationTurn(t *testing.T) {
	raw := `{"reply":"¿Cuál es el nombre del arrendador?","ready":false}`

	turn, err := ParseConversationTurn(raw)
	require.NoError(t, err)
	assert.False(t, turn.Ready)
	assert.Nil(t, turn.Draft)
	assert.NotEmpty(t, turn.Reply)
}

func TestParseConversationTurnReady(t *testing.T) {
	raw := `{"reply":"El documento está listo.","ready":true,"draft":{"title":"Contrato","content":"CONTRATO...","document_type":"legal"}}`

	turn, err := ParseConversationTurn(raw)
	require.NoError(t, err)
	assert.True(t, turn.Ready)
	require.NotNil(t, turn.Draft)
	assert.Equal(t, "Contrato", turn.Draft.Title)
}

func TestParseConversationTurnReadyWithoutDraft(t *testing.T) {
	_, err := ParseConversationTurn(`{"reply":"listo","ready":true}`)
	assert.Error(t, err)
}

func TestParseAnalysis(t *testing.T) {
	raw := `{"summary":"Contrato de arrendamiento entre dos partes.","risks":["Cláusula de renovación ambigua"],"missing_clauses":["Penalización por mora"],"keywords":["arrendamiento"]}`

	analysis, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, analysis.Summary)
	assert.Len(t, analysis.Risks, 1)
	assert.Len(t, analysis.Missing, 1)
}

func TestParseAnalysisWithoutSummary(t *testing.T) {
	_, err := ParseAnalysis(`{"risks":["algo"]}`)
	assert.Error(t, err)
}
