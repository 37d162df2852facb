package llm

import (
	"fmt"
	"sort"
	"strings"
)

// System prompts for the document assistant. Templates are written in
// Spanish because it is the platform's primary language; the desired output
// language travels in the user prompt.

const baseGenerationPrompt = `Eres un asistente legal especializado en la creación de documentos profesionales. Tu tarea es generar un documento completo, preciso y profesional basado en la información proporcionada por el usuario.`

const baseAnalysisPrompt = `Eres un asistente legal especializado en el análisis de documentos. Tu tarea es analizar el documento proporcionado y extraer información relevante según el tipo de análisis solicitado.`

const editSystemPrompt = `Eres un asistente legal especializado en la edición y mejora de documentos. Tu tarea es editar el documento proporcionado siguiendo las instrucciones específicas del usuario. Mantén el formato y estructura profesional del documento, y asegúrate de que todas las modificaciones sean coherentes con el propósito y contexto del documento original.`

const conversationSystemPrompt = `Eres un asistente legal especializado en la creación de documentos a través de conversaciones. Tu tarea es guiar al usuario a través de un proceso paso a paso para recopilar toda la información necesaria para generar un documento completo y profesional. Haz una pregunta a la vez y confirma los datos recopilados antes de generar el documento.`

// draftContract tells the model to answer with a single JSON object so the
// reply can be decoded into a DocumentDraft instead of scraped from prose.
const draftContract = `Responde únicamente con un objeto JSON con esta forma exacta:
{"title": "...", "category": "...", "document_type": "legal|business|personal|other", "content": "...", "language": "es|en", "keywords": ["..."]}
El campo "content" contiene el texto completo del documento.`

// conversationContract is the JSON reply shape for guided conversations.
// When "ready" is true the draft fields must be filled in.
const conversationContract = `Responde únicamente con un objeto JSON con esta forma exacta:
{"reply": "...", "ready": true|false, "draft": {"title": "...", "category": "...", "document_type": "legal|business|personal|other", "content": "...", "language": "es|en", "keywords": ["..."]}}
Mientras falte información, "ready" es false y "draft" puede ser null.`

// analysisContract is the JSON reply shape for document analysis.
const analysisContract = `Responde únicamente con un objeto JSON con esta forma exacta:
{"summary": "...", "risks": ["..."], "missing_clauses": ["..."], "keywords": ["..."]}`

// templateSpecializations mirror the document templates the platform offers
var templateSpecializations = map[string]string{
	"contrato_arrendamiento": `Especialización: Contratos de Arrendamiento
Debes crear un contrato de arrendamiento completo que incluya todas las cláusulas estándar y protecciones tanto para el arrendador como para el arrendatario.`,
	"contrato_servicios": `Especialización: Contratos de Servicios Profesionales
Debes crear un contrato de servicios profesionales que defina claramente el alcance del trabajo, honorarios, plazos, entregables y responsabilidades de ambas partes.`,
	"acuerdo_confidencialidad": `Especialización: Acuerdos de Confidencialidad (NDA)
Debes crear un acuerdo de confidencialidad que defina claramente qué se considera información confidencial, las obligaciones de la parte receptora y las consecuencias del incumplimiento.`,
	"carta_renuncia": `Especialización: Cartas de Renuncia
Debes crear una carta de renuncia profesional y respetuosa que comunique claramente la intención del empleado de dejar su puesto.`,
	"demanda_civil": `Especialización: Demandas Civiles
Debes crear una demanda civil que presente claramente los hechos, fundamentos legales, pretensiones y pruebas, siguiendo la estructura formal correspondiente.`,
	"poder_notarial": `Especialización: Poderes Notariales
Debes crear un poder notarial que defina claramente las facultades otorgadas al apoderado, limitaciones, duración y condiciones de revocación.`,
}

// KnownTemplates lists the supported template identifiers, sorted
func KnownTemplates() []string {
	out := make([]string, 0, len(templateSpecializations))
	for k := range templateSpecializations {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsKnownTemplate reports whether the template identifier is supported
func IsKnownTemplate(template string) bool {
	_, ok := templateSpecializations[template]
	return ok
}

// GenerationSystemPrompt builds the system prompt for free-form generation
func GenerationSystemPrompt() string {
	return baseGenerationPrompt + "\n\n" + draftContract
}

// TemplateSystemPrompt builds the system prompt for a known template.
// Unknown templates fall back to the base generation prompt.
func TemplateSystemPrompt(template string) string {
	if spec, ok := templateSpecializations[template]; ok {
		return baseGenerationPrompt + "\n\n" + spec + "\n\n" + draftContract
	}
	return GenerationSystemPrompt()
}

// ConversationSystemPrompt builds the system prompt for guided generation
func ConversationSystemPrompt() string {
	return conversationSystemPrompt + "\n\n" + conversationContract
}

// AnalysisSystemPrompt builds the system prompt for document analysis
func AnalysisSystemPrompt() string {
	return baseAnalysisPrompt + "\n\n" + analysisContract
}

// EditSystemPrompt is the system prompt for instruction-driven edits
func EditSystemPrompt() string {
	return editSystemPrompt
}

// GenerationPrompt builds the user prompt for free-form generation
func GenerationPrompt(request, category, language string) string {
	var b strings.Builder
	b.WriteString("Genera un documento basado en la siguiente solicitud:\n\n")
	b.WriteString(request)
	if category != "" {
		fmt.Fprintf(&b, "\n\nCategoría del documento: %s", category)
	}
	fmt.Fprintf(&b, "\n\nIdioma del documento: %s", languageName(language))
	return b.String()
}

// TemplatePrompt builds the user prompt for template-driven generation
func TemplatePrompt(template string, fields map[string]string, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Genera un documento del tipo %q con los siguientes datos:\n\n", template)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, fields[k])
	}

	fmt.Fprintf(&b, "\nIdioma del documento: %s", languageName(language))
	return b.String()
}

// AnalysisPrompt builds the user prompt for document analysis
func AnalysisPrompt(content, language string) string {
	var b strings.Builder
	b.WriteString("Analiza el siguiente documento. Identifica su propósito, las partes involucradas, cláusulas ambiguas o desfavorables, protecciones estándar ausentes y términos clave.\n\n")
	fmt.Fprintf(&b, "Idioma de la respuesta: %s\n\n", languageName(language))
	b.WriteString("--- DOCUMENTO ---\n")
	b.WriteString(content)
	return b.String()
}

// EditPrompt builds the user prompt for instruction-driven edits
func EditPrompt(content, instruction string) string {
	var b strings.Builder
	b.WriteString("Edita el siguiente documento según estas instrucciones:\n\n")
	b.WriteString(instruction)
	b.WriteString("\n\n--- DOCUMENTO ---\n")
	b.WriteString(content)
	b.WriteString("\n\nDevuelve únicamente el documento editado completo, sin comentarios adicionales.")
	return b.String()
}

// MergePrompt builds the user prompt for merging two documents
func MergePrompt(target, source string) string {
	var b strings.Builder
	b.WriteString("Combina los dos documentos siguientes en un único documento coherente. Conserva todas las cláusulas de ambos, elimina duplicados y resuelve contradicciones a favor del documento principal.\n\n")
	b.WriteString("--- DOCUMENTO PRINCIPAL ---\n")
	b.WriteString(target)
	b.WriteString("\n\n--- DOCUMENTO A INCORPORAR ---\n")
	b.WriteString(source)
	b.WriteString("\n\nDevuelve únicamente el documento combinado completo, sin comentarios adicionales.")
	return b.String()
}

// TranslatePrompt builds the user prompt for document translation
func TranslatePrompt(content, targetLanguage string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Traduce el siguiente documento al %s. Conserva el formato, la estructura y el registro legal del original.\n\n", languageName(targetLanguage))
	b.WriteString("--- DOCUMENTO ---\n")
	b.WriteString(content)
	b.WriteString("\n\nDevuelve únicamente el documento traducido completo, sin comentarios adicionales.")
	return b.String()
}

func languageName(code string) string {
	switch code {
	case "en":
		return "inglés"
	default:
		return "español"
	}
}
