package testdata

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/docuforge/docuforge/pkg/auth"
	"github.com/docuforge/docuforge/pkg/domain"
)

// GeneratorConfig configures fake data generation
type GeneratorConfig struct {
	Users        int
	DocsPerUser  int
	PremiumShare float64 // 0.0-1.0 share of users on the premium plan
	Seed         int64
}

// DefaultConfig returns a small workspace suitable for local development
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Users:        25,
		DocsPerUser:  4,
		PremiumShare: 0.3,
		Seed:         42,
	}
}

// Category templates the generator draws from. Categories match the ones
// the AI generation prompts know about.
var documentSeeds = []struct {
	Category string
	Titles   []string
	Body     string
}{
	{
		Category: "contrato_servicios",
		Titles: []string{
			"Contrato de Servicios de %s",
			"Acuerdo de Prestación de Servicios con %s",
		},
		Body: "REUNIDOS\n\nDe una parte, %s, en adelante el CLIENTE.\nDe otra parte, %s, en adelante el PRESTADOR.\n\nACUERDAN la prestación de los servicios descritos a continuación, con una contraprestación de %d euros mensuales.",
	},
	{
		Category: "acuerdo_confidencialidad",
		Titles: []string{
			"Acuerdo de Confidencialidad con %s",
			"NDA - Proyecto %s",
		},
		Body: "Las partes, %s y %s, se comprometen a mantener la confidencialidad de toda la información intercambiada durante un periodo de %d años.",
	},
	{
		Category: "contrato_arrendamiento",
		Titles: []string{
			"Contrato de Arrendamiento - %s",
			"Alquiler de Vivienda en %s",
		},
		Body: "El arrendador %s cede al arrendatario %s el uso de la vivienda por una renta mensual de %d euros.",
	},
	{
		Category: "propuesta_comercial",
		Titles: []string{
			"Propuesta Comercial para %s",
			"Oferta de Colaboración con %s",
		},
		Body: "Estimado equipo de %s:\n\nPresentamos nuestra propuesta de colaboración con %s, con un presupuesto estimado de %d euros.",
	},
}

// Generator produces fake users and documents
type Generator struct {
	faker *gofakeit.Faker
	rand  *rand.Rand
}

// NewGenerator creates a deterministic generator for the given seed
func NewGenerator(seed int64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		rand:  rand.New(rand.NewSource(seed)),
	}
}

// User generates a local-provider user. All seeded accounts share the same
// password so developers can log in as any of them.
func (g *Generator) User(premiumShare float64) (*domain.User, error) {
	name := g.faker.Name()
	address := strings.ToLower(fmt.Sprintf("%s.%s%d@example.com",
		sanitize(g.faker.FirstName()), sanitize(g.faker.LastName()), g.rand.Intn(1000)))

	hash, err := auth.HashPassword("docuforge-dev")
	if err != nil {
		return nil, err
	}

	u, err := domain.NewUser(name, address, hash, domain.ProviderLocal, "", "")
	if err != nil {
		return nil, err
	}
	u.EmailVerified = true

	if g.rand.Float64() < premiumShare {
		u.Subscription.Plan = domain.PlanPremium
		u.Subscription.Status = domain.SubscriptionActive
	}
	return u, nil
}

// Document generates a document owned by the given user
func (g *Generator) Document(creator uuid.UUID) (*domain.Document, error) {
	seed := documentSeeds[g.rand.Intn(len(documentSeeds))]
	counterparty := g.faker.Company()
	title := fmt.Sprintf(seed.Titles[g.rand.Intn(len(seed.Titles))], counterparty)
	body := fmt.Sprintf(seed.Body, g.faker.Name(), counterparty, 100+g.rand.Intn(4900))

	d, err := domain.NewDocument(
		creator,
		title,
		domain.ClassifyDocumentType(seed.Category),
		seed.Category,
		body,
		domain.Metadata{
			Language:     "es",
			Jurisdiction: "ES",
			Parties: []domain.Party{
				{Name: counterparty, Role: "parte"},
			},
		},
		"Documento inicial",
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func sanitize(s string) string {
	s = strings.ToLower(s)
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n", " ", "", "'", "")
	return replacer.Replace(s)
}
