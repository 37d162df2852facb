package billing

import "github.com/docuforge/docuforge/pkg/models"

// GetPricing returns pricing information for all plans
func (s *Service) GetPricing() *models.PricingResponse {
	return &models.PricingResponse{
		Plans: []models.PricingPlan{
			{
				Name:         "free",
				PriceMonthly: 0,
				PriceAnnual:  0,
				Description:  "Para probar la plataforma",
				Features: []string{
					"3 documentos al mes",
					"Generación básica con IA",
					"Descarga en texto y Markdown",
				},
			},
			{
				Name:         "premium",
				PriceMonthly: 19,
				PriceAnnual:  190,
				Description:  "Para profesionales independientes",
				Features: []string{
					"Documentos ilimitados",
					"Generación avanzada con IA",
					"Análisis de riesgos y cláusulas",
					"Edición asistida por IA",
					"Plantillas guardadas",
				},
			},
			{
				Name:         "enterprise",
				PriceMonthly: 49,
				PriceAnnual:  490,
				Description:  "Para equipos y despachos",
				Features: []string{
					"Todo lo incluido en Premium",
					"Colaboración en equipo",
					"Firma electrónica de documentos",
					"Acceso por API",
					"Soporte prioritario",
				},
			},
		},
	}
}
