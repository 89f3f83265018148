package pricing

import "github.com/stock-logistic/quoting-cli/internal/model"

// Tier multipliers over the base total. Alternatives are derived from the
// one base quote, not priced independently.
const (
	economicFactor = 0.85
	standardFactor = 1.00
	expressFactor  = 1.25
)

var tierFeatures = map[model.ServiceTier][]string{
	model.TierEconomic: {
		"Transporte en grupaje",
		"Seguro básico incluido",
		"Seguimiento por email",
	},
	model.TierStandard: {
		"Transporte directo",
		"Seguro completo incluido",
		"Seguimiento en tiempo real",
		"Atención telefónica",
	},
	model.TierExpress: {
		"Transporte directo prioritario",
		"Seguro completo ampliado",
		"Seguimiento en tiempo real",
		"Atención telefónica 24h",
		"Entrega garantizada",
	},
}

// Alternatives derives the three service options from a base total and
// base day count. Standard is always the recommended tier.
func Alternatives(baseTotal float64, baseDays int) []model.ServiceOption {
	expressDays := baseDays - 1
	if expressDays < 1 {
		expressDays = 1
	}
	return []model.ServiceOption{
		{
			Tier:     model.TierEconomic,
			Price:    round2(baseTotal * economicFactor),
			Days:     baseDays + 2,
			Features: tierFeatures[model.TierEconomic],
		},
		{
			Tier:        model.TierStandard,
			Price:       round2(baseTotal * standardFactor),
			Days:        baseDays,
			Features:    tierFeatures[model.TierStandard],
			Recommended: true,
		},
		{
			Tier:     model.TierExpress,
			Price:    round2(baseTotal * expressFactor),
			Days:     expressDays,
			Features: tierFeatures[model.TierExpress],
		},
	}
}
