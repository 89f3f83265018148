package convo

import (
	"fmt"
	"strings"

	"github.com/stock-logistic/quoting-cli/internal/model"
)

// fieldQuestions are the Spanish prompts for each collectable field. The
// collection order follows model.RequiredFields.
var fieldQuestions = map[model.FieldKey]string{
	model.FieldOrigin:      "¿Desde qué ciudad española sale la mercancía?",
	model.FieldDestination: "¿A qué ciudad europea va destinada la carga?",
	model.FieldWeightKg:    "¿Cuál es el peso de la carga en kg?",
	model.FieldVolumeM3:    "¿Qué volumen ocupa la carga en metros cúbicos?",
	model.FieldCargoType:   "¿Qué tipo de carga es? (general, forestal, ADR, refrigerada, especial)",
	model.FieldPickupDate:  "¿Qué fecha de recogida necesita? (DD/MM/AAAA)",
	model.FieldServiceType: "¿Qué tipo de servicio prefiere? (económico, estándar, express)",
}

const greeting = "¡Hola! Soy el asistente de cotizaciones de Stock Logistic. " +
	"Le ayudo a cotizar su envío por carretera en Europa."

// NextQuestion returns the prompt for the first missing required field.
func NextQuestion(fields model.FieldSet) string {
	for _, k := range model.RequiredFields {
		if !fields.Has(k) {
			return fieldQuestions[k]
		}
	}
	return ""
}

// AskText renders the full assistant reply for an incomplete session:
// optional validation warnings, a greeting on the first turn, and the next
// question.
func AskText(fields model.FieldSet, warnings []string, firstTurn bool) string {
	var b strings.Builder
	if firstTurn {
		b.WriteString(greeting)
		b.WriteString("\n\n")
	}
	for _, w := range warnings {
		b.WriteString(w)
		b.WriteString("\n")
	}
	b.WriteString(NextQuestion(fields))
	return b.String()
}

// SummaryText renders the Spanish quote summary returned when collection
// completes.
func SummaryText(q *model.QuoteRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Cotización %s generada\n\n", q.QuoteID)
	fmt.Fprintf(&b, "Ruta: %s → %s (%.0f km)\n", q.Route.Origin, q.Route.Destination, q.Route.DistanceKm)
	fmt.Fprintf(&b, "Vehículo: %s\n\n", q.Vehicle.Type)
	fmt.Fprintf(&b, "Transporte: %.2f EUR\n", q.Costs.Transport)
	fmt.Fprintf(&b, "Combustible: %.2f EUR\n", q.Costs.Fuel)
	fmt.Fprintf(&b, "Peajes: %.2f EUR\n", q.Costs.Tolls)
	fmt.Fprintf(&b, "Seguro: %.2f EUR\n", q.Costs.Insurance)
	fmt.Fprintf(&b, "TOTAL: %.2f EUR\n\n", q.Costs.Total)
	fmt.Fprintf(&b, "Tiempo estimado: %d día(s)\n", q.Timing.EstimatedDays)
	fmt.Fprintf(&b, "Validez: %d días\n", q.ValidityDays)

	for _, a := range q.Restrictions {
		if a.Severity == model.SeverityCritical {
			fmt.Fprintf(&b, "\n⚠️ %s\n", a.Message)
		}
	}
	return b.String()
}
