// Package extract pulls structured shipment fields out of free-form
// Spanish customer messages. Matching is regex and keyword based over a
// folded (lowercase, diacritic-free) copy of the text, with contextual
// fallbacks keyed on the assistant's previous question.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/stock-logistic/quoting-cli/internal/model"
)

var (
	reWeightKg   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:kg|kilos?|kilogramos?)`)
	reWeightTons = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:ton|toneladas?)`)
	reWeightKey  = regexp.MustCompile(`peso[:\s]*(\d+(?:\.\d+)?)`)
	reBareNumber = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*$`)

	reVolume     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:m3|m³|metros?\s+cubicos?)`)
	reVolumeKey  = regexp.MustCompile(`volumen[:\s]*(\d+(?:\.\d+)?)`)
	reDimsX      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*x\s*(\d+(?:\.\d+)?)\s*x\s*(\d+(?:\.\d+)?)`)
	reDimsSpaced = regexp.MustCompile(`(?:dimensiones|medidas)[:\s]*(\d+(?:\.\d+)?)\s+(\d+(?:\.\d+)?)\s+(\d+(?:\.\d+)?)`)

	reEmail   = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)
	reCompany = regexp.MustCompile(`(?:empresa|compania|compañía|para)\s+([A-ZÁÉÍÓÚÑ][^.,\n]*)`)
	rePhone   = regexp.MustCompile(`(?:\+?\d[\d\s().-]{7,}\d)`)
	reName    = regexp.MustCompile(`\b([A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+){1,3})\b`)
	reMargin  = regexp.MustCompile(`margen[:\s]+(\d+(?:\.\d+)?)\s*%?`)

	reDateDMY = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	reDateISO = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)

	reOriginHint = regexp.MustCompile(`(?:desde|de|origen[:\s]*)\s*$`)
)

// Extract scans one user message and returns every field it recognizes.
// lastQuestion is the assistant's previous prompt; it drives contextual
// interpretation of bare answers like "1500" or "express".
func Extract(text, lastQuestion string) model.FieldSet {
	fields := model.FieldSet{}
	folded := fold(text)
	foldedQ := fold(lastQuestion)

	if w, ok := extractWeight(folded, foldedQ); ok {
		fields[model.FieldWeightKg] = w
	}
	if v, ok := extractVolume(folded, foldedQ); ok {
		fields[model.FieldVolumeM3] = v
	}
	if m := reEmail.FindString(text); m != "" {
		fields[model.FieldEmail] = m
	}
	if m := reCompany.FindStringSubmatch(text); m != nil {
		fields[model.FieldCompanyName] = strings.TrimSpace(m[1])
	}
	if city, ok := extractOrigin(folded); ok {
		fields[model.FieldOrigin] = city
	}
	if city, ok := extractDestination(folded, fields.String(model.FieldOrigin)); ok {
		fields[model.FieldDestination] = city
	}
	if c, ok := extractCargo(folded, foldedQ); ok {
		fields[model.FieldCargoType] = c
	}
	if s, ok := extractService(folded, foldedQ); ok {
		fields[model.FieldServiceType] = s
	}
	if p, ok := extractPhone(text); ok {
		fields[model.FieldPhone] = p
	}
	if n, ok := extractContactName(text, folded); ok {
		fields[model.FieldContactName] = n
	}
	if m := reMargin.FindStringSubmatch(folded); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			fields[model.FieldProfitMargin] = f
		}
	}
	if d, ok := extractDate(text); ok {
		fields[model.FieldPickupDate] = d
	}
	return fields
}

func extractWeight(folded, foldedQ string) (float64, bool) {
	if m := reWeightTons.FindStringSubmatch(folded); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return f * 1000, true
		}
	}
	if m := reWeightKg.FindStringSubmatch(folded); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return f, true
		}
	}
	if m := reWeightKey.FindStringSubmatch(folded); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return f, true
		}
	}
	// A bare number is only a weight if the assistant just asked for one.
	if strings.Contains(foldedQ, "peso") || strings.Contains(foldedQ, "kg") {
		if m := reBareNumber.FindStringSubmatch(strings.TrimSpace(folded)); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func extractVolume(folded, foldedQ string) (float64, bool) {
	if m := reVolume.FindStringSubmatch(folded); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return f, true
		}
	}
	if m := reVolumeKey.FindStringSubmatch(folded); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return f, true
		}
	}
	for _, re := range []*regexp.Regexp{reDimsSpaced, reDimsX} {
		if m := re.FindStringSubmatch(folded); m != nil {
			l, e1 := strconv.ParseFloat(m[1], 64)
			w, e2 := strconv.ParseFloat(m[2], 64)
			h, e3 := strconv.ParseFloat(m[3], 64)
			if e1 == nil && e2 == nil && e3 == nil {
				return l * w * h, true
			}
		}
	}
	// Same contextual rule as weight: a bare number answers a volume
	// question only when the assistant just asked one.
	if strings.Contains(foldedQ, "volumen") || strings.Contains(foldedQ, "m3") || strings.Contains(foldedQ, "cubic") {
		if m := reBareNumber.FindStringSubmatch(strings.TrimSpace(folded)); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func extractOrigin(folded string) (string, bool) {
	// "desde <city>" pins the origin explicitly; a bare city mention is
	// accepted as a fallback.
	for _, city := range spanishCities {
		fc := fold(city)
		if strings.Contains(folded, "desde "+fc) || strings.Contains(folded, "de "+fc) ||
			strings.Contains(folded, "origen "+fc) || strings.Contains(folded, "origen: "+fc) {
			return city, true
		}
	}
	for _, city := range spanishCities {
		if strings.Contains(folded, fold(city)) {
			return city, true
		}
	}
	return "", false
}

func extractDestination(folded, origin string) (string, bool) {
	foldedOrigin := fold(origin)
	for _, d := range destinationCities {
		if d.alias == foldedOrigin {
			continue
		}
		if strings.Contains(folded, "hasta "+d.alias) || strings.Contains(folded, "a "+d.alias) ||
			strings.Contains(folded, "destino "+d.alias) || strings.Contains(folded, "destino: "+d.alias) {
			return d.canonical, true
		}
	}
	for _, d := range destinationCities {
		if strings.Contains(folded, d.alias) {
			return d.canonical, true
		}
	}
	return "", false
}

func extractCargo(folded, foldedQ string) (string, bool) {
	if c, ok := matchKeyword(folded, cargoKeywords); ok {
		return c, true
	}
	// Generic synonyms need cargo vocabulary nearby, or a cargo-type
	// question to answer. "servicio estandar" alone names no cargo.
	if strings.Contains(folded, "carga") || strings.Contains(folded, "mercanc") ||
		strings.Contains(foldedQ, "tipo de carga") {
		if c, ok := matchKeyword(folded, genericCargoSynonyms); ok {
			return c, true
		}
	}
	return "", false
}

func extractService(folded, foldedQ string) (string, bool) {
	if s, ok := matchKeyword(folded, serviceKeywords); ok {
		return s, true
	}
	// Bare tier names count as answers to a service-level question.
	if strings.Contains(foldedQ, "servicio") || strings.Contains(foldedQ, "rapido") ||
		strings.Contains(foldedQ, "velocidad") {
		if s, ok := matchKeyword(folded, serviceTierNames); ok {
			return s, true
		}
	}
	return "", false
}

func extractPhone(text string) (string, bool) {
	m := rePhone.FindString(text)
	if m == "" {
		return "", false
	}
	digits := 0
	for _, r := range m {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 9 {
		return "", false
	}
	return strings.TrimSpace(m), true
}

func extractContactName(text, folded string) (string, bool) {
	// Capitalized word runs next to company or email context are almost
	// never personal names, so those messages are skipped entirely.
	if strings.Contains(folded, "empresa") || strings.Contains(folded, "compania") ||
		strings.Contains(text, "@") {
		return "", false
	}
	for _, m := range reName.FindAllStringSubmatch(text, -1) {
		candidate := m[1]
		cityHit := false
		for _, word := range strings.Fields(fold(candidate)) {
			if knownCityNames[word] {
				cityHit = true
				break
			}
		}
		if knownCityNames[fold(candidate)] {
			cityHit = true
		}
		if !cityHit {
			return candidate, true
		}
	}
	return "", false
}

func extractDate(text string) (string, bool) {
	if m := reDateISO.FindStringSubmatch(text); m != nil {
		if iso, ok := normalizeDate(m[1], m[2], m[3]); ok {
			return iso, true
		}
	}
	if m := reDateDMY.FindStringSubmatch(text); m != nil {
		if iso, ok := normalizeDate(m[3], m[2], m[1]); ok {
			return iso, true
		}
	}
	return "", false
}

// normalizeDate validates a year/month/day triple and renders it ISO.
// Impossible dates are dropped rather than clamped.
func normalizeDate(y, mo, d string) (string, bool) {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(mo)
	day, _ := strconv.Atoi(d)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

func matchKeyword(folded string, table []keywordEntry) (string, bool) {
	for _, e := range table {
		if strings.Contains(folded, e.keyword) {
			return e.category, true
		}
	}
	return "", false
}
