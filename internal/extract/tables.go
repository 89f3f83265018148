package extract

import "github.com/stock-logistic/quoting-cli/internal/model"

// The recognition tables below are ordered: matching scans each slice top
// to bottom and the first hit wins. Keys are stored folded (lowercase,
// no diacritics) and matched against folded input.

// spanishCities are the valid origin cities, in scan order.
var spanishCities = []string{
	"Madrid", "Barcelona", "Valencia", "Sevilla", "Zaragoza", "Málaga",
	"Murcia", "Palma", "Las Palmas", "Bilbao", "Alicante", "Córdoba",
	"Valladolid", "Vigo", "Gijón", "La Coruña", "Granada", "Vitoria",
	"Elche", "Santander", "Burgos", "Salamanca", "Tarragona",
}

// destinationCities maps folded aliases to the canonical destination name.
type destinationAlias struct {
	alias     string
	canonical string
}

var destinationCities = []destinationAlias{
	{"paris", "París"}, {"lyon", "Lyon"}, {"marsella", "Marsella"},
	{"niza", "Niza"}, {"toulouse", "Toulouse"}, {"burdeos", "Burdeos"},
	{"bordeaux", "Burdeos"},
	{"berlin", "Berlín"}, {"munich", "Múnich"}, {"hamburgo", "Hamburgo"},
	{"frankfurt", "Frankfurt"}, {"colonia", "Colonia"}, {"stuttgart", "Stuttgart"},
	{"roma", "Roma"}, {"milan", "Milán"}, {"napoles", "Nápoles"},
	{"turin", "Turín"}, {"florencia", "Florencia"}, {"venecia", "Venecia"},
	{"amsterdam", "Ámsterdam"}, {"rotterdam", "Róterdam"}, {"roterdam", "Róterdam"},
	{"utrecht", "Utrecht"}, {"la haya", "La Haya"},
	{"bruselas", "Bruselas"}, {"amberes", "Amberes"}, {"gante", "Gante"},
	{"brujas", "Brujas"},
	{"zurich", "Zurich"}, {"ginebra", "Ginebra"}, {"berna", "Berna"},
	{"basilea", "Basilea"},
	{"viena", "Viena"}, {"salzburgo", "Salzburgo"}, {"innsbruck", "Innsbruck"},
	{"graz", "Graz"},
	{"lisboa", "Lisboa"}, {"oporto", "Oporto"}, {"braga", "Braga"},
	{"coimbra", "Coimbra"},
	{"praga", "Praga"}, {"brno", "Brno"}, {"ostrava", "Ostrava"},
	{"varsovia", "Varsovia"}, {"cracovia", "Cracovia"}, {"gdansk", "Gdansk"},
	{"wroclaw", "Wroclaw"},
}

// keywordEntry pairs a folded keyword with the category it maps to.
type keywordEntry struct {
	keyword  string
	category string
}

// cargoKeywords maps cargo vocabulary to categories. Chemical keywords
// deliberately fold into the ADR bucket.
var cargoKeywords = []keywordEntry{
	{"forestal", model.CargoForestry},
	{"madera", model.CargoForestry},
	{"tablero", model.CargoForestry},
	{"palet", model.CargoForestry},
	{"adr", model.CargoADR},
	{"peligros", model.CargoADR},
	{"dangerous", model.CargoADR},
	{"quimic", model.CargoADR},
	{"refriger", model.CargoRefrigerated},
	{"frio", model.CargoRefrigerated},
	{"congelad", model.CargoRefrigerated},
	{"especial", model.CargoSpecial},
	{"fragil", model.CargoSpecial},
	{"delicad", model.CargoSpecial},
}

// genericCargoSynonyms are ambiguous with service tiers ("servicio
// estandar") and only count next to cargo vocabulary.
var genericCargoSynonyms = []keywordEntry{
	{"general", model.CargoGeneral},
	{"estandar", model.CargoGeneral},
	{"normal", model.CargoGeneral},
}

// serviceKeywords maps service vocabulary to tiers.
var serviceKeywords = []keywordEntry{
	{"economico", string(model.TierEconomic)},
	{"barato", string(model.TierEconomic)},
	{"estandar", string(model.TierStandard)},
	{"normal", string(model.TierStandard)},
	{"balance", string(model.TierStandard)},
	{"express", string(model.TierExpress)},
	{"rapido", string(model.TierExpress)},
	{"urgente", string(model.TierExpress)},
	{"premium", string(model.TierExpress)},
}

// serviceTierNames lets the contextual fallback accept a bare tier name
// when the assistant just asked about service level.
var serviceTierNames = []keywordEntry{
	{"economic", string(model.TierEconomic)},
	{"standard", string(model.TierStandard)},
}

// knownCityNames holds every folded city name, used to keep city mentions
// from being mistaken for personal names.
var knownCityNames = func() map[string]bool {
	m := make(map[string]bool, len(spanishCities)+len(destinationCities))
	for _, c := range spanishCities {
		m[fold(c)] = true
	}
	for _, d := range destinationCities {
		m[fold(d.canonical)] = true
	}
	return m
}()
