package pricing

import "github.com/stock-logistic/quoting-cli/internal/model"

// cargoRates maps a canonical cargo category to its transport rate in
// EUR per kg per 100 km.
var cargoRates = map[string]float64{
	"general":      1.20,
	"fragile":      1.80,
	"electronics":  2.10,
	"chemicals":    2.50,
	"food":         1.60,
	"refrigerated": 2.20,
	"hazardous":    3.00,
}

// rateAliases folds extractor categories into rate table entries.
var rateAliases = map[string]string{
	model.CargoADR:      "hazardous",
	model.CargoSpecial:  "fragile",
	model.CargoForestry: "general",
}

const (
	fuelPerKm        = 0.35
	tollFallbackKm   = 0.08
	insuranceRate    = 0.05
	insuranceMinimum = 50.0

	defaultDistanceKm = 1000.0
	avgSpeedKmh       = 80.0
	restStopEveryKm   = 500.0
	restStopHours     = 8.0
	baseServiceHours  = 2.0
	workHoursPerDay   = 10.0
)

// vehicleSpecs in ascending weight-capacity order. Selection takes the first
// class whose capacity covers the shipment.
var vehicleSpecs = []struct {
	maxWeightKg float64
	spec        model.VehicleSpec
}{
	{3500, model.VehicleSpec{Type: "van", WeightTons: 2.5, HeightM: 2.0, WidthM: 2.0, LengthM: 6.0, Axles: 2}},
	{12000, model.VehicleSpec{Type: "rigid", WeightTons: 3.5, HeightM: 2.5, WidthM: 2.5, LengthM: 12.0, Axles: 3}},
	{0, model.VehicleSpec{Type: "trailer", WeightTons: 4.0, HeightM: 2.5, WidthM: 2.5, LengthM: 16.5, Axles: 5}},
}

// cityPairKm holds curated road distances between major city pairs. Lookup
// is symmetric over folded names.
var cityPairKm = map[string]map[string]float64{
	"madrid": {
		"paris": 1270, "berlin": 1870, "roma": 1365, "varsovia": 2447,
		"barcelona": 625, "valencia": 355, "sevilla": 535,
	},
	"barcelona": {
		"paris": 833, "milan": 725, "munich": 1050, "valencia": 350,
	},
	"valencia": {"roma": 1245, "napoles": 1180},
	"sevilla":  {"lisboa": 395},
	"bilbao":   {"paris": 570},
	"paris":    {"berlin": 1055, "roma": 1420, "amsterdam": 515},
	"berlin":   {"varsovia": 575},
	"milan":    {"munich": 440},
	"roma":     {"napoles": 225},
}

// countryKm are fallback distances from central Spain to each destination
// country when no city pair is curated.
var countryKm = map[string]float64{
	"francia":         800,
	"alemania":        1200,
	"italia":          1100,
	"paises bajos":    1300,
	"belgica":         1000,
	"suiza":           1000,
	"austria":         1400,
	"portugal":        400,
	"republica checa": 1600,
	"polonia":         1800,
}

// countryCodes maps destination country names to ISO codes used on alerts
// and restriction lookups.
var countryCodes = map[string]string{
	"francia":         "FR",
	"alemania":        "DE",
	"italia":          "IT",
	"paises bajos":    "NL",
	"belgica":         "BE",
	"suiza":           "CH",
	"austria":         "AT",
	"portugal":        "PT",
	"republica checa": "CZ",
	"polonia":         "PL",
}

// cityCountry maps folded destination city names to their country.
var cityCountry = map[string]string{
	"paris": "francia", "lyon": "francia", "marsella": "francia",
	"niza": "francia", "toulouse": "francia", "burdeos": "francia",
	"berlin": "alemania", "munich": "alemania", "hamburgo": "alemania",
	"frankfurt": "alemania", "colonia": "alemania", "stuttgart": "alemania",
	"roma": "italia", "milan": "italia", "napoles": "italia",
	"turin": "italia", "florencia": "italia", "venecia": "italia",
	"amsterdam": "paises bajos", "roterdam": "paises bajos",
	"utrecht": "paises bajos", "la haya": "paises bajos",
	"bruselas": "belgica", "amberes": "belgica", "gante": "belgica",
	"brujas": "belgica",
	"zurich": "suiza", "ginebra": "suiza", "berna": "suiza",
	"basilea": "suiza",
	"viena":   "austria", "salzburgo": "austria", "innsbruck": "austria",
	"graz":   "austria",
	"lisboa": "portugal", "oporto": "portugal", "braga": "portugal",
	"coimbra": "portugal",
	"praga":   "republica checa", "brno": "republica checa",
	"ostrava":  "republica checa",
	"varsovia": "polonia", "cracovia": "polonia", "gdansk": "polonia",
	"wroclaw": "polonia",
}

// sundayBanCountries prohibit heavy-goods circulation on Sundays.
var sundayBanCountries = map[string]bool{"DE": true, "AT": true, "CH": true}

// TransportRate resolves the per-kg per-100-km rate for a cargo category,
// falling back to the general rate for unknown categories.
func TransportRate(cargoType string) float64 {
	key := cargoType
	if alias, ok := rateAliases[key]; ok {
		key = alias
	}
	if r, ok := cargoRates[key]; ok {
		return r
	}
	return cargoRates["general"]
}

// SelectVehicle picks the lightest vehicle class that can carry weightKg.
func SelectVehicle(weightKg float64) model.VehicleSpec {
	for _, v := range vehicleSpecs {
		if v.maxWeightKg > 0 && weightKg <= v.maxWeightKg {
			return v.spec
		}
	}
	return vehicleSpecs[len(vehicleSpecs)-1].spec
}
