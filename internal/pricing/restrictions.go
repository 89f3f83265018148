package pricing

import (
	"fmt"
	"time"

	"github.com/stock-logistic/quoting-cli/internal/model"
)

// countryNames renders ISO codes back to Spanish display names for alert
// messages.
var countryNames = map[string]string{
	"FR": "Francia",
	"DE": "Alemania",
	"IT": "Italia",
	"NL": "Países Bajos",
	"BE": "Bélgica",
	"CH": "Suiza",
	"AT": "Austria",
	"PT": "Portugal",
	"CZ": "República Checa",
	"PL": "Polonia",
}

// SundayBanAlerts emits one critical alert per transited country that bans
// heavy-goods traffic on Sundays, when the pickup date is a Sunday.
func SundayBanAlerts(countries []string, date time.Time) []model.Alert {
	if date.Weekday() != time.Sunday {
		return nil
	}
	var alerts []model.Alert
	for _, code := range countries {
		if !sundayBanCountries[code] {
			continue
		}
		name := countryNames[code]
		if name == "" {
			name = code
		}
		alerts = append(alerts, model.Alert{
			Severity: model.SeverityCritical,
			Country:  code,
			Message:  fmt.Sprintf("PROHIBIDA circulación camiones domingos en %s", name),
		})
	}
	return alerts
}
