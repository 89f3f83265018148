// Package export renders quote records into the formats the commercial
// team consumes: an XLSX quote book, flat JSON documents, and uploads to
// the partner FTP drop.
package export

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/stock-logistic/quoting-cli/internal/model"
)

// workbookHeaders is the column order of the quote book sheet.
var workbookHeaders = []string{
	"Cotización", "Origen", "Destino", "Distancia km",
	"Peso kg", "Tipo mercancía", "Vehículo", "Servicio",
	"Transporte", "Combustible", "Peajes", "Seguro", "TOTAL EUR",
	"Días tránsito", "Recogida", "Alertas críticas", "Generada",
}

// WriteWorkbook writes the quotes to an XLSX file with one row per quote.
func WriteWorkbook(path string, quotes []*model.QuoteRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Cotizaciones")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range workbookHeaders {
		header.AddCell().Value = h
	}

	for _, q := range quotes {
		addQuoteRow(sheet, q)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}

func addQuoteRow(sheet *xlsx.Sheet, q *model.QuoteRecord) {
	row := sheet.AddRow()
	row.AddCell().Value = q.QuoteID
	row.AddCell().Value = q.Route.Origin
	row.AddCell().Value = q.Route.Destination
	row.AddCell().SetFloat(q.Route.DistanceKm)
	row.AddCell().SetFloat(q.Cargo.WeightKg)
	row.AddCell().Value = q.Cargo.CargoType
	row.AddCell().Value = q.Vehicle.Type
	row.AddCell().Value = q.ServiceType
	row.AddCell().SetFloat(q.Costs.Transport)
	row.AddCell().SetFloat(q.Costs.Fuel)
	row.AddCell().SetFloat(q.Costs.Tolls)
	row.AddCell().SetFloat(q.Costs.Insurance)
	row.AddCell().SetFloat(q.Costs.Total)
	row.AddCell().SetInt(q.Timing.EstimatedDays)
	row.AddCell().Value = q.PickupDate
	row.AddCell().SetInt(q.CriticalAlerts)
	row.AddCell().Value = q.GeneratedAt.Format("2006-01-02 15:04")
}

// WorkbookName builds the default file name for a quote book export.
func WorkbookName(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return "cotizaciones.xlsx"
	}
	return fmt.Sprintf("cotizaciones-%s.xlsx", date)
}
