package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stock-logistic/quoting-cli/internal/model"
)

// Property names in the quote log database. Referencia carries the quote
// ID as rich_text so pages can be looked up by filter; the title holds
// the human-readable route.
const (
	propTitle     = "Cotización"
	propReference = "Referencia"
	propTotal     = "Total EUR"
	propService   = "Servicio"
	propVehicle   = "Vehículo"
	propPickup    = "Recogida"
	propDays      = "Días tránsito"
	propAlerts    = "Alertas críticas"
	propSession   = "Sesión"
)

// QuoteLog writes quote records to a Notion database, one page per quote.
// Publishing the same quote ID twice updates the existing page.
type QuoteLog struct {
	client Client
	dbID   string
}

// NewQuoteLog creates a quote log bound to a Notion database.
func NewQuoteLog(client Client, dbID string) *QuoteLog {
	return &QuoteLog{client: client, dbID: dbID}
}

// Publish upserts the quote as a page in the log database and returns the
// page ID.
func (l *QuoteLog) Publish(ctx context.Context, q *model.QuoteRecord) (string, error) {
	pageID, err := l.findPage(ctx, q.QuoteID)
	if err != nil {
		return "", err
	}

	props := quoteProperties(q)

	if pageID != "" {
		page, err := l.client.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{
			Properties: props,
		})
		if err != nil {
			return "", eris.Wrap(err, fmt.Sprintf("notion: update quote %s", q.QuoteID))
		}
		zap.L().Info("quote page updated",
			zap.String("quote_id", q.QuoteID),
			zap.String("page_id", string(page.ID)),
		)
		return string(page.ID), nil
	}

	page, err := l.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(l.dbID),
		},
		Properties: props,
	})
	if err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("notion: create quote %s", q.QuoteID))
	}
	zap.L().Info("quote page created",
		zap.String("quote_id", q.QuoteID),
		zap.String("page_id", string(page.ID)),
	)
	return string(page.ID), nil
}

// findPage looks up an existing page for the quote ID. Returns "" when the
// quote has not been published yet.
func (l *QuoteLog) findPage(ctx context.Context, quoteID string) (string, error) {
	resp, err := l.client.QueryDatabase(ctx, l.dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: propReference,
			RichText: &notionapi.TextFilterCondition{
				Equals: quoteID,
			},
		},
		PageSize: 1,
	})
	if err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("notion: find quote %s", quoteID))
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return string(resp.Results[0].ID), nil
}

func quoteProperties(q *model.QuoteRecord) notionapi.Properties {
	title := fmt.Sprintf("%s → %s", q.Route.Origin, q.Route.Destination)

	props := notionapi.Properties{
		propTitle: notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: title}},
			},
		},
		propReference: richText(q.QuoteID),
		propSession:   richText(q.SessionID),
		propTotal: notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: q.Costs.Total,
		},
		propDays: notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(q.Timing.EstimatedDays),
		},
		propAlerts: notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(q.CriticalAlerts),
		},
		propService: notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: q.ServiceType},
		},
		propVehicle: notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: q.Vehicle.Type},
		},
		propPickup: richText(q.PickupDate),
	}

	return props
}

func richText(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type: notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
		},
	}
}
