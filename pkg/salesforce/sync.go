package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stock-logistic/quoting-cli/internal/model"
)

// defaultObjectName is the custom SObject holding freight quotes.
const defaultObjectName = "Freight_Quote__c"

// quoteRef is the external reference field carrying our quote ID.
const quoteRef = "Quote_Reference__c"

// QuoteSync upserts quote records into Salesforce. Syncing the same quote
// ID twice updates the existing record.
type QuoteSync struct {
	client Client
	object string
}

// SyncOption configures a QuoteSync.
type SyncOption func(*QuoteSync)

// WithObjectName overrides the target SObject API name.
func WithObjectName(name string) SyncOption {
	return func(s *QuoteSync) { s.object = name }
}

// NewQuoteSync creates a quote sync against the freight quote object.
func NewQuoteSync(client Client, opts ...SyncOption) *QuoteSync {
	s := &QuoteSync{client: client, object: defaultObjectName}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync upserts the quote and returns the Salesforce record ID.
func (s *QuoteSync) Sync(ctx context.Context, q *model.QuoteRecord) (string, error) {
	existing, err := s.findRecord(ctx, q.QuoteID)
	if err != nil {
		return "", err
	}

	fields := quoteFields(q)

	if existing != "" {
		if err := s.client.UpdateOne(ctx, s.object, existing, fields); err != nil {
			return "", eris.Wrap(err, fmt.Sprintf("sf: sync quote %s", q.QuoteID))
		}
		zap.L().Info("quote record updated",
			zap.String("quote_id", q.QuoteID),
			zap.String("record_id", existing),
		)
		return existing, nil
	}

	id, err := s.client.InsertOne(ctx, s.object, fields)
	if err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("sf: sync quote %s", q.QuoteID))
	}
	zap.L().Info("quote record created",
		zap.String("quote_id", q.QuoteID),
		zap.String("record_id", id),
	)
	return id, nil
}

// findRecord looks up an existing record by quote reference. Returns ""
// when the quote has not been synced yet.
func (s *QuoteSync) findRecord(ctx context.Context, quoteID string) (string, error) {
	soql := fmt.Sprintf(
		"SELECT Id FROM %s WHERE %s = '%s' LIMIT 1",
		s.object, quoteRef, escapeSoql(quoteID),
	)

	var records []struct {
		ID string `json:"Id" salesforce:"Id"`
	}
	if err := s.client.Query(ctx, soql, &records); err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("sf: find quote %s", quoteID))
	}
	if len(records) == 0 {
		return "", nil
	}
	return records[0].ID, nil
}

func quoteFields(q *model.QuoteRecord) map[string]any {
	validUntil := q.GeneratedAt.AddDate(0, 0, q.ValidityDays)

	return map[string]any{
		"Name":               q.QuoteID,
		quoteRef:             q.QuoteID,
		"Origin__c":          q.Route.Origin,
		"Destination__c":     q.Route.Destination,
		"Distance_Km__c":     q.Route.DistanceKm,
		"Weight_Kg__c":       q.Cargo.WeightKg,
		"Cargo_Type__c":      q.Cargo.CargoType,
		"Total_EUR__c":       q.Costs.Total,
		"Service_Level__c":   q.ServiceType,
		"Vehicle_Type__c":    q.Vehicle.Type,
		"Pickup_Date__c":     q.PickupDate,
		"Transit_Days__c":    q.Timing.EstimatedDays,
		"Critical_Alerts__c": q.CriticalAlerts,
		"Valid_Until__c":     validUntil.Format("2006-01-02"),
	}
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
