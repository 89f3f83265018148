package notion

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stock-logistic/quoting-cli/internal/model"
)

type fakeNotion struct {
	queryResp  *notionapi.DatabaseQueryResponse
	queryErr   error
	created    *notionapi.PageCreateRequest
	updated    *notionapi.PageUpdateRequest
	updatedID  string
	lastFilter *notionapi.DatabaseQueryRequest
}

func (f *fakeNotion) QueryDatabase(_ context.Context, _ string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	f.lastFilter = req
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.queryResp != nil {
		return f.queryResp, nil
	}
	return &notionapi.DatabaseQueryResponse{}, nil
}

func (f *fakeNotion) CreatePage(_ context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	f.created = req
	return &notionapi.Page{ID: "page-new"}, nil
}

func (f *fakeNotion) UpdatePage(_ context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	f.updatedID = pageID
	f.updated = req
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func testRecord() *model.QuoteRecord {
	return &model.QuoteRecord{
		QuoteID:        "SL-20261001-1500",
		SessionID:      "sess-1",
		Route:          model.Route{Origin: "Madrid", Destination: "París", DistanceKm: 1270},
		Costs:          model.CostBreakdown{Total: 2145.10},
		Timing:         model.Timing{EstimatedDays: 4},
		CriticalAlerts: 1,
		Vehicle:        model.VehicleSpec{Type: "trailer"},
		PickupDate:     "2026-10-15",
		ServiceType:    "standard",
		ValidityDays:   7,
		GeneratedAt:    time.Now(),
	}
}

func TestPublishCreates(t *testing.T) {
	t.Parallel()

	fake := &fakeNotion{}
	log := NewQuoteLog(fake, "db-1")

	pageID, err := log.Publish(context.Background(), testRecord())
	require.NoError(t, err)
	assert.Equal(t, "page-new", pageID)

	require.NotNil(t, fake.created)
	assert.Equal(t, notionapi.DatabaseID("db-1"), fake.created.Parent.DatabaseID)

	title, ok := fake.created.Properties[propTitle].(notionapi.TitleProperty)
	require.True(t, ok)
	require.Len(t, title.Title, 1)
	assert.Equal(t, "Madrid → París", title.Title[0].Text.Content)

	ref, ok := fake.created.Properties[propReference].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "SL-20261001-1500", ref.RichText[0].Text.Content)

	total, ok := fake.created.Properties[propTotal].(notionapi.NumberProperty)
	require.True(t, ok)
	assert.Equal(t, 2145.10, total.Number)

	// The lookup filtered on the reference property.
	require.NotNil(t, fake.lastFilter)
	pf, ok := fake.lastFilter.Filter.(notionapi.PropertyFilter)
	require.True(t, ok)
	assert.Equal(t, propReference, pf.Property)
}

func TestPublishUpdatesExisting(t *testing.T) {
	t.Parallel()

	fake := &fakeNotion{
		queryResp: &notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{{ID: "page-old"}},
		},
	}
	log := NewQuoteLog(fake, "db-1")

	pageID, err := log.Publish(context.Background(), testRecord())
	require.NoError(t, err)
	assert.Equal(t, "page-old", pageID)
	assert.Equal(t, "page-old", fake.updatedID)
	require.NotNil(t, fake.updated)
	assert.Nil(t, fake.created)

	alerts, ok := fake.updated.Properties[propAlerts].(notionapi.NumberProperty)
	require.True(t, ok)
	assert.Equal(t, float64(1), alerts.Number)
}

func TestPublishQueryError(t *testing.T) {
	t.Parallel()

	fake := &fakeNotion{queryErr: eris.New("boom")}
	log := NewQuoteLog(fake, "db-1")

	_, err := log.Publish(context.Background(), testRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find quote")
}
