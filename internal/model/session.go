// Package model defines the session and quote domain types shared across
// the quoting pipeline.
package model

import (
	"time"

	"github.com/google/uuid"
)

// FieldKey identifies a shipment attribute collected during a conversation.
type FieldKey string

const (
	FieldOrigin       FieldKey = "origin"
	FieldDestination  FieldKey = "destination"
	FieldWeightKg     FieldKey = "weight_kg"
	FieldVolumeM3     FieldKey = "volume_m3"
	FieldCargoType    FieldKey = "cargo_type"
	FieldServiceType  FieldKey = "service_type"
	FieldPickupDate   FieldKey = "pickup_date"
	FieldCompanyName  FieldKey = "company_name"
	FieldContactName  FieldKey = "contact_name"
	FieldEmail        FieldKey = "email"
	FieldPhone        FieldKey = "phone"
	FieldProfitMargin FieldKey = "profit_margin"
)

// RequiredFields is the ordered list of fields needed before pricing can run.
// The order drives which missing field is asked about next.
var RequiredFields = []FieldKey{
	FieldOrigin,
	FieldDestination,
	FieldWeightKg,
	FieldVolumeM3,
	FieldCargoType,
	FieldPickupDate,
	FieldServiceType,
}

// knownFields is the full fixed schema: required plus optional client fields.
var knownFields = map[FieldKey]bool{
	FieldOrigin:       true,
	FieldDestination:  true,
	FieldWeightKg:     true,
	FieldVolumeM3:     true,
	FieldCargoType:    true,
	FieldServiceType:  true,
	FieldPickupDate:   true,
	FieldCompanyName:  true,
	FieldContactName:  true,
	FieldEmail:        true,
	FieldPhone:        true,
	FieldProfitMargin: true,
}

// KnownField reports whether k belongs to the fixed field schema.
func KnownField(k FieldKey) bool { return knownFields[k] }

// FieldSet maps field keys to their extracted values. Values are float64
// for numeric fields and string for everything else.
type FieldSet map[FieldKey]any

// Merge copies keys from in into fs. Keys outside the fixed schema are
// dropped; keys present in both take the incoming value. Merging the same
// set twice is a no-op.
func (fs FieldSet) Merge(in FieldSet) {
	for k, v := range in {
		if !knownFields[k] {
			continue
		}
		fs[k] = v
	}
}

// Has reports whether k is set to a truthy value. Zero numbers and empty
// strings count as missing even when explicitly set; this mirrors the
// completion semantics the conversational flow depends on.
func (fs FieldSet) Has(k FieldKey) bool {
	return truthy(fs[k])
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case bool:
		return t
	default:
		return true
	}
}

// Missing returns the required fields not yet set to truthy values, in
// the canonical ask order.
func (fs FieldSet) Missing() []FieldKey {
	var missing []FieldKey
	for _, k := range RequiredFields {
		if !fs.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// IsComplete reports whether every required field carries a truthy value.
func (fs FieldSet) IsComplete() bool {
	return len(fs.Missing()) == 0
}

// String returns the value of k as a string, or "" when absent or non-string.
func (fs FieldSet) String(k FieldKey) string {
	s, _ := fs[k].(string)
	return s
}

// Float returns the value of k as a float64, or 0 when absent. Integer
// values (as deserialized from JSON stores) are widened.
func (fs FieldSet) Float(k FieldKey) float64 {
	switch t := fs[k].(type) {
	case float64:
		return t
	case int:
		return float64(t)
	}
	return 0
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one conversational exchange entry. History is append-only.
type Turn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// SessionStatus tracks where a conversation is in the quoting lifecycle.
type SessionStatus string

const (
	StatusCollecting SessionStatus = "collecting"
	StatusQuoting    SessionStatus = "quoting"
	StatusCompleted  SessionStatus = "completed"
	StatusError      SessionStatus = "error"
)

// Session is one ongoing quote-collection conversation.
type Session struct {
	ID        string        `json:"id"`
	Fields    FieldSet      `json:"fields"`
	History   []Turn        `json:"history"`
	Status    SessionStatus `json:"status"`
	QuoteID   string        `json:"quote_id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewSession creates an empty collecting session. When id is empty a
// fresh UUID is assigned.
func NewSession(id string) *Session {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Fields:    FieldSet{},
		Status:    StatusCollecting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendTurn records a conversation turn and bumps updated_at.
func (s *Session) AppendTurn(role Role, text string) {
	now := time.Now().UTC()
	s.History = append(s.History, Turn{Role: role, Text: text, At: now})
	s.UpdatedAt = now
}

// LastAssistantText returns the most recent assistant turn, or "" for a
// fresh session. The extractor uses it to disambiguate bare answers.
func (s *Session) LastAssistantText() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleAssistant {
			return s.History[i].Text
		}
	}
	return ""
}

// MergeFields merges extracted values into the session and bumps updated_at.
func (s *Session) MergeFields(in FieldSet) {
	if s.Fields == nil {
		s.Fields = FieldSet{}
	}
	s.Fields.Merge(in)
	s.UpdatedAt = time.Now().UTC()
}
