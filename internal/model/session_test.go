package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDropsUnknownKeys(t *testing.T) {
	t.Parallel()

	fs := FieldSet{}
	fs.Merge(FieldSet{
		FieldOrigin:          "Madrid",
		FieldKey("injected"): "nope",
	})

	assert.Equal(t, "Madrid", fs.String(FieldOrigin))
	_, ok := fs[FieldKey("injected")]
	assert.False(t, ok)
}

func TestMergeOverwritesAndIsIdempotent(t *testing.T) {
	t.Parallel()

	fs := FieldSet{FieldWeightKg: 1000.0}
	in := FieldSet{FieldWeightKg: 5000.0, FieldOrigin: "Sevilla"}

	fs.Merge(in)
	assert.Equal(t, 5000.0, fs.Float(FieldWeightKg))

	before := len(fs)
	fs.Merge(in)
	assert.Equal(t, 5000.0, fs.Float(FieldWeightKg))
	assert.Len(t, fs, before)
}

func TestHasTreatsZeroValuesAsMissing(t *testing.T) {
	t.Parallel()

	fs := FieldSet{
		FieldOrigin:   "",
		FieldWeightKg: 0.0,
		FieldVolumeM3: 12.5,
	}

	assert.False(t, fs.Has(FieldOrigin))
	assert.False(t, fs.Has(FieldWeightKg))
	assert.False(t, fs.Has(FieldDestination))
	assert.True(t, fs.Has(FieldVolumeM3))
}

func TestMissingFollowsAskOrder(t *testing.T) {
	t.Parallel()

	fs := FieldSet{
		FieldDestination: "París",
		FieldCargoType:   "general",
	}

	assert.Equal(t, []FieldKey{
		FieldOrigin,
		FieldWeightKg,
		FieldVolumeM3,
		FieldPickupDate,
		FieldServiceType,
	}, fs.Missing())
	assert.False(t, fs.IsComplete())
}

func TestIsComplete(t *testing.T) {
	t.Parallel()

	fs := FieldSet{}
	for _, k := range RequiredFields {
		fs[k] = "x"
	}
	fs[FieldWeightKg] = 1500.0
	fs[FieldVolumeM3] = 10.0

	assert.True(t, fs.IsComplete())
	assert.Empty(t, fs.Missing())
}

func TestFloatWidensInt(t *testing.T) {
	t.Parallel()

	fs := FieldSet{FieldWeightKg: 1500}
	assert.Equal(t, 1500.0, fs.Float(FieldWeightKg))
	assert.Zero(t, fs.Float(FieldVolumeM3))
}

func TestNewSessionAssignsID(t *testing.T) {
	t.Parallel()

	s := NewSession("")
	require.NotEmpty(t, s.ID)
	assert.Equal(t, StatusCollecting, s.Status)
	assert.NotNil(t, s.Fields)

	named := NewSession("sess-7")
	assert.Equal(t, "sess-7", named.ID)
}

func TestLastAssistantText(t *testing.T) {
	t.Parallel()

	s := NewSession("")
	assert.Empty(t, s.LastAssistantText())

	s.AppendTurn(RoleUser, "hola")
	s.AppendTurn(RoleAssistant, "¿Cuál es la ciudad de origen?")
	s.AppendTurn(RoleUser, "Madrid")

	assert.Equal(t, "¿Cuál es la ciudad de origen?", s.LastAssistantText())
	require.Len(t, s.History, 3)
}

func TestCountCritical(t *testing.T) {
	t.Parallel()

	alerts := []Alert{
		{Severity: SeverityCritical, Country: "Alemania"},
		{Severity: SeverityWarning, Country: "Francia"},
		{Severity: SeverityCritical, Country: "Suiza"},
	}
	assert.Equal(t, 2, CountCritical(alerts))
	assert.Zero(t, CountCritical(nil))
}
