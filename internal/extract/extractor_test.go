package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stock-logistic/quoting-cli/internal/model"
)

func TestExtractFullMessage(t *testing.T) {
	t.Parallel()
	got := Extract("Necesito enviar 1500 kg desde Madrid hasta París, carga general, servicio estándar, recogida el 15/10/2026", "")

	assert.Equal(t, 1500.0, got.Float(model.FieldWeightKg))
	assert.Equal(t, "Madrid", got.String(model.FieldOrigin))
	assert.Equal(t, "París", got.String(model.FieldDestination))
	assert.Equal(t, model.CargoGeneral, got.String(model.FieldCargoType))
	assert.Equal(t, string(model.TierStandard), got.String(model.FieldServiceType))
	assert.Equal(t, "2026-10-15", got.String(model.FieldPickupDate))
}

func TestExtractWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		text         string
		lastQuestion string
		want         float64
		found        bool
	}{
		{name: "kilograms", text: "son 1500 kg de mercancia", want: 1500, found: true},
		{name: "kilos word", text: "unos 800 kilos", want: 800, found: true},
		{name: "tons multiply", text: "2 toneladas de palets", want: 2000, found: true},
		{name: "decimal tons", text: "1.5 ton", want: 1500, found: true},
		{name: "peso keyword", text: "peso: 950", want: 950, found: true},
		{name: "bare number with weight context", text: "1500", lastQuestion: "¿Cuál es el peso de la carga?", want: 1500, found: true},
		{name: "bare number without context", text: "1500", lastQuestion: "¿Desde qué ciudad?", found: false},
		{name: "no weight", text: "quiero un envio a Roma", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Extract(tt.text, tt.lastQuestion)
			if !tt.found {
				assert.False(t, got.Has(model.FieldWeightKg))
				return
			}
			assert.InDelta(t, tt.want, got.Float(model.FieldWeightKg), 0.001)
		})
	}
}

func TestExtractVolume(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		text         string
		lastQuestion string
		want         float64
		found        bool
	}{
		{name: "m3 unit", text: "ocupa 12 m3", want: 12, found: true},
		{name: "cubic meters words", text: "8 metros cúbicos", want: 8, found: true},
		{name: "volumen keyword", text: "volumen: 15.5", want: 15.5, found: true},
		{name: "dimensions product", text: "mide 2x3x1.5", want: 9, found: true},
		{name: "spaced dimensions", text: "dimensiones: 2 3 1.5", want: 9, found: true},
		{name: "bare number with volume context", text: "12", lastQuestion: "¿Qué volumen ocupa la carga en metros cúbicos?", want: 12, found: true},
		{name: "bare number without context", text: "12", lastQuestion: "¿Desde qué ciudad?", found: false},
		{name: "absent", text: "sin medidas todavía", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Extract(tt.text, tt.lastQuestion)
			if !tt.found {
				assert.False(t, got.Has(model.FieldVolumeM3))
				return
			}
			assert.InDelta(t, tt.want, got.Float(model.FieldVolumeM3), 0.001)
		})
	}
}

func TestExtractCities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		text        string
		origin      string
		destination string
	}{
		{name: "desde hasta", text: "desde Madrid hasta París", origin: "Madrid", destination: "París"},
		{name: "accent free alias", text: "envio de Sevilla a Munich", origin: "Sevilla", destination: "Múnich"},
		{name: "english alias", text: "salida Barcelona, llegada Bordeaux", origin: "Barcelona", destination: "Burdeos"},
		{name: "origin only", text: "salgo desde Bilbao", origin: "Bilbao"},
		{name: "destination only", text: "lo llevamos hasta Varsovia", destination: "Varsovia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Extract(tt.text, "")
			assert.Equal(t, tt.origin, got.String(model.FieldOrigin))
			assert.Equal(t, tt.destination, got.String(model.FieldDestination))
		})
	}
}

func TestExtractCargoAndService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		text         string
		lastQuestion string
		cargo        string
		service      string
	}{
		{name: "general cargo", text: "carga general", cargo: model.CargoGeneral},
		{name: "general from mercancia", text: "mercancía general", cargo: model.CargoGeneral},
		{name: "standard service is not a cargo", text: "servicio estándar", service: string(model.TierStandard)},
		{
			name: "bare general after cargo question", text: "general",
			lastQuestion: "¿Qué tipo de carga es? (general, forestal, ADR, refrigerada, especial)",
			cargo:        model.CargoGeneral,
		},
		{name: "forestry from madera", text: "es madera tratada", cargo: model.CargoForestry},
		{name: "adr from quimicos", text: "productos químicos", cargo: model.CargoADR},
		{name: "refrigerated", text: "mercancía refrigerada", cargo: model.CargoRefrigerated},
		{name: "special from fragil", text: "material frágil", cargo: model.CargoSpecial},
		{name: "express service", text: "lo necesito urgente", service: string(model.TierExpress)},
		{name: "economic service", text: "lo más barato posible", service: string(model.TierEconomic)},
		{
			name: "bare tier after service question", text: "express",
			lastQuestion: "¿Qué tipo de servicio prefiere?", service: string(model.TierExpress),
		},
		{name: "bare tier without context keeps express keyword", text: "express", service: string(model.TierExpress)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Extract(tt.text, tt.lastQuestion)
			assert.Equal(t, tt.cargo, got.String(model.FieldCargoType))
			assert.Equal(t, tt.service, got.String(model.FieldServiceType))
		})
	}
}

func TestExtractContactDetails(t *testing.T) {
	t.Parallel()

	t.Run("email", func(t *testing.T) {
		t.Parallel()
		got := Extract("mi correo es ana.lopez@transportes.es", "")
		assert.Equal(t, "ana.lopez@transportes.es", got.String(model.FieldEmail))
	})

	t.Run("company", func(t *testing.T) {
		t.Parallel()
		got := Extract("es para la empresa Maderas Del Norte, gracias", "")
		assert.Equal(t, "Maderas Del Norte", got.String(model.FieldCompanyName))
	})

	t.Run("phone needs nine digits", func(t *testing.T) {
		t.Parallel()
		got := Extract("llámame al +34 612 345 678", "")
		assert.Equal(t, "+34 612 345 678", got.String(model.FieldPhone))

		got = Extract("ext 12 345", "")
		assert.False(t, got.Has(model.FieldPhone))
	})

	t.Run("contact name", func(t *testing.T) {
		t.Parallel()
		got := Extract("soy Carlos Fernández", "")
		assert.Equal(t, "Carlos Fernández", got.String(model.FieldContactName))
	})

	t.Run("city is not a name", func(t *testing.T) {
		t.Parallel()
		got := Extract("salimos de Las Palmas", "")
		assert.False(t, got.Has(model.FieldContactName))
	})

	t.Run("no name near company mention", func(t *testing.T) {
		t.Parallel()
		got := Extract("la empresa Acme Global", "")
		assert.False(t, got.Has(model.FieldContactName))
	})

	t.Run("margin percentage", func(t *testing.T) {
		t.Parallel()
		got := Extract("aplicar margen: 12.5%", "")
		assert.Equal(t, 12.5, got.Float(model.FieldProfitMargin))
	})
}

func TestExtractDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{name: "dmy slashes", text: "recogida el 5/3/2026", want: "2026-03-05", found: true},
		{name: "dmy dashes", text: "el 15-10-2026", want: "2026-10-15", found: true},
		{name: "iso", text: "fecha 2026-10-15", want: "2026-10-15", found: true},
		{name: "impossible date dropped", text: "el 31/2/2026", found: false},
		{name: "month out of range", text: "el 10/13/2026", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Extract(tt.text, "")
			if !tt.found {
				assert.False(t, got.Has(model.FieldPickupDate))
				return
			}
			require.True(t, got.Has(model.FieldPickupDate))
			assert.Equal(t, tt.want, got.String(model.FieldPickupDate))
		})
	}
}

func TestFold(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "paris", fold("París"))
	assert.Equal(t, "munich", fold("MÚNICH"))
	assert.Equal(t, "camion espanol", fold("camión español"))
}
