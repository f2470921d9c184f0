package attributes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDallage(t *testing.T) {
	got := New(nil).Extract("Dallage en béton dosé à 350 kg/m³, ép. 15 cm, 20x20")

	assert.Equal(t, "350 kg/m³", got.Dosage)
	assert.Contains(t, got.Thickness, "15")
	assert.Equal(t, "20x20", got.Dimensions)
}

func TestDosagePhrasings(t *testing.T) {
	e := New(nil)
	assert.Equal(t, "350 kg/m³", e.Dosage("Béton dosé à 350kg/m³ pour semelles"))
	assert.Equal(t, "300 kg/m³", e.Dosage("Béton, dosage : 300"))
	assert.Equal(t, "250 kg/m³", e.Dosage("béton dose a 250"))
	assert.Equal(t, "400 kg/m³", e.Dosage("mortier 400 KG/M3"))
	assert.Empty(t, e.Dosage("Peinture glycéro"))
}

func TestDimensionsOrder(t *testing.T) {
	e := New(nil)
	assert.Equal(t, "20x20x40", e.Dimensions("Agglos 20x20x40"))
	assert.Equal(t, "15 X 20", e.Dimensions("Poteau 15 X 20"))
	assert.Equal(t, "Ø12", e.Dimensions("Acier HA Ø12"))
	assert.Equal(t, "D 40", e.Dimensions("Tube PVC D 40"))
	assert.Equal(t, "50mm", e.Dimensions("Isolant 50mm"))
	assert.Empty(t, e.Dimensions("Nettoyage de fin de chantier"))
}

func TestThickness(t *testing.T) {
	e := New(nil)
	assert.Equal(t, "épaisseur 10 cm", e.Thickness("Chape épaisseur 10 cm"))
	assert.Equal(t, "12 cm d'épaisseur", e.Thickness("Dalle de 12 cm d'épaisseur"))
	assert.Equal(t, "e=20cm", e.Thickness("Voile e=20cm"))
	assert.Empty(t, e.Thickness("Porte isoplane"))
}

func TestLevelFirstPatternWins(t *testing.T) {
	e := New(nil)
	tests := map[string]string{
		"Maçonnerie sous-sol":            "Sous-sol",
		"Carrelage RDC":                  "RDC",
		"Dalle haute du rez-de-chaussée": "RDC",
		"Cloisons R+1":                   "R+1",
		"Enduits 2ème étage":             "R+2",
		"Plafonds niveau 3":              "R+3",
		"Etanchéité toiture terrasse":    "Toiture",
		"Sous-sol et toiture":            "Sous-sol",
		"Fourniture de portes isoplanes": "",
	}
	for in, want := range tests {
		assert.Equal(t, want, e.Level(in), in)
	}
}
