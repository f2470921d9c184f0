package llm

import (
	"strconv"
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/constants"
)

// MaxPromptText caps the document text sent in one request.
const MaxPromptText = 60000

// BuildSystemPrompt composes the extraction rules, the category enum and the
// expected response format.
func BuildSystemPrompt(req DraftRequest) string {
	cats := req.Categories
	if len(cats) == 0 {
		cats = constants.AsStringSlice()
	}
	quoted := make([]string, len(cats))
	for i, c := range cats {
		quoted[i] = strconv.Quote(c)
	}

	currency := strings.TrimSpace(req.DefaultCurrency)
	if currency == "" {
		currency = constants.DefaultCurrency
	}

	parts := []string{
		"Tu es un expert en extraction de données de documents BTP (Devis Quantitatif Estimatif - DQE).",
		"Extrais TOUS les postes numérotés du document et retourne UNIQUEMENT du JSON conforme au schéma fourni.",
		"Catégories valides (utilise exactement ces noms): [" + strings.Join(quoted, ", ") + "].",
		"Règles:",
		"1. Chaque ligne numérotée (ex: 1.1, 2.3.1) est un élément distinct.",
		"2. Indique le lot ou chapitre parent de chaque élément (lot_numero, lot_nom).",
		"3. Détecte le niveau du bâtiment (Sous-sol, RDC, R+1, R+2...).",
		"4. Relève dosage (ex: 350 kg/m³), dimensions (ex: 20x20x40) et épaisseur (ex: 15 cm).",
		"5. Format monétaire: espaces = milliers, virgule = décimales. Les montants sont des nombres.",
		"6. Ignore les totaux, sous-totaux et titres de section sans prix.",
		"Devise par défaut: " + currency + ".",
		"Format: {\"nb_pages\": n, \"total_general\": montant, \"devise\": \"" + currency + "\", " +
			"\"elements\": [{\"numero\", \"designation\", \"categorie\", \"sous_categorie\", \"unite\", " +
			"\"quantite\", \"prix_unitaire\", \"prix_total\", \"lot_numero\", \"lot_nom\", \"niveau\", " +
			"\"dosage\", \"dimensions\", \"epaisseur\"}], \"lots\": [{\"numero\", \"nom\", \"total\"}]}.",
		"Omets les champs absents plutôt que de renvoyer null.",
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt wraps the document text, truncated to MaxPromptText bytes on
// a rune boundary.
func BuildUserPrompt(req DraftRequest) string {
	var b strings.Builder
	b.WriteString("Fichier: ")
	b.WriteString(req.FileName)
	if req.Pages > 0 {
		b.WriteString("\nPages: ")
		b.WriteString(strconv.Itoa(req.Pages))
	}
	b.WriteString("\n\nTexte du document:\n")
	b.WriteString(truncateText(req.Text, MaxPromptText))
	return b.String()
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
