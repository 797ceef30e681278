package terms

import (
	"encoding/json"
	"fmt"
	"os"
)

// Tables are the lookup tables behind a Normalizer. Keys are matched
// exactly first, then case-insensitively after trimming.
type Tables struct {
	Countries   map[string]string `json:"countries"`
	DosageForms map[string]string `json:"dosage_forms"`
	Procedures  map[string]string `json:"procedures"`
	LegalForms  []string          `json:"legal_forms"`
}

// Default returns the built-in Latvian to English tables.
func Default() Tables {
	return Tables{
		Countries: map[string]string{
			"Latvija":       "Latvia",
			"Lietuva":       "Lithuania",
			"Igaunija":      "Estonia",
			"Vācija":        "Germany",
			"Francija":      "France",
			"Itālija":       "Italy",
			"Spānija":       "Spain",
			"Polija":        "Poland",
			"Somija":        "Finland",
			"Zviedrija":     "Sweden",
			"Dānija":        "Denmark",
			"Norvēģija":     "Norway",
			"Nīderlande":    "Netherlands",
			"Beļģija":       "Belgium",
			"Austrija":      "Austria",
			"Šveice":        "Switzerland",
			"Čehija":        "Czech Republic",
			"Slovākija":     "Slovakia",
			"Slovēnija":     "Slovenia",
			"Ungārija":      "Hungary",
			"Horvātija":     "Croatia",
			"Rumānija":      "Romania",
			"Bulgārija":     "Bulgaria",
			"Grieķija":      "Greece",
			"Portugāle":     "Portugal",
			"Īrija":         "Ireland",
			"Islande":       "Iceland",
			"Malta":         "Malta",
			"Kipra":         "Cyprus",
			"Lielbritānija": "United Kingdom",
			"Kanāda":        "Canada",
			"Indija":        "India",
			"Ķīna":          "China",
			"Japāna":        "Japan",
			"Izraēla":       "Israel",
			"Turcija":       "Turkey",
			"Ukraina":       "Ukraine",

			"Apvienotā Karaliste":         "United Kingdom",
			"Amerikas Savienotās Valstis": "United States",

			"ASV": "United States",
			"LV":  "Latvia",
			"LT":  "Lithuania",
			"EE":  "Estonia",
			"DE":  "Germany",
			"PL":  "Poland",
		},
		DosageForms: map[string]string{
			"apvalkotās tabletes":         "film-coated tablets",
			"apvalkotā tablete":           "film-coated tablet",
			"ilgstošās darbības tabletes": "prolonged-release tablets",
			"cietās kapsulas":             "hard capsules",
			"mīkstās kapsulas":            "soft capsules",
			"šķīdums injekcijām":          "solution for injection",

			"pulveris injekciju šķīduma pagatavošanai": "powder for solution for injection",

			"tabletes": "tablets",
			"tablete":  "tablet",
			"kapsulas": "capsules",
			"šķīdums":  "solution",
			"pulveris": "powder",
			"gels":     "gel",
			"aerosols": "aerosol",
			"krēms":    "cream",
			"ziede":    "ointment",
		},
		Procedures: map[string]string{
			"NP":  "National procedure",
			"SAP": "Mutual recognition procedure",
			"MRP": "Mutual recognition procedure",
			"DCP": "Decentralised procedure",
			"DEC": "Decentralised procedure",
			"CP":  "Centralised procedure",
			"CAP": "Centralised procedure",
			"PI":  "Parallel import",

			"Nacionālā procedūra":              "National procedure",
			"Savstarpējās atzīšanas procedūra": "Mutual recognition procedure",
			"Decentralizētā procedūra":         "Decentralised procedure",
			"Centralizētā procedūra":           "Centralised procedure",
			"Paralēlais imports":               "Parallel import",
		},
		LegalForms: []string{
			"Sabiedrība ar ierobežotu atbildību",
			"Akciju sabiedrība",
			"Individuālais komersants",
			"SIA", "AS", "A/S", "SE", "IK", "UAB", "AB", "OÜ", "OU",
			"Ltd", "Ltd.", "Limited", "LLC", "Inc", "Inc.", "GmbH", "AG", "S.A.", "Sp. z o.o.", "B.V.", "Oy",
		},
	}
}

// LoadTables reads a JSON file and merges it over Default. Entries in the
// file win over built-in ones; legal forms are appended.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read terms file %s: %w", path, err)
	}

	var override Tables
	if err := json.Unmarshal(data, &override); err != nil {
		return Tables{}, fmt.Errorf("decode terms file %s: %w", path, err)
	}

	t := Default()
	mergeInto(t.Countries, override.Countries)
	mergeInto(t.DosageForms, override.DosageForms)
	mergeInto(t.Procedures, override.Procedures)
	t.LegalForms = append(t.LegalForms, override.LegalForms...)
	return t, nil
}

func mergeInto(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}
