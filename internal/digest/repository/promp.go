package repository

import (
	"encoding/json"
	"fmt"

	"golang-market-digest/internal/entity"
)

// BuildExtractSentimentPrompt builds the classification prompt for one
// article. Free-form text is requested in Swedish, matching the feeds.
func BuildExtractSentimentPrompt(article entity.Article) string {
	return fmt.Sprintf(`Du är en finansanalytiker som extraherar bolag och sentiment ur nyhetstexter. Returnera ENDAST JSON som följer schemat nedan. Svenska i friformstext.

Schema:
{
  "extractions": [
    {
      "company": "<string - obligatoriskt>",
      "ticker": "<string - valfritt>",
      "exchange_hint": "<string - valfritt>",
      "stance": "positive | negative | neutral",
      "advice_type": "buy | sell | hold | none",
      "confidence": <float 0.0-1.0>,
      "evidence": "<string - obligatoriskt, motivering på svenska>"
    }
  ]
}

Regler:
- "stance" och "company" är obligatoriska för varje extraktion.
- "evidence" är obligatoriskt och får inte vara tomt.
- Om artikeln inte nämner något bolag, returnera {"extractions": []}.
- Inga andra fält än de i schemat.

Artikel:
Källa: %s
URL: %s
Publicerad: %s
Titel: %s
Ingress: %s
Text: %s

Svaret får endast innehålla JSON.
`, article.Source, article.URL, article.PublishedAt, article.Title, article.Snippet, article.FullText)
}

type reportPromptData struct {
	BySecurity []entity.AggregateRow `json:"by_security"`
	Examples   []entity.Extraction   `json:"examples"`
}

// BuildMarketReportPrompt builds the narrative report prompt from the full
// aggregate table and a bounded sample of extractions.
func BuildMarketReportPrompt(rows []entity.AggregateRow, samples []entity.Extraction) (string, error) {
	dailyJSON, err := json.Marshal(reportPromptData{
		BySecurity: rows,
		Examples:   samples,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal report data: %w", err)
	}

	return fmt.Sprintf(`Du skriver en saklig svensk marknadsrapport. Struktur: 1) Kort översikt över dagens stämning. 2) Fördjupningar om tongivande bolag med källhänvisningar (t.ex. Källa: Reuters, 14 aug). 3) Avsluta med exakt två topp-10-listor: 'Topp 10 positivt omnämnda' och 'Topp 10 negativt omnämnda' (format: TICKER – Bolagsnamn (pos/neg)). Inga andra punktlistor.

Här är dagens sammanställning (JSON): %s`, string(dailyJSON)), nil
}
