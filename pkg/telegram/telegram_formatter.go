package telegram

import (
	"fmt"
	"strings"

	"golang-market-digest/internal/entity"
)

// FormatDailySummaryForTelegram formats the daily top lists into Markdown
// strings for Telegram, ensuring each message does not exceed the maximum
// message length.
func FormatDailySummaryForTelegram(summary *entity.DailySummary) []string {
	if summary == nil || (len(summary.Positives) == 0 && len(summary.Negatives) == 0) {
		return []string{"Inga bolagsomnämnanden idag."}
	}

	const maxLen = 4090
	var messages []string
	var currentMessage strings.Builder

	currentMessage.WriteString("📊 *Daglig marknadssammanställning*\n\n")

	appendLine := func(line string) {
		if currentMessage.Len()+len(line) > maxLen {
			messages = append(messages, currentMessage.String())
			currentMessage.Reset()
		}
		currentMessage.WriteString(line)
	}

	appendSection := func(header string, rows []entity.AggregateRow) {
		appendLine(fmt.Sprintf("*%s*\n", header))
		for i, row := range rows {
			appendLine(fmt.Sprintf("%d. %s (%d/%d)\n", i+1, row.Key, row.Positive, row.Negative))
		}
		appendLine("\n")
	}

	appendSection("Topp 10 positivt omnämnda", summary.Positives)
	appendSection("Topp 10 negativt omnämnda", summary.Negatives)

	if currentMessage.Len() > 0 {
		messages = append(messages, currentMessage.String())
	}
	return messages
}
