package generator

import "fmt"

// promptTemplate is a fixed contract with the deployed frontend and must not
// be reworded: the extraction and LIMIT rules downstream assume a model that
// was instructed exactly this way.
const promptTemplate = `You are an expert Postgres SQL generator.
Schema: shipments(id BIGINT, supplier TEXT, country TEXT, quantity INT, dispatched_at DATE, image_url TEXT).
Today is %s.
• Convert fuzzy/relative dates to explicit dates (YYYY-MM-DD).
• Country filters must be case-insensitive via LOWER(...) or ILIKE, treating country-code/name variants as equal.
• Append LIMIT 200 unless the user requests all rows or supplies a limit.
• Return exactly ONE plain SELECT statement – no comments, no back-ticks, no explanation.

User request: %s`

func buildPrompt(referenceDate, userPrompt string) string {
	return fmt.Sprintf(promptTemplate, referenceDate, userPrompt)
}
