// README: Prompt construction for the interview dialogue turns.
package interview

import (
	"fmt"
)

// buildPrompt summarizes the current per-slot profile, restates the already
// confirmed trip parameters and the remaining question budget, and pins the
// JSON reply schema.
func (c *Controller) buildPrompt(lastUserMsg string) string {
	remaining := c.maxQuestions - c.questionsAsked
	if remaining < 0 {
		remaining = 0
	}

	return fmt.Sprintf(`You are the interest-refinement interviewer in a travel planning system.

We are interviewing a traveler to plan a %d-day city trip for %d people with a total budget of %.0f EUR.

ALREADY CONFIRMED (never ask about these):
- Total budget: %.0f EUR
- Number of people: %d
- Trip duration: %d days

CURRENT SEMANTIC PROFILE (built from all previous messages):
%s

Most recent traveler message:
"""%s"""

Your tasks:
1. Focus on understanding interests, preferences, pace, food, and constraints.
2. If you have enough information, recommend ONE destination city and finalize.
3. If not, ask ONE clarifying question. You may ask at most %d more question(s).

Return ONLY valid JSON with this structure:
{
  "action": "ask_question" or "finalize",
  "question": "string (if action == 'ask_question', else empty)",
  "chosen_destination": "string or null",
  "profile_summary": "short natural language summary",
  "constraints": {
    "with_children": true/false/null,
    "with_disabled": true/false/null,
    "budget": %.0f,
    "people": %d
  }
}

Return ONLY the JSON object, no additional text.`,
		c.trip.Days, c.trip.People, c.trip.Budget,
		c.trip.Budget, c.trip.People, c.trip.Days,
		c.state.Summary(),
		lastUserMsg,
		remaining,
		c.trip.Budget, c.trip.People,
	)
}
