package llm

import (
	"fmt"
	"strings"
)

// systemPrompt frames every provider call the same way; the variation
// between providers is in tooling, not instructions.
const systemPrompt = "You are Futurizm, an AI prediction system with real-time web search access. " +
	"You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, " +
	"markdown formatting, or commentary before or after the JSON."

// buildPrompt renders the user prompt for one generation call. Topics are
// rendered as a numbered list and the cycle date is embedded so providers
// anchor their search to the prediction day.
func buildPrompt(req GenerationRequest) string {
	var topics strings.Builder
	for i, t := range req.Topics {
		fmt.Fprintf(&topics, "%d. %s\n", i+1, t)
	}

	return fmt.Sprintf(`Date: %s
Category: %s
Topics to predict on:
%s
Your task: Using real-time web search, predict what is LIKELY TO HAPPEN on %s for each topic.

CONTEXT:
- It is currently 5:00 AM Pacific Time on %s
- You have access to the latest news, trends, and insights
- Don't make predictions on things that are scheduled or have obvious outcomes
- Don't make predictions on things that are too far in the future
- Always choose insightful and thought-provoking predictions
- Focus on events expected to unfold during %s

FORMAT RULES:
- Title: 3-4 words only, headline style (e.g., "Market Rally Expected")
- Chance: 0-100 percentage likelihood
- Content: 25-30 words total
  - First sentence: What will happen
  - Next 1-2 sentences: Overlooked signals/reasons the general public might miss

Be specific with times, numbers, and sources. Ground your predictions in current events.

Respond with a JSON object in this exact shape:
{"category": "%s", "predictions": [{"title": "...", "chance": 0, "content": "..."}, {"title": "...", "chance": 0, "content": "..."}, {"title": "...", "chance": 0, "content": "..."}]}`,
		req.Date, req.Category, topics.String(), req.Date, req.Date, req.Date, req.Category)
}
