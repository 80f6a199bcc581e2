package openai

import "fmt"

const topicPromptTemplate = `Extract the %d most relevant topic keywords from the news article given by the user.

Output ONLY a comma-separated list of keywords on a single line. Do not include any preamble, numbering,
explanation or trailing punctuation.

Rules:
- Each keyword is lowercase, 1-3 words.
- Order keywords from most to least central to the article.
- Include only topics that are explicitly mentioned or clearly implied by the text. Do not hallucinate.
- If no topics can be identified, return an empty response.

Example:
Input: "The Federal Reserve held interest rates steady on Wednesday as inflation cooled."
Output: interest rates, federal reserve, inflation`

const entityPromptTemplate = `Extract named entities (people, locations, organizations) from the news article given by the user.

Output ONLY valid JSON with exactly the keys "people", "locations" and "organizations", each an array of
strings. Do not include any preamble, explanation or markdown. Start your response directly with the
opening brace { and end with the closing brace }.

Rules:
- Use each name as written in the text, without titles.
- List each entity once.
- If a category has no entities, return an empty array for it.

Example:
Input: "Jerome Powell said in Washington that the Federal Reserve would wait."
Output:
{"people":["Jerome Powell"],"locations":["Washington"],"organizations":["Federal Reserve"]}`

// buildTopicPrompt creates the topic system prompt for the given topic count.
func buildTopicPrompt(maxTopics int) string {
	return fmt.Sprintf(topicPromptTemplate, maxTopics)
}

// buildEntityPrompt creates the entity system prompt.
func buildEntityPrompt() string {
	return entityPromptTemplate
}
