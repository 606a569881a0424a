package prompts

import "strings"

// ============================================================================
// Profanity Extraction
// ============================================================================

// ProfanitySystemPrompt defines the role for profanity extraction.
const ProfanitySystemPrompt = `You are a content moderation assistant. You identify profane, vulgar or obscene words in user text, including inflected forms, deliberate misspellings and leetspeak. You answer with JSON only.`

// profanityUserTemplate asks for the offending words only, never rewritten text.
const profanityUserTemplate = `List every profane or obscene word that appears in the text below.

Rules:
- Copy each word exactly as it appears in the text, one entry per distinct word
- Do not include mild words that are not profanity (e.g. "hate", "stupid")
- If there is no profanity return an empty list

Examples:

Text: "what the fuck is this"
{"profaneWords":["fuck"]}

Text: "he was fucking late again, shitty bus"
{"profaneWords":["fucking","shitty"]}

Text: "the class assignment is due tomorrow"
{"profaneWords":[]}

Text: "{{TEXT}}"
Respond with exactly: {"profaneWords": ["word1", "word2"]}`

// BuildProfanityPrompt embeds text into the profanity extraction prompt.
func BuildProfanityPrompt(text string) string {
	return strings.Replace(profanityUserTemplate, "{{TEXT}}", escapeQuotes(text), 1)
}

// ============================================================================
// Sentiment Analysis
// ============================================================================

// SentimentSystemPrompt defines the role for sentiment and toxicity analysis.
const SentimentSystemPrompt = `You are a sentiment analysis assistant for a moderation service. You answer with JSON only.`

const sentimentUserTemplate = `Analyze the sentiment of the following text. Return a JSON object with these properties:
- sentiment: one of "positive", "negative", "neutral", or "mixed"
- score: a number from -1 (very negative) to 1 (very positive)
- toxicity: a boolean indicating if the content is potentially harmful, toxic, or inappropriate regardless of sentiment
- explanation: a brief explanation of your analysis (optional)

Text to analyze: "{{TEXT}}"

Response format: {"sentiment": "positive|negative|neutral|mixed", "score": number, "toxicity": boolean, "explanation": "string"}`

// BuildSentimentPrompt embeds text into the sentiment prompt.
func BuildSentimentPrompt(text string) string {
	return strings.Replace(sentimentUserTemplate, "{{TEXT}}", escapeQuotes(text), 1)
}

// escapeQuotes keeps user text from closing the quoted block early.
func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
