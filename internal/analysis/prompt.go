package analysis

import (
	"strings"

	"parley/internal/store"
)

// rubricPrompt instructs the model to score the participant side of the
// conversation and respond with JSON only.
const rubricPrompt = `You are an experienced workplace-communication coach evaluating how a participant handled a difficult conversation. Score only the participant's messages; the assistant messages are a role-played character.

Respond with JSON only, using exactly this shape:
{
  "conflict_resolution": {"score": 1-5, "quote": "<short participant quote>", "feedback": "<one or two sentences>"},
  "professionalism": {"score": 1-5, "quote": "<short participant quote>", "feedback": "<one or two sentences>"},
  "articulation": {"score": 1-5, "quote": "<short participant quote>", "feedback": "<one or two sentences>"},
  "learning": {"score": 1-5, "quote": "<short participant quote>", "feedback": "<one or two sentences>"},
  "summary": "<two or three sentence overall assessment>"
}

Scores are integers from 1 (poor) to 5 (excellent). Quotes must be verbatim from the transcript. Do not include any text outside the JSON object.`

// buildTranscriptPrompt renders the ordered transcript with role labels for
// the rubric prompt.
func buildTranscriptPrompt(messages []store.Message) string {
	var b strings.Builder
	b.WriteString("Transcript:\n")
	for _, msg := range messages {
		label := "Character"
		if msg.Role == store.RoleParticipant {
			label = "Participant"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(msg.Content))
		b.WriteString("\n")
	}
	return b.String()
}
