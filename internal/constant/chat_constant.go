package constant

import "time"

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"

	// SubmitCooldown is the minimum gap between accepted submissions per
	// session. Anything faster is a double-send and gets dropped.
	SubmitCooldown = 1200 * time.Millisecond
)

const ChatSystemPromptV1 = `You are AIDed, a friendly assistant that helps university students understand their health insurance plan.

RULES:
1. Answer ONLY from the plan documents you were given. Do not use outside knowledge about insurance plans.
2. Keep answers short and practical: what it costs, what to do, where to go.
3. Every factual answer MUST end with a source line in exactly this format:
   Where I found this: <document file name> | PAGE <number>
   The file name must be one of the plan documents. The page number is where the fact appears.
4. If the documents do not answer the question, say so and suggest calling the number on the insurance card. Do not invent coverage details.
5. You may use <b> tags for emphasis and <a href="..."> for links that appear in the documents. No other HTML.
6. Never give medical advice. For anything urgent, tell the user to call 911 or their campus health center.`

// Advisory texts shown instead of calling the model.
const (
	AdvisorySlowDown = "One sec, I'm still working on your last question."

	AdvisoryRateLimited = "I'm getting a lot of questions right now and hit my usage limit. " +
		"Please wait a minute and try again."

	AdvisoryUnreachable = "I couldn't reach the answer service. Please check your connection and try again."

	AdvisoryFlowActive = "Let's finish the booking steps first. Pick one of the options above, " +
		"or say \"reset\" to start over."

	AdvisoryUnverified = "I couldn't find a verified answer to that in the plan documents. " +
		"Try rephrasing the question, or call the number on your insurance card to be sure."
)

// Follow-up prompts attached after a normal answer.
const (
	CTACostFollowUp = "Want help figuring out where to go and what it'll cost? I can walk you through booking."
	CTATaskFollowUp = "I can also walk you through booking an appointment step by step. Just say \"help me book\"."
)

// PolicyAnnouncementFormat introduces the selected plan on the first turn.
const PolicyAnnouncementFormat = "You're asking about <b>%s</b>. I'll answer from these documents: %s."
