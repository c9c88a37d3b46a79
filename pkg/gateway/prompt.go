package gateway

import (
	"fmt"
	"strings"

	"github.com/w93163red/LivCap-Translate/pkg/gateway/types"
)

// turnSeparator joins consecutive conversation turns in the flattened
// prompt. The backend session takes a single string, so the whole history
// collapses into one prompt per request.
const turnSeparator = "\n\n"

// BuildPrompt flattens the conversation into the prompt string sent to the
// backend. Turn order is preserved exactly and no turn is dropped, including
// turns with empty content. A single-turn request yields that turn's content
// verbatim with no separator. Roles are not encoded into the prompt; the
// backend session carries its own conversation framing.
func BuildPrompt(messages []types.Message) string {
	if len(messages) == 1 {
		return MessageText(messages[0])
	}

	parts := make([]string, len(messages))
	for i, msg := range messages {
		parts[i] = MessageText(msg)
	}
	return strings.Join(parts, turnSeparator)
}

// MessageText extracts the text of a single turn. Plain strings pass
// through untouched. OpenAI SDKs may send an array of typed content parts
// for multimodal input; the text parts are kept and joined with spaces,
// and non-text parts are dropped. Anything else degrades to its string
// rendering rather than failing the request.
func MessageText(msg types.Message) string {
	switch v := msg.Content.(type) {
	case string:
		return v
	case []interface{}:
		var parts []string
		for _, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if t, ok := m["type"].(string); !ok || t != "text" {
				continue
			}
			if text, ok := m["text"].(string); ok {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, " ")
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
