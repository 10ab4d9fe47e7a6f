package session

import "github.com/YashwanthKamireddi/Float-Deck/internal/models"

const genericReply = "I wasn't able to produce a useful answer for that. Try rephrasing the question."

// NormalizeMessages flattens the heterogeneous assistant-response shape into
// a uniform display list. When the backend supplies role-tagged messages they
// win; otherwise exactly one message is synthesized from error text, then the
// string result, then a generic fallback, in that priority order. Total over
// all input shapes, including nil.
func NormalizeMessages(resp *models.AskResponse) []models.Message {
	if resp == nil {
		return []models.Message{generic()}
	}
	if len(resp.Messages) > 0 {
		out := make([]models.Message, len(resp.Messages))
		copy(out, resp.Messages)
		return out
	}

	switch {
	case resp.Error != nil && *resp.Error != "":
		return []models.Message{{
			Role:    "assistant",
			Type:    "error",
			Title:   "Something went wrong",
			Content: *resp.Error,
		}}
	case resp.Text != "":
		return []models.Message{{
			Role:    "assistant",
			Type:    "conversation",
			Title:   "Response",
			Content: resp.Text,
		}}
	default:
		return []models.Message{generic()}
	}
}

func generic() models.Message {
	return models.Message{
		Role:    "assistant",
		Type:    "conversation",
		Title:   "Response",
		Content: genericReply,
	}
}
