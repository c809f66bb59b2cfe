package llm

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// geminiChat wraps one genai chat. The SDK keeps the turn history, so
// this type only carries the handle.
type geminiChat struct {
	chat *genai.Chat
}

var _ ChatSession = (*geminiChat)(nil)

// NewChat opens a chat session whose system instruction embeds the
// given transactions. The context snapshot is taken once here; later
// transaction changes are not visible to an open session.
func (c *Client) NewChat(ctx context.Context, txs []domain.Transaction) (ChatSession, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: buildChatSystemInstruction(txs)}},
		},
	}

	chat, err := c.genai.Chats.Create(ctx, c.model, config, nil)
	if err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}

	return &geminiChat{chat: chat}, nil
}

// Send streams the model's reply to one message. Empty chunks are
// skipped; the first error ends the stream.
func (s *geminiChat) Send(ctx context.Context, message string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range s.chat.SendMessageStream(ctx, genai.Part{Text: message}) {
			if err != nil {
				yield("", fmt.Errorf("stream chat reply: %w", err))
				return
			}
			chunk := resp.Text()
			if chunk == "" {
				continue
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// Close releases the session. The genai SDK holds no server-side
// resources per chat, so this only severs the handle.
func (s *geminiChat) Close() error {
	s.chat = nil
	return nil
}
