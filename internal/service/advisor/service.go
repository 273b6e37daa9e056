package advisor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"

	"github.com/coursedesk/backend/internal/config"
	"github.com/coursedesk/backend/internal/model/chat"
	"github.com/coursedesk/backend/internal/model/registry"
)

const (
	// maxRounds bounds the number of model invocations per utterance.
	maxRounds = 5
	// historyLimit bounds how many persisted turns are replayed to the model.
	historyLimit = 20
)

// Static fallbacks: the conversation never surfaces a raw error, so both
// protocol failures resolve to friendly text.
const (
	exhaustedReply = "I've carried out the operations you asked for, but ran out of room to wrap up the summary. Ask me how things stand and I'll fill in the details."
	malformedReply = "Sorry, I wasn't able to work out what to do with that. Could you rephrase your request?"
)

// Service runs the tool-calling loop: model inference, operation dispatch,
// result injection, repeated until the model produces a final answer or the
// round budget runs out.
type Service struct {
	chatModel model.ChatModel
	ops       *ToolSet
}

// NewService creates the advisor over a chat model built from configuration,
// with the operation schemas bound to it.
func NewService(ctx context.Context, store *registry.Store, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return newService(chatModel, store)
}

func newService(chatModel model.ChatModel, store *registry.Store) (*Service, error) {
	ops := NewToolSet(store)
	if err := chatModel.BindTools(ops.Infos()); err != nil {
		return nil, fmt.Errorf("failed to bind operation schemas: %w", err)
	}
	return &Service{chatModel: chatModel, ops: ops}, nil
}

// Respond processes one user utterance to completion and returns the final
// assistant text. Only infrastructure failures (model unreachable) return an
// error; every validation or protocol problem resolves to text.
func (s *Service) Respond(ctx context.Context, sessionID string, history []chat.Message, userMessage string, binding *Binding) (string, error) {
	if binding == nil {
		binding = &Binding{}
	}

	messages := make([]*schema.Message, 0, historyLimit+2)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	messages = append(messages, buildHistory(history)...)
	messages = append(messages, schema.UserMessage(userMessage))

	for round := 1; round <= maxRounds; round++ {
		reply, err := s.chatModel.Generate(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("advisor model invocation failed: %w", err)
		}
		if reply == nil {
			log.Printf("[advisor] session=%s round=%d model returned nil message", sessionID, round)
			return malformedReply, nil
		}

		if len(reply.ToolCalls) > 0 {
			// The assistant message carrying the tool calls is the
			// inspectable record of what the model decided to invoke; it is
			// appended as-is and additionally rendered to the log.
			log.Printf("[advisor] session=%s round=%d dispatching %d operation(s): %s",
				sessionID, round, len(reply.ToolCalls), describeCalls(reply.ToolCalls))
			messages = append(messages, reply)

			// Execute every invocation in the order the model returned them,
			// appending one result turn each. Failures are outcome strings,
			// so a bad invocation never aborts the rest of the round.
			for _, call := range reply.ToolCalls {
				result := s.ops.Dispatch(ctx, call, binding)
				messages = append(messages, schema.ToolMessage(result, call.ID, schema.WithToolName(call.Function.Name)))
			}
			continue
		}

		if text := strings.TrimSpace(reply.Content); text != "" {
			return text, nil
		}

		// Neither a final answer nor invocations: a protocol failure. Bail
		// out immediately rather than burning the remaining round budget.
		log.Printf("[advisor] session=%s round=%d model returned neither text nor operations", sessionID, round)
		return malformedReply, nil
	}

	log.Printf("[advisor] session=%s round budget exhausted after %d rounds", sessionID, maxRounds)
	return exhaustedReply, nil
}

// buildHistory converts the most recent persisted turns into model messages.
func buildHistory(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}

func describeCalls(calls []schema.ToolCall) string {
	rendered := lo.Map(calls, func(call schema.ToolCall, _ int) string {
		return fmt.Sprintf("%s(%s)", call.Function.Name, call.Function.Arguments)
	})
	return strings.Join(rendered, ", ")
}
