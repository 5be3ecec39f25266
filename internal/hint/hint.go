// Package hint generates tutoring hints for exercise attempts through an
// OpenAI-compatible chat completion API. Hints guide the learner toward
// the right clause or keyword; they never contain the full answer.
package hint

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
)

// Config holds settings for the hint generator.
type Config struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
}

// Enabled reports whether hint generation is configured.
func (c Config) Enabled() bool {
	return c.APIKey != ""
}

// Client generates hints through an OpenAI-compatible endpoint.
type Client struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a hint generator. If logger is nil, a discard logger
// is used.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}

	return &Client{client: &client, model: model, logger: logger}
}

// GenerateHint asks the model for a short conceptual hint.
func (c *Client) GenerateHint(ctx context.Context, question, userSQL string, tables []core.TableSpec) (string, error) {
	prompt := buildPrompt(question, userSQL, tables)

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("hint completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("hint completion returned no choices")
	}

	hint := strings.TrimSpace(completion.Choices[0].Message.Content)
	c.logger.Debug("generated hint", slog.Int("length", len(hint)))
	return hint, nil
}

// buildPrompt renders the tutoring prompt: the assignment question, the
// available tables, and the student's current attempt.
func buildPrompt(question, userSQL string, tables []core.TableSpec) string {
	var tableInfo strings.Builder
	for i, t := range tables {
		if i > 0 {
			tableInfo.WriteString("\n")
		}
		cols := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			cols[j] = fmt.Sprintf("%s (%s)", c.Name, c.Type)
		}
		fmt.Fprintf(&tableInfo, "Table %q: %s", t.TableName, strings.Join(cols, ", "))
	}

	attempt := "(The student has not written any query yet)"
	if userSQL != "" {
		attempt = fmt.Sprintf("```sql\n%s\n```", userSQL)
	}

	return fmt.Sprintf(`You are a SQL tutor helping a student learn SQL. Your role is to provide HINTS only - never give the full answer or complete SQL query.

Assignment Question:
%q

Available Tables:
%s

Student's Current SQL Attempt:
%s

Instructions for your response:
1. Analyze what the student is trying to do and what's wrong or missing
2. Give a conceptual hint that guides them in the right direction
3. You MAY mention which SQL clause or keyword they should think about (e.g., "Consider using GROUP BY", "Think about what JOIN would connect these tables", "A WHERE clause can help filter your results")
4. DO NOT write out the complete SQL query for them
5. DO NOT reveal the exact answer by providing the exact conditions or values
6. Keep your hint to 2-4 sentences maximum
7. Be encouraging and educational

Respond with only your hint, no preamble.`, question, tableInfo.String(), attempt)
}

var _ core.HintGenerator = (*Client)(nil)
