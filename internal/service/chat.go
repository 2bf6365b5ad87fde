package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/template"
	"time"

	"github.com/tastegent/tastegent/internal/domain"
)

const (
	defaultRestaurantName = "Tastegent"

	// System prompt rendered with the live menu so the assistant only
	// recommends dishes that actually exist.
	systemPromptTmplStr = `You are a friendly and knowledgeable waiter at '{{.RestaurantName}}'. Help guests choose from the menu, answer questions about dishes, ingredients and prices, and suggest pairings. Be concise and warm. Never invent dishes that are not on the menu.

Current menu:
{{range .Items}}- {{.Name}} ({{.Price}}): {{.Description}}{{if .Tags}} [{{range $i, $t := .Tags}}{{if $i}}, {{end}}{{$t}}{{end}}]{{end}}
{{else}}(the menu is currently empty; apologize and suggest checking back later)
{{end}}`
)

// promptContext holds data for the system prompt template
type promptContext struct {
	RestaurantName string
	Items          []*domain.MenuItem
}

// OpenRouterChat implements domain.ChatService using the OpenRouter API
type OpenRouterChat struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	menuRepo   domain.MenuRepository
	systemTmpl *template.Template
}

// NewOpenRouterChat creates a new OpenRouter chat relay
func NewOpenRouterChat(apiKey, model, baseURL string, menuRepo domain.MenuRepository) *OpenRouterChat {
	sysTmpl, _ := template.New("system").Parse(systemPromptTmplStr)

	return &OpenRouterChat{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		menuRepo:   menuRepo,
		systemTmpl: sysTmpl,
	}
}

// Reply relays one customer message (plus prior turns) to the model and
// returns its answer. Provider failures surface to the caller; there is no
// retry here.
func (s *OpenRouterChat) Reply(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	promptCtx := promptContext{RestaurantName: defaultRestaurantName}

	// A missing menu shouldn't take chat down; the assistant just answers
	// without dish context.
	if items, err := s.menuRepo.List(ctx); err == nil {
		promptCtx.Items = items
	}

	var systemPromptBuf bytes.Buffer
	if err := s.systemTmpl.Execute(&systemPromptBuf, promptCtx); err != nil {
		return nil, fmt.Errorf("failed to generate system prompt: %w", err)
	}

	messages := []map[string]interface{}{
		{
			"role":    "system",
			"content": systemPromptBuf.String(),
		},
	}
	for _, turn := range req.History {
		role := turn.Role
		if role != "assistant" {
			role = "user"
		}
		messages = append(messages, map[string]interface{}{
			"role":    role,
			"content": turn.Content,
		})
	}
	messages = append(messages, map[string]interface{}{
		"role":    "user",
		"content": req.Message,
	})

	requestBody := map[string]interface{}{
		"model":       s.model,
		"messages":    messages,
		"temperature": 0.7,
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Title", "Tastegent")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouter api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if apiResponse.Error != nil {
		return nil, fmt.Errorf("openrouter error: %s (code: %d)", apiResponse.Error.Message, apiResponse.Error.Code)
	}

	if len(apiResponse.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI model")
	}

	return &domain.ChatResponse{
		Reply: apiResponse.Choices[0].Message.Content,
	}, nil
}
