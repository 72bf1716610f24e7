package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// FoodRecognizer identifies food items in an image and returns a JSON array
// of {foodName, estimatedPortion, portionUnit} as an opaque string.
type FoodRecognizer interface {
	Recognize(ctx context.Context, image []byte, contentType string) (string, error)
}

const visionPrompt = "Analyze this food image and identify all the food items visible. " +
	"For EACH food item, estimate the realistic weight in grams based on typical serving sizes. " +
	"For example: a plate of rice is typically 150-200g, a piece of fried chicken is 100-150g, " +
	"a fish fillet is 150-200g, vegetables are typically 50-100g per serving. " +
	"Use clear food names, try to identify specific meat cuts or vegetable types when possible. " +
	`Return ONLY a valid JSON array with this exact format: [{"foodName": "Rice", "estimatedPortion": 180, "portionUnit": "g"}, ` +
	`{"foodName": "Fried Chicken", "estimatedPortion": 120, "portionUnit": "g"}]. ` +
	"Do not include any markdown formatting or code blocks, just the raw JSON array."

const visionMaxTokens = 500

// VisionService sends images to an OpenAI-compatible chat completions endpoint.
type VisionService struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

func NewVisionService(url, apiKey, model string, client *http.Client) *VisionService {
	if client == nil {
		client = &http.Client{}
	}
	return &VisionService{url: url, apiKey: apiKey, model: model, client: client}
}

type visionContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *visionImageURL `json:"image_url,omitempty"`
}

type visionImageURL struct {
	URL string `json:"url"`
}

type visionMessage struct {
	Role    string              `json:"role"`
	Content []visionContentPart `json:"content"`
}

type visionRequest struct {
	Model     string          `json:"model"`
	Messages  []visionMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *VisionService) Recognize(ctx context.Context, image []byte, contentType string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrNotConfigured)
	}
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = "image/jpeg"
	}

	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image)
	payload := visionRequest{
		Model: s.model,
		Messages: []visionMessage{{
			Role: "user",
			Content: []visionContentPart{
				{Type: "text", Text: visionPrompt},
				{Type: "image_url", ImageURL: &visionImageURL{URL: dataURL}},
			},
		}},
		MaxTokens: visionMaxTokens,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal vision payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("failed to create vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return "", fmt.Errorf("%w: failed to call vision API: %v", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read vision response: %v", ErrUpstreamFailure, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", fmt.Errorf("%w: vision API rejected the key", ErrNotConfigured)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: vision API error %d: %s", ErrUpstreamFailure, resp.StatusCode, string(body))
	}

	var vr visionResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return "", fmt.Errorf("%w: failed to parse vision JSON: %v", ErrUpstreamFailure, err)
	}
	if len(vr.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrUpstreamFailure)
	}

	return StripCodeFence(vr.Choices[0].Message.Content), nil
}

// StripCodeFence removes an optional ```json or ``` opening fence and a
// trailing ``` fence.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
