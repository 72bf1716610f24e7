package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		`[{"foodName":"Rice"}]`:                   `[{"foodName":"Rice"}]`,
		"```json\n[{\"foodName\":\"Rice\"}]\n```": `[{"foodName":"Rice"}]`,
		"```\n[]\n```":                            `[]`,
		"  ```json []":                            `[]`,
		"[] ```":                                  `[]`,
		"":                                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripCodeFence(in), "input %q", in)
	}
}

func chatServer(t *testing.T, status int, content string, inspect func(r *http.Request, body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		if inspect != nil {
			inspect(r, body)
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			resp := map[string]any{"choices": []any{map[string]any{"message": map[string]any{"content": content}}}}
			_ = json.NewEncoder(w).Encode(resp)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVisionRecognize(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := chatServer(t, http.StatusOK, "```json\n[{\"foodName\": \"Rice\", \"estimatedPortion\": 180, \"portionUnit\": \"g\"}]\n```",
		func(r *http.Request, body map[string]any) {
			gotAuth = r.Header.Get("Authorization")
			gotBody = body
		})
	svc := NewVisionService(srv.URL, "sk-test", "gpt-4o-mini", srv.Client())

	out, err := svc.Recognize(context.Background(), []byte{0xff, 0xd8, 0xff}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, `[{"foodName": "Rice", "estimatedPortion": 180, "portionUnit": "g"}]`, out)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	assert.EqualValues(t, 500, gotBody["max_tokens"])

	msgs := gotBody["messages"].([]any)
	parts := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].(map[string]any)["text"], "Return ONLY a valid JSON array")
	url := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,/9j/"), url)
}

func TestVisionRecognizeErrors(t *testing.T) {
	_, err := NewVisionService("http://unused", "", "m", nil).Recognize(context.Background(), []byte{1}, "image/jpeg")
	assert.ErrorIs(t, err, ErrNotConfigured)

	for status, want := range map[int]error{
		http.StatusUnauthorized:        ErrNotConfigured,
		http.StatusTooManyRequests:     ErrRateLimited,
		http.StatusInternalServerError: ErrUpstreamFailure,
	} {
		srv := chatServer(t, status, "", nil)
		_, err := NewVisionService(srv.URL, "k", "m", srv.Client()).Recognize(context.Background(), []byte{1}, "image/jpeg")
		assert.ErrorIs(t, err, want, "status %d", status)
	}
}
