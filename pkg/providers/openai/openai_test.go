package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/providers"
)

func chatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
			},
		},
		"usage": map[string]interface{}{
			"prompt_tokens":     10,
			"completion_tokens": 5,
			"total_tokens":      15,
		},
	}
}

func TestProvider_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(
			`<think>先找人名</think>[{"original":"浙江省人民医院","type":"ORGANIZATION"}]`))
	}))
	defer server.Close()

	provider := New(providers.Config{
		APIKey:      "test-api-key",
		APIEndpoint: server.URL,
		Model:       "gpt-4o-mini",
	})
	assert.Equal(t, providers.BackendOpenAI, provider.Name())

	entities, err := provider.Analyze(context.Background(), "就诊于浙江省人民医院")
	require.NoError(t, err)
	assert.Equal(t, []entity.Entity{
		entity.New(entity.KindOrganization, "浙江省人民医院", ""),
	}, entities)
}

func TestProvider_AnalyzeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	provider := New(providers.Config{APIKey: "bad", APIEndpoint: server.URL, Model: "gpt-4o-mini"})
	_, err := provider.Analyze(context.Background(), "患者张三")
	assert.Error(t, err)
}

func TestProvider_AnalyzeNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := chatResponse("")
		resp["choices"] = []interface{}{}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := New(providers.Config{APIKey: "k", APIEndpoint: server.URL, Model: "gpt-4o-mini"})
	_, err := provider.Analyze(context.Background(), "患者张三")
	require.Error(t, err)

	var perr *providers.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "empty_response", perr.Code)
}
