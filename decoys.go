/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const decoyCount = 3

type decoyChatRequest struct {
	Model          string             `json:"model"`
	Messages       []decoyChatMessage `json:"messages"`
	Temperature    float64            `json:"temperature,omitempty"`
	ResponseFormat map[string]string  `json:"response_format,omitempty"`
}

type decoyChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type decoyChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// DecoyClient asks a generative text service for words an impostor can
// bluff with. It is cosmetic: every failure results in no decoys.
type DecoyClient struct {
	cfg    *Config
	client *http.Client
}

func newDecoyClient(cfg *Config) *DecoyClient {
	return &DecoyClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *DecoyClient) Enabled() bool {
	return strings.TrimSpace(d.cfg.decoyKey) != ""
}

// Suggest returns up to three decoys for the category, never including
// the secret word.
func (d *DecoyClient) Suggest(ctx context.Context, category, secret string) []string {
	decoys, err := d.fetch(ctx, category, secret)
	if err != nil {
		logf(d.cfg, "DECOY: No decoys for %q: %v", category, err)
		return nil
	}

	return decoys
}

func (d *DecoyClient) fetch(ctx context.Context, category, secret string) ([]string, error) {
	if !d.Enabled() {
		return nil, errors.New("decoy service is not configured")
	}

	prompt := fmt.Sprintf("The game is 'Impostor'. The category is '%s'. The secret word is '%s'. "+
		"Generate %d different decoy words that belong to this category but are NOT the secret word. "+
		"Use the language of the category provided. Respond with a JSON object of the form {\"decoys\": [\"...\"]}.",
		category, secret, decoyCount)

	payload, err := json.Marshal(decoyChatRequest{
		Model:          d.cfg.decoyModel,
		Messages:       []decoyChatMessage{{Role: "user", Content: prompt}},
		Temperature:    0.9,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, d.cfg.decoyEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.cfg.decoyKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var parsed decoyChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("response has no choices")
	}

	var content struct {
		Decoys []string `json:"decoys"`
	}
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &content); err != nil {
		return nil, fmt.Errorf("decoding decoys: %w", err)
	}

	decoys := make([]string, 0, decoyCount)
	for _, word := range content.Decoys {
		word = strings.TrimSpace(word)
		if word == "" || strings.EqualFold(word, secret) {
			continue
		}
		decoys = append(decoys, word)
		if len(decoys) == decoyCount {
			break
		}
	}

	return decoys, nil
}
