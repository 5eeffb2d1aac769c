package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"league-night-system/models"
	"league-night-system/utils"
)

// RuleGenerator produces flavor rules or power-ups for a variant.
type RuleGenerator interface {
	Generate(ctx context.Context, kind models.RuleKind, hint string) ([]models.RuleText, error)
}

// RuleTextClient calls the external text-generation service.
type RuleTextClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
	limiter *rate.Limiter
}

type generateRequest struct {
	Kind string `json:"kind"`
	Hint string `json:"hint,omitempty"`
}

type generateResponse struct {
	Suggestions []models.RuleText `json:"suggestions"`
}

// NewRuleTextClient allows perMinute requests with a burst of one. A
// non-positive perMinute disables throttling.
func NewRuleTextClient(baseURL, token string, timeout time.Duration, perMinute int) *RuleTextClient {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	return &RuleTextClient{
		BaseURL: baseURL,
		Token:   token,
		Client:  utils.NewHTTPClient(timeout),
		limiter: limiter,
	}
}

// Generate posts to {BaseURL}/generate and returns the suggestions.
func (c *RuleTextClient) Generate(ctx context.Context, kind models.RuleKind, hint string) ([]models.RuleText, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrGeneration, err)
	}

	body, err := json.Marshal(generateRequest{Kind: string(kind), Hint: hint})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrGeneration, err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Warn().
			Str("component", "rules").
			Int("status", resp.StatusCode).
			Str("body", string(data)).
			Msg("rule generator returned non-200")
		return nil, fmt.Errorf("%w: generator returned %d", ErrGeneration, resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGeneration, err)
	}
	return out.Suggestions, nil
}

// PickRule chooses one suggestion uniformly at random.
func PickRule(rng *rand.Rand, suggestions []models.RuleText) (*models.RuleText, error) {
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: generator returned no suggestions", ErrGeneration)
	}
	pick := suggestions[rng.IntN(len(suggestions))]
	return &pick, nil
}
