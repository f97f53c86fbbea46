// Package search asks an OpenAI-compatible LLM for feed addresses.
// Responses are untrusted: they are parsed leniently, names are stripped of markup,
// urls are checked for http(s) form and deduplicated. Callers still must probe every candidate.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sashabaranov/go-openai"

	"github.com/umputun/feedkeeper/pkg/config"
	"github.com/umputun/feedkeeper/pkg/domain"
)

// notFoundMarker is the answer the model gives when it can't find a feed
const notFoundMarker = "NOT_FOUND"

const maxNameLen = 120

var (
	errNoJSONArray = errors.New("no json array found in response")
	urlRe          = regexp.MustCompile(`https?://[^\s"'<>()\[\]{}` + "`" + `]+`)
)

// Searcher answers repair and discovery queries using a chat completion model
type Searcher struct {
	client    *openai.Client
	config    config.SearchConfig
	systemMsg string
	policy    *bluemonday.Policy
}

// NewSearcher creates a new LLM-backed searcher
func NewSearcher(cfg config.SearchConfig) *Searcher {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	systemMsg := cfg.SystemPrompt
	if systemMsg == "" {
		systemMsg = defaultSystemPrompt
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 5
	}

	return &Searcher{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		systemMsg: systemMsg,
		policy:    bluemonday.StrictPolicy(),
	}
}

const defaultSystemPrompt = `You are a research assistant that finds RSS, Atom and JSON feed addresses of online publications.
Use your knowledge of the web to find the exact feed url, not the homepage, when possible.
Never invent urls. If you are not sure a feed exists, don't list it.
Always answer with a JSON array of objects with "name" and "url" fields, and "weight" when asked, and nothing else.
If nothing is found answer with NOT_FOUND.`

// FindReplacement asks for the current feed address of a source whose feed stopped responding.
// Returns candidates in the order suggested by the model, possibly empty.
func (s *Searcher) FindReplacement(ctx context.Context, q domain.RepairQuery) ([]domain.Candidate, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("The RSS feed of %q at %s no longer responds.\n", q.Identity, q.URL))
	if q.Language != "" {
		sb.WriteString(fmt.Sprintf("It is a %s language source", q.Language))
	} else {
		sb.WriteString("It is a source")
	}
	if len(q.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf(" about %s", strings.Join(firstN(q.Keywords, 3), ", ")))
	}
	sb.WriteString(".\n")
	sb.WriteString("Find the current feed url of the same publication. It may have moved to a new path or domain.\n")
	sb.WriteString(fmt.Sprintf("Do not return %s itself.\n", q.URL))
	sb.WriteString(`Respond with a JSON array like [{"name": "...", "url": "..."}], best match first, `)
	sb.WriteString("or NOT_FOUND.")

	cands, err := s.query(ctx, sb.String(), parseRepairResponse)
	if err != nil {
		return nil, fmt.Errorf("find replacement for %s: %w", q.Identity, err)
	}

	dead := domain.NormalizeURL(q.URL)
	res := make([]domain.Candidate, 0, len(cands))
	for _, c := range s.clean(cands) {
		if domain.NormalizeURL(c.URL) == dead {
			continue
		}
		if c.Name == "" {
			c.Name = q.Identity
		}
		res = append(res, c)
	}
	return res, nil
}

// FindFeeds asks for popular feeds matching topic keywords, excluding already known sources
func (s *Searcher) FindFeeds(ctx context.Context, q domain.DiscoveryQuery) ([]domain.Candidate, error) {
	limit := q.Limit
	if limit <= 0 || limit > s.config.MaxCandidates {
		limit = s.config.MaxCandidates
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Find up to %d popular, actively updated news sources or blogs about: %s.\n",
		limit, strings.Join(q.Keywords, ", ")))
	if q.Language != "" {
		sb.WriteString(fmt.Sprintf("Sources must publish in language %q.\n", q.Language))
	}
	if len(q.Exclude) > 0 {
		sb.WriteString(fmt.Sprintf("Exclude these already known sources: %s.\n", strings.Join(q.Exclude, ", ")))
	}
	sb.WriteString("Each must have a working RSS, Atom or JSON feed.\n")
	sb.WriteString("Rate each source with a weight from 1.0 (regular) to 1.3 (most reliable and popular).\n")
	sb.WriteString(`Respond with a JSON array like [{"name": "...", "url": "<feed url>", "weight": 1.0}] and nothing else.`)

	cands, err := s.query(ctx, sb.String(), parseDiscoveryResponse)
	if err != nil {
		return nil, fmt.Errorf("find feeds for %q: %w", q.Language, err)
	}

	res := s.clean(cands)
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// query sends the prompt and parses the answer, retrying up to 3 times on malformed json
func (s *Searcher) query(ctx context.Context, prompt string, parse func(string) ([]domain.Candidate, error)) ([]domain.Candidate, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		req := openai.ChatCompletionRequest{
			Model:       s.config.Model,
			Temperature: float32(s.config.Temperature),
			MaxTokens:   s.config.MaxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: s.systemMsg},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		}

		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("llm request failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no response from llm")
		}

		cands, err := parse(resp.Choices[0].Message.Content)
		if err == nil {
			return cands, nil
		}
		lastErr = err
		lgr.Printf("[DEBUG] unparsable search response, attempt %d: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("failed after 3 attempts: %w", lastErr)
}

// clean sanitizes names, drops invalid and duplicate urls and caps the list
func (s *Searcher) clean(cands []domain.Candidate) []domain.Candidate {
	res := make([]domain.Candidate, 0, len(cands))
	seen := map[string]bool{}
	for _, c := range cands {
		u := strings.TrimRight(strings.TrimSpace(c.URL), ".,;:")
		if !domain.ValidFeedURL(u) {
			lgr.Printf("[DEBUG] drop search candidate with invalid url %q", c.URL)
			continue
		}
		key := domain.NormalizeURL(u)
		if seen[key] {
			continue
		}
		seen[key] = true

		name := html.UnescapeString(s.policy.Sanitize(c.Name))
		name = strings.Join(strings.Fields(name), " ")
		if r := []rune(name); len(r) > maxNameLen {
			name = string(r[:maxNameLen])
		}
		weight := 0.0
		if c.Weight != 0 {
			weight = domain.ClampWeight(c.Weight)
		}
		res = append(res, domain.Candidate{Name: name, URL: u, Weight: weight})
		if len(res) >= s.config.MaxCandidates {
			break
		}
	}
	return res
}

// parseDiscoveryResponse extracts the json array of candidates, tolerating markdown fences and prose
func parseDiscoveryResponse(content string) ([]domain.Candidate, error) {
	if isNotFound(content) {
		return []domain.Candidate{}, nil
	}
	return parseJSONArray(content)
}

// parseRepairResponse accepts a json array, a bare url or NOT_FOUND
func parseRepairResponse(content string) ([]domain.Candidate, error) {
	if isNotFound(content) {
		return []domain.Candidate{}, nil
	}
	cands, err := parseJSONArray(content)
	if err == nil {
		return cands, nil
	}

	urls := urlRe.FindAllString(content, -1)
	if len(urls) == 0 {
		if errors.Is(err, errNoJSONArray) {
			// plain prose without any url means nothing was found
			return []domain.Candidate{}, nil
		}
		return nil, err
	}
	res := make([]domain.Candidate, 0, len(urls))
	for _, u := range urls {
		res = append(res, domain.Candidate{URL: u})
	}
	return res, nil
}

func parseJSONArray(content string) ([]domain.Candidate, error) {
	content = stripFences(content)
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || start >= end {
		return nil, errNoJSONArray
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(content[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("failed to parse json array response: %w", err)
	}

	res := make([]domain.Candidate, 0, len(items))
	for _, item := range items {
		var rc struct {
			Name   string `json:"name"`
			URL    string `json:"url"`
			Weight any    `json:"weight"`
		}
		if err := json.Unmarshal(item, &rc); err != nil {
			// a bare string is accepted as url
			var u string
			if json.Unmarshal(item, &u) != nil {
				continue
			}
			rc.URL = u
		}
		res = append(res, domain.Candidate{Name: rc.Name, URL: rc.URL, Weight: parseWeight(rc.Weight)})
	}
	return res, nil
}

// parseWeight accepts a json number or a numeric string, anything else is 0
func parseWeight(v any) float64 {
	switch w := v.(type) {
	case float64:
		return w
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(w), 64); err == nil {
			return f
		}
	}
	return 0
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if i := strings.Index(content, "\n"); i >= 0 {
		content = content[i+1:] // drop language tag line
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(content), "```"))
}

func isNotFound(content string) bool {
	c := strings.TrimSpace(stripFences(content))
	return strings.EqualFold(strings.Trim(c, `"'.`), notFoundMarker)
}

func firstN(vals []string, n int) []string {
	if len(vals) <= n {
		return vals
	}
	return vals[:n]
}
