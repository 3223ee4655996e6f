package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ExecutionRequest binds one test case to one candidate program.
type ExecutionRequest struct {
	LanguageID     int
	SourceCode     string
	Stdin          string
	ExpectedOutput string
}

// Token identifies one dispatched request on the judge side. It is opaque and
// is only ever echoed back on result lookups.
type Token string

// ExecutionResult is the judge's current outcome for one dispatched request.
type ExecutionResult struct {
	Status   Status
	TimeMs   float64
	MemoryKb int
	Stderr   string
}

// LanguageInfo is one entry of the judge's supported-language list.
type LanguageInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ClientConfig carries the judge endpoint and its authentication headers.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	APIHost string
	Timeout time.Duration
}

// Client talks to a Judge0-compatible batch execution service. Payload fields
// travel base64-encoded in both directions.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiHost    string
	log        *zap.Logger
}

func NewClient(cfg ClientConfig, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		apiHost:    cfg.APIHost,
		log:        log,
	}
}

type wireSubmission struct {
	LanguageID     int    `json:"language_id"`
	SourceCode     string `json:"source_code"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

type wireBatchCreate struct {
	Submissions []wireSubmission `json:"submissions"`
}

type wireToken struct {
	Token string `json:"token"`
}

type wireStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type wireResult struct {
	Token  string     `json:"token"`
	Status wireStatus `json:"status"`
	Time   *string    `json:"time"`   // seconds, e.g. "0.024"
	Memory *int       `json:"memory"` // kilobytes
	Stderr *string    `json:"stderr"` // base64
}

type wireBatchFetch struct {
	Submissions []wireResult `json:"submissions"`
}

// SubmitBatch dispatches the requests as one batch and returns one token per
// request, in request order. The call is atomic from the caller's point of
// view: either every request is accepted or the whole dispatch fails with
// ErrDispatchFailed. There is no implicit retry; retrying a dispatch means
// paying for (and running) the batch again, so that decision stays with the
// caller.
func (c *Client) SubmitBatch(ctx context.Context, reqs []ExecutionRequest) ([]Token, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyBatch
	}

	payload := wireBatchCreate{Submissions: make([]wireSubmission, 0, len(reqs))}
	for _, req := range reqs {
		payload.Submissions = append(payload.Submissions, wireSubmission{
			LanguageID:     req.LanguageID,
			SourceCode:     base64.StdEncoding.EncodeToString([]byte(req.SourceCode)),
			Stdin:          base64.StdEncoding.EncodeToString([]byte(req.Stdin)),
			ExpectedOutput: base64.StdEncoding.EncodeToString([]byte(req.ExpectedOutput)),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}

	reqURL := c.baseURL + "/submissions/batch?base64_encoded=true"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build dispatch request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("posting batch of %d: %v: %w", len(reqs), err, ErrDispatchFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("judge rejected batch dispatch",
			zap.Int("http_status", resp.StatusCode),
			zap.Int("batch_size", len(reqs)),
			zap.String("body", readSnippet(resp.Body)))
		return nil, fmt.Errorf("judge returned HTTP %d: %w", resp.StatusCode, ErrDispatchFailed)
	}

	var created []wireToken
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode dispatch response: %v: %w", err, ErrDispatchFailed)
	}
	if len(created) != len(reqs) {
		return nil, fmt.Errorf("dispatched %d requests but received %d tokens: %w", len(reqs), len(created), ErrDispatchFailed)
	}

	tokens := make([]Token, 0, len(created))
	for i, item := range created {
		if item.Token == "" {
			return nil, fmt.Errorf("request %d was not accepted by the judge: %w", i, ErrDispatchFailed)
		}
		tokens = append(tokens, Token(item.Token))
	}
	return tokens, nil
}

// FetchBatch returns the judge's current result for every token, in token
// order. Results may still be non-terminal; the Poller is responsible for
// looping until they are not.
func (c *Client) FetchBatch(ctx context.Context, tokens []Token) ([]ExecutionResult, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyBatch
	}

	joined := make([]string, 0, len(tokens))
	for _, t := range tokens {
		joined = append(joined, string(t))
	}
	query := url.Values{}
	query.Set("tokens", strings.Join(joined, ","))
	query.Set("base64_encoded", "true")
	query.Set("fields", "token,status,time,memory,stderr")

	reqURL := c.baseURL + "/submissions/batch?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	c.setAuthHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetching %d results: %w", len(tokens), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("judge returned HTTP %d on result fetch: %s", resp.StatusCode, readSnippet(resp.Body))
	}

	var fetched wireBatchFetch
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		return nil, fmt.Errorf("decode fetch response: %w", err)
	}
	if len(fetched.Submissions) != len(tokens) {
		return nil, fmt.Errorf("requested %d results but received %d", len(tokens), len(fetched.Submissions))
	}

	byToken := make(map[Token]ExecutionResult, len(fetched.Submissions))
	for _, item := range fetched.Submissions {
		byToken[Token(item.Token)] = decodeWireResult(item)
	}

	results := make([]ExecutionResult, 0, len(tokens))
	for i, t := range tokens {
		res, ok := byToken[t]
		if !ok {
			// Some deployments omit the token field from trimmed responses;
			// fall back to positional order.
			res = decodeWireResult(fetched.Submissions[i])
		}
		results = append(results, res)
	}
	return results, nil
}

// Languages fetches the judge's supported-language list.
func (c *Client) Languages(ctx context.Context) ([]LanguageInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/languages", nil)
	if err != nil {
		return nil, fmt.Errorf("build languages request: %w", err)
	}
	c.setAuthHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetching languages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("judge returned HTTP %d on language fetch", resp.StatusCode)
	}

	var langs []LanguageInfo
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		return nil, fmt.Errorf("decode languages response: %w", err)
	}
	return langs, nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-rapidapi-key", c.apiKey)
	}
	if c.apiHost != "" {
		req.Header.Set("x-rapidapi-host", c.apiHost)
	}
}

func decodeWireResult(item wireResult) ExecutionResult {
	result := ExecutionResult{Status: Status(item.Status.ID)}
	if item.Time != nil {
		// The judge reports wall time as a decimal string in seconds.
		if seconds, err := strconv.ParseFloat(*item.Time, 64); err == nil {
			result.TimeMs = seconds * 1000
		}
	}
	if item.Memory != nil {
		result.MemoryKb = *item.Memory
	}
	if item.Stderr != nil {
		decoded, err := base64.StdEncoding.DecodeString(*item.Stderr)
		if err != nil {
			result.Stderr = strings.TrimSpace(*item.Stderr)
		} else {
			result.Stderr = strings.TrimSpace(string(decoded))
		}
	}
	return result
}

func readSnippet(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(data))
}
