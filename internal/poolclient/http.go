package poolclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient talks to a Burst-style pool/node over plain HTTP at the
// configured URL: mining info is read as JSON, and nonce submissions are
// posted as a form carrying the secret phrase.
type HTTPClient struct {
	baseURL      string
	secretPhrase string
	httpClient   *http.Client
}

// New builds an HTTPClient bound to baseURL, authenticating submissions
// with secretPhrase and bounding every request by timeout.
func New(baseURL, secretPhrase string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:      baseURL,
		secretPhrase: secretPhrase,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) GetMiningInfo(ctx context.Context) (MiningInfo, error) {
	endpoint := c.baseURL + "/burst?requestType=getMiningInfo"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return MiningInfo{}, fmt.Errorf("get mining info: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return MiningInfo{}, fmt.Errorf("get mining info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return MiningInfo{}, fmt.Errorf("get mining info: status %d", resp.StatusCode)
	}

	var info MiningInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return MiningInfo{}, fmt.Errorf("get mining info: decode: %w", err)
	}
	return info, nil
}

func (c *HTTPClient) SubmitNonce(ctx context.Context, accountID, nonce, height, deadlineScaled uint64) error {
	form := url.Values{}
	form.Set("requestType", "submitNonce")
	form.Set("accountId", fmt.Sprintf("%d", accountID))
	form.Set("nonce", fmt.Sprintf("%d", nonce))
	form.Set("blockheight", fmt.Sprintf("%d", height))
	form.Set("deadline", fmt.Sprintf("%d", deadlineScaled))
	form.Set("secretPhrase", c.secretPhrase)

	endpoint := c.baseURL + "/burst"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return fmt.Errorf("submit nonce: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit nonce: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("submit nonce: status %d", resp.StatusCode)
	}
	return nil
}
