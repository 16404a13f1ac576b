package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/okutsen/authsvc/internal/common"
)

const defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleVerifier validates Google ID tokens against Google's tokeninfo
// endpoint and checks that the token was issued for our OAuth client.
// It holds immutable configuration and is constructed once at startup.
type GoogleVerifier struct {
	clientID     string
	tokenInfoURL string
	client       *http.Client
}

// GoogleOption configures a GoogleVerifier.
type GoogleOption func(*GoogleVerifier)

// WithHTTPClient overrides the HTTP client used to reach Google.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(v *GoogleVerifier) {
		if c != nil {
			v.client = c
		}
	}
}

// WithTokenInfoURL overrides the verification endpoint (used in tests).
func WithTokenInfoURL(u string) GoogleOption {
	return func(v *GoogleVerifier) {
		if u != "" {
			v.tokenInfoURL = u
		}
	}
}

// NewGoogleVerifier constructs a verifier bound to the given OAuth client id.
func NewGoogleVerifier(clientID string, opts ...GoogleOption) *GoogleVerifier {
	v := &GoogleVerifier{
		clientID:     clientID,
		tokenInfoURL: defaultTokenInfoURL,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// tokenInfoResponse mirrors the fields of Google's tokeninfo payload that we
// consume. Name and Picture are genuinely optional in the payload.
type tokenInfoResponse struct {
	Aud     string  `json:"aud"`
	Sub     string  `json:"sub"`
	Email   string  `json:"email"`
	Name    *string `json:"name"`
	Picture *string `json:"picture"`
}

// Verify submits the ID token to the tokeninfo endpoint and returns the
// verified identity tuple. Anything short of a 200 response with matching
// audience, subject and email is common.ErrVerificationFailed.
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*UserInfo, error) {
	if credential == "" {
		return nil, common.ErrVerificationFailed
	}

	form := url.Values{"id_token": {credential}}
	endpoint := v.tokenInfoURL + "?" + form.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, common.ErrVerificationFailed
	}

	var info tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, common.ErrVerificationFailed
	}

	// The token must have been minted for our client, not someone else's.
	if info.Aud != v.clientID {
		return nil, common.ErrVerificationFailed
	}
	if info.Sub == "" || info.Email == "" {
		return nil, common.ErrVerificationFailed
	}

	return &UserInfo{
		SubjectID: info.Sub,
		Email:     info.Email,
		Name:      info.Name,
		Picture:   info.Picture,
	}, nil
}
