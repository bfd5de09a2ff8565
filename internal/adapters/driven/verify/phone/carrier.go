package phone

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// Ensure CarrierVerifier implements the interface.
var _ driven.PhoneVerifier = (*CarrierVerifier)(nil)

// Default configuration values.
const (
	DefaultCarrierBaseURL = "https://apilayer.net/api"
	DefaultCarrierTimeout = 30 * time.Second
)

// CarrierConfig holds configuration for the carrier lookup client.
type CarrierConfig struct {
	// APIKey is the lookup provider access key (required).
	APIKey string

	// BaseURL is the API endpoint (default: https://apilayer.net/api).
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// CarrierVerifier validates phone numbers against a numverify-style
// carrier lookup API.
type CarrierVerifier struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// lookupResponse is the numverify /validate response format.
type lookupResponse struct {
	Valid       bool   `json:"valid"`
	LineType    string `json:"line_type"`
	Carrier     string `json:"carrier"`
	CountryCode string `json:"country_code"`
	Error       *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error,omitempty"`
}

// NewCarrierVerifier creates a carrier lookup client.
func NewCarrierVerifier(cfg CarrierConfig) (*CarrierVerifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("carrier lookup: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCarrierBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultCarrierTimeout
	}

	return &CarrierVerifier{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}, nil
}

// Check looks up one number. Transport failures wrap
// domain.ErrVerifierUnavailable.
func (v *CarrierVerifier) Check(ctx context.Context, phone string) (*domain.PhoneCheck, error) {
	query := url.Values{}
	query.Set("access_key", v.apiKey)
	query.Set("number", phone)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		v.baseURL+"/validate?"+query.Encode(),
		http.NoBody,
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVerifierUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("carrier lookup error (status %d): %s", resp.StatusCode, string(body))
	}

	var lookup lookupResponse
	if err := json.Unmarshal(body, &lookup); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if lookup.Error != nil {
		return nil, fmt.Errorf("carrier lookup error %d: %s", lookup.Error.Code, lookup.Error.Info)
	}

	return &domain.PhoneCheck{
		Valid:    lookup.Valid,
		LineType: normaliseLineType(lookup.LineType),
		Carrier:  lookup.Carrier,
		Country:  lookup.CountryCode,
	}, nil
}

// normaliseLineType maps provider line type labels onto the three the
// domain distinguishes.
func normaliseLineType(lineType string) string {
	switch strings.ToLower(lineType) {
	case "mobile":
		return "mobile"
	case "landline", "fixed_line":
		return "landline"
	case "voip", "special_services":
		return "voip"
	default:
		return ""
	}
}
