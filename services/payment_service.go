package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"hotel-booking/models"
)

var (
	ErrInsecureTransport    = errors.New("payments require a secure (HTTPS) connection")
	ErrPaymentNotConfigured = errors.New("payment gateway is not configured")
	ErrCheckoutUnavailable  = errors.New("payment checkout library could not be loaded")
	ErrInvalidAmount        = errors.New("payment amount must be positive")
	ErrInvalidTransactionID = errors.New("invalid transaction id")
)

const (
	PaymentSuccessful = "successful"
	PaymentFailed     = "failed"
)

type PaymentConfig struct {
	PublicKey      string
	SecretKey      string
	EncryptionKey  string
	APIURL         string
	ScriptURL      string
	RedirectURL    string
	Currency       string
	PaymentOptions string
	Title          string
	Description    string
	Logo           string
}

type Customizations struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Logo        string `json:"logo,omitempty"`
}

// CheckoutConfig is everything the browser needs to open the inline checkout.
type CheckoutConfig struct {
	PublicKey      string                 `json:"public_key"`
	TxRef          string                 `json:"tx_ref"`
	Amount         int64                  `json:"amount"`
	Currency       string                 `json:"currency"`
	PaymentOptions string                 `json:"payment_options"`
	RedirectURL    string                 `json:"redirect_url"`
	Customer       models.PaymentCustomer `json:"customer"`
	Customizations Customizations         `json:"customizations"`
	ScriptURL      string                 `json:"script_url"`
}

// VerificationResult is the outcome of a gateway lookup. Status is either
// PaymentSuccessful or PaymentFailed; there is no in-between.
type VerificationResult struct {
	Status        string  `json:"status"`
	TransactionID string  `json:"transactionId"`
	TxRef         string  `json:"txRef,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

func (r VerificationResult) Successful() bool {
	return r.Status == PaymentSuccessful
}

type gatewayVerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		ID       json.Number `json:"id"`
		TxRef    string      `json:"tx_ref"`
		Amount   float64     `json:"amount"`
		Currency string      `json:"currency"`
		Status   string      `json:"status"`
	} `json:"data"`
}

// PaymentService fronts the Flutterwave checkout and verify APIs.
type PaymentService struct {
	cfg        PaymentConfig
	httpClient *http.Client
	now        func() time.Time

	loads  singleflight.Group
	mu     sync.RWMutex
	script []byte
}

func NewPaymentService(cfg PaymentConfig) *PaymentService {
	return &PaymentService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// GenerateTxRef returns "TRF-<unix ms>-<random 0..999999>".
func (s *PaymentService) GenerateTxRef() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		n = big.NewInt(s.now().UnixNano() % 1000000)
	}
	return fmt.Sprintf("TRF-%d-%d", s.now().UnixMilli(), n.Int64())
}

// CheckoutScript returns the gateway's inline library. Concurrent first
// calls share one download; a successful download is kept for the life of
// the process and a failed one is retried on the next call.
func (s *PaymentService) CheckoutScript(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	script := s.script
	s.mu.RUnlock()
	if script != nil {
		return script, nil
	}

	ch := s.loads.DoChan("checkout-script", func() (interface{}, error) {
		s.mu.RLock()
		cached := s.script
		s.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		body, err := s.fetchScript(loadCtx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.script = body
		s.mu.Unlock()
		log.Printf("✅ checkout library loaded from %s (%d bytes)", s.cfg.ScriptURL, len(body))
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, res.Err)
		}
		return res.Val.([]byte), nil
	}
}

func (s *PaymentService) fetchScript(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.ScriptURL, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error %d", resp.StatusCode)
	}
	if len(body) == 0 {
		return nil, errors.New("empty checkout library")
	}
	return body, nil
}

// Initiate prepares the checkout for intent. It refuses to run over an
// insecure transport.
func (s *PaymentService) Initiate(ctx context.Context, intent models.PaymentIntent, secure bool) (CheckoutConfig, error) {
	if !secure {
		return CheckoutConfig{}, ErrInsecureTransport
	}
	if s.cfg.PublicKey == "" {
		return CheckoutConfig{}, ErrPaymentNotConfigured
	}
	if intent.Amount <= 0 {
		return CheckoutConfig{}, ErrInvalidAmount
	}
	if _, err := s.CheckoutScript(ctx); err != nil {
		return CheckoutConfig{}, err
	}

	currency := intent.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}
	redirect := intent.RedirectURL
	if redirect == "" {
		redirect = s.cfg.RedirectURL
	}
	return CheckoutConfig{
		PublicKey:      s.cfg.PublicKey,
		TxRef:          intent.TxRef,
		Amount:         intent.Amount,
		Currency:       currency,
		PaymentOptions: s.cfg.PaymentOptions,
		RedirectURL:    redirect,
		Customer:       intent.Customer,
		Customizations: Customizations{
			Title:       s.cfg.Title,
			Description: s.cfg.Description,
			Logo:        s.cfg.Logo,
		},
		ScriptURL: s.cfg.ScriptURL,
	}, nil
}

// LookupTransaction returns the gateway's raw verify JSON for transactionID.
// The secret key never leaves the server.
func (s *PaymentService) LookupTransaction(ctx context.Context, transactionID string) (int, []byte, error) {
	id := strings.TrimSpace(transactionID)
	if id == "" || strings.ContainsAny(id, "/?#") {
		return 0, nil, ErrInvalidTransactionID
	}
	if s.cfg.SecretKey == "" {
		return 0, nil, ErrPaymentNotConfigured
	}

	endpoint := strings.TrimRight(s.cfg.APIURL, "/") + "/transactions/" + url.PathEscape(id) + "/verify"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("cannot build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// Verify resolves a transaction to successful or failed. Transport errors,
// non-2xx answers, undecodable bodies and any status other than
// "successful" all count as failed.
func (s *PaymentService) Verify(ctx context.Context, transactionID string) VerificationResult {
	result := VerificationResult{Status: PaymentFailed, TransactionID: transactionID}

	status, body, err := s.LookupTransaction(ctx, transactionID)
	if err != nil {
		result.Reason = err.Error()
		return result
	}
	if status < 200 || status >= 300 {
		result.Reason = fmt.Sprintf("gateway HTTP %d", status)
		return result
	}

	var vr gatewayVerifyResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		result.Reason = "malformed verify response"
		return result
	}
	if vr.Data == nil {
		result.Reason = "verify response has no data"
		return result
	}
	result.TxRef = vr.Data.TxRef
	result.Amount = vr.Data.Amount
	result.Currency = vr.Data.Currency
	if vr.Status != "success" || vr.Data.Status != PaymentSuccessful {
		result.Reason = fmt.Sprintf("transaction status %q", vr.Data.Status)
		return result
	}
	result.Status = PaymentSuccessful
	return result
}
