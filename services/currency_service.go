package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"hotel-booking/utils"
)

const DefaultKESToUSD = 0.0074

type RateSnapshot struct {
	Base      string    `json:"base"`
	Quote     string    `json:"quote"`
	Rate      float64   `json:"rate"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CurrencyService converts KES to USD. The rate is always set: a failed
// refresh keeps whatever rate was there before.
type CurrencyService struct {
	mu        sync.RWMutex
	rate      float64
	source    string
	updatedAt time.Time

	quoteURL   string
	httpClient *http.Client
}

func NewCurrencyService(defaultRate float64, quoteURL string) *CurrencyService {
	if defaultRate <= 0 {
		defaultRate = DefaultKESToUSD
	}
	return &CurrencyService{
		rate:       defaultRate,
		source:     "default",
		updatedAt:  time.Now(),
		quoteURL:   quoteURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *CurrencyService) Rate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

func (s *CurrencyService) Snapshot() RateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RateSnapshot{Base: "KES", Quote: "USD", Rate: s.rate, Source: s.source, UpdatedAt: s.updatedAt}
}

// Convert turns a KES amount into USD rounded to cents.
func (s *CurrencyService) Convert(amountKES float64) float64 {
	return utils.RoundTo2(amountKES * s.Rate())
}

type exchangeQuote struct {
	Rates map[string]float64 `json:"rates"`
}

// Refresh pulls a new rate. It returns the rate in effect afterwards and the
// reason the remote quote was not used, if any.
func (s *CurrencyService) Refresh(ctx context.Context) (float64, error) {
	if s.quoteURL == "" {
		return s.Rate(), nil
	}
	rate, err := s.fetchQuote(ctx)
	if err != nil {
		return s.Rate(), err
	}

	s.mu.Lock()
	s.rate = rate
	s.source = "remote"
	s.updatedAt = time.Now()
	s.mu.Unlock()
	return rate, nil
}

func (s *CurrencyService) fetchQuote(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.quoteURL, nil)
	if err != nil {
		return 0, fmt.Errorf("cannot build request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("HTTP error %d", resp.StatusCode)
	}
	var quote exchangeQuote
	if err := json.Unmarshal(body, &quote); err != nil {
		return 0, fmt.Errorf("JSON parse error: %w", err)
	}
	rate, ok := quote.Rates["USD"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("quote has no usable USD rate")
	}
	return rate, nil
}

// RunRefresher refreshes immediately and then every interval until ctx ends.
func (s *CurrencyService) RunRefresher(ctx context.Context, interval time.Duration) {
	if s.quoteURL == "" || interval <= 0 {
		return
	}
	refresh := func() {
		rate, err := s.Refresh(ctx)
		if err != nil {
			log.Printf("⚠️  exchange rate refresh failed, keeping %.6f: %v", rate, err)
			return
		}
		log.Printf("✅ exchange rate KES→USD updated to %.6f", rate)
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
