package services

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	s, err := NewAuthService("test-secret")
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return s
}

func TestSignInDemoMember(t *testing.T) {
	s := newTestAuth(t)
	m, token, err := s.SignIn(" Test@Test.com ", "test123")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if m.ID != 1 || m.DiscountPercent() != 7 || token == "" {
		t.Fatalf("unexpected member %+v", m)
	}

	profile, err := s.Profile(token)
	if err != nil || profile.Email != "test@test.com" {
		t.Fatalf("Profile: %+v (%v)", profile, err)
	}

	if _, _, err := s.SignIn("test@test.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := s.SignIn("nobody@test.com", "test123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	s := newTestAuth(t)
	m, token, err := s.Register("New@Example.com", "secret1", " New Member ")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if m.Email != "new@example.com" || m.FullName != "New Member" || m.DiscountPercent() != 0 {
		t.Fatalf("unexpected member %+v", m)
	}
	if p, err := s.Profile(token); err != nil || p.ID != m.ID {
		t.Fatalf("token should resolve to the new member: %+v (%v)", p, err)
	}
	if _, _, err := s.Register("new@example.com", "other12", "Other"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, _, err := s.SignIn("new@example.com", "secret1"); err != nil {
		t.Fatalf("SignIn after register: %v", err)
	}
}

func TestProfileRejectsBadTokens(t *testing.T) {
	s := newTestAuth(t)
	other, _ := NewAuthService("another-secret")
	_, foreign, _ := other.SignIn("test@test.com", "test123")

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		Email:  "test@test.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	for name, token := range map[string]string{"garbage": "not-a-jwt", "wrong secret": foreign, "expired": expired} {
		if _, err := s.Profile(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestDiscountPercent(t *testing.T) {
	cases := map[string]float64{"7%": 7, " 12.5 % ": 12.5, "": 0, "gold": 0, "-3%": 0}
	for level, want := range cases {
		if got := (Member{DiscountLevel: level}).DiscountPercent(); got != want {
			t.Errorf("DiscountPercent(%q) = %v, want %v", level, got, want)
		}
	}
}
