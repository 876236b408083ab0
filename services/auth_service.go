package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
)

// Member is a loyalty member. Demo data only; nothing is persisted.
type Member struct {
	ID            uint   `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"fullName"`
	MemberSince   string `json:"memberSince"`
	Status        string `json:"status"`
	Points        int    `json:"points"`
	DiscountLevel string `json:"discountLevel"`
	passwordHash  []byte
}

// DiscountPercent parses DiscountLevel ("7%") into 7.
func (m Member) DiscountPercent() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m.DiscountLevel), "%")), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService is the demo sign-in stub: an in-memory member list seeded
// with one test member, bcrypt password hashes and HS256 tokens.
type AuthService struct {
	secret   []byte
	tokenTTL time.Duration

	mu      sync.RWMutex
	nextID  uint
	members map[string]*Member
}

func NewAuthService(secret string) (*AuthService, error) {
	s := &AuthService{
		secret:   []byte(secret),
		tokenTTL: 24 * time.Hour,
		members:  make(map[string]*Member),
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("test123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	s.nextID = 1
	s.members["test@test.com"] = &Member{
		ID:            1,
		Email:         "test@test.com",
		FullName:      "Test User",
		MemberSince:   "2023",
		Status:        "Gold Member",
		Points:        2500,
		DiscountLevel: "7%",
		passwordHash:  hash,
	}
	return s, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) GenerateToken(m *Member) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: m.ID,
		Email:  m.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Register adds a member and signs them in.
func (s *AuthService) Register(email, password, fullName string) (*Member, string, error) {
	key := normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	if _, exists := s.members[key]; exists {
		s.mu.Unlock()
		return nil, "", ErrEmailTaken
	}
	s.nextID++
	m := &Member{
		ID:            s.nextID,
		Email:         key,
		FullName:      strings.TrimSpace(fullName),
		MemberSince:   strconv.Itoa(time.Now().Year()),
		Status:        "Member",
		DiscountLevel: "0%",
		passwordHash:  hash,
	}
	s.members[key] = m
	s.mu.Unlock()

	token, err := s.GenerateToken(m)
	if err != nil {
		return nil, "", err
	}
	return m, token, nil
}

func (s *AuthService) SignIn(email, password string) (*Member, string, error) {
	s.mu.RLock()
	m, ok := s.members[normalizeEmail(email)]
	s.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.GenerateToken(m)
	if err != nil {
		return nil, "", err
	}
	return m, token, nil
}

// Profile resolves a bearer token to its member.
func (s *AuthService) Profile(tokenString string) (*Member, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[normalizeEmail(claims.Email)]
	if !ok || m.ID != claims.UserID {
		return nil, ErrInvalidToken
	}
	return m, nil
}
