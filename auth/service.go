package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an authenticated user account
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`

	// bcrypt hash, never serialized
	PasswordHash string `json:"-"`
}

// VoiceProfile stores a user's enrolled voice biometric data
type VoiceProfile struct {
	UserID     string    `json:"user_id"`
	VoiceData  string    `json:"voice_data"`
	Passphrase string    `json:"passphrase"`
	CreatedAt  time.Time `json:"created_at"`
}

// Claims represents the JWT claims issued by the service
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Config holds token issuance parameters
type Config struct {
	JWTSecret         string
	ExpirationSeconds int
}

// Service provides user accounts, password verification and JWT issuance.
// User records live in memory behind the service's own lock; durable
// persistence is out of scope.
type Service struct {
	config Config

	mu            sync.RWMutex
	usersByEmail  map[string]*User
	usersByID     map[string]*User
	voiceProfiles map[string]*VoiceProfile
}

// NewService creates a new auth service
func NewService(config Config) (*Service, error) {
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("auth service requires a JWT secret")
	}
	if config.ExpirationSeconds <= 0 {
		config.ExpirationSeconds = 86400
	}
	return &Service{
		config:        config,
		usersByEmail:  make(map[string]*User),
		usersByID:     make(map[string]*User),
		voiceProfiles: make(map[string]*VoiceProfile),
	}, nil
}

// CreateUser registers a new user with a bcrypt-hashed password
func (s *Service) CreateUser(email, password, fullName string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[email]; exists {
		return User{}, ErrEmailExists
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		FullName:     fullName,
		CreatedAt:    time.Now().UTC(),
		PasswordHash: string(hash),
	}
	s.usersByEmail[email] = user
	s.usersByID[user.ID] = user

	return *user, nil
}

// Authenticate verifies an email/password pair and returns the user
func (s *Service) Authenticate(email, password string) (User, error) {
	s.mu.RLock()
	user, ok := s.usersByEmail[email]
	s.mu.RUnlock()

	if !ok {
		// Run a dummy comparison so response timing does not reveal
		// whether the email is registered.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return *user, nil
}

// GetUser looks up a user by id
func (s *Service) GetUser(userID string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByID[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return *user, nil
}

// SetVoiceProfile stores or replaces the voice biometric profile for a user
func (s *Service) SetVoiceProfile(userID, voiceData, passphrase string) VoiceProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := &VoiceProfile{
		UserID:     userID,
		VoiceData:  voiceData,
		Passphrase: passphrase,
		CreatedAt:  time.Now().UTC(),
	}
	s.voiceProfiles[userID] = profile
	return *profile
}

// HasVoiceProfile reports whether the user has an enrolled voice profile
func (s *Service) HasVoiceProfile(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.voiceProfiles[userID]
	return ok
}

// GenerateToken issues a signed JWT for the user
func (s *Service) GenerateToken(user User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.config.ExpirationSeconds) * time.Second)

	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateToken parses and validates a JWT, returning the user id from the
// subject claim
func (s *Service) ValidateToken(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// dummyHash is a valid bcrypt hash used for constant-time rejection of
// unknown emails.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("voiceflow-dummy"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()
