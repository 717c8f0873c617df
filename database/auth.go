package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crisis-response-service/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles all authentication-related database operations
type AuthService struct {
	db        *Database
	jwtSecret []byte
}

// NewAuthService creates a new authentication service instance
func NewAuthService(db *Database, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
	}
}

// CreateUser creates a new user with username/password authentication
func (s *AuthService) CreateUser(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	exists, err := s.db.UserExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return nil, errors.New("username already exists")
	}

	exists, err = s.db.UserExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, errors.New("email already registered")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Location: req.Location,
	}
	id, err := s.db.InsertUser(ctx, user, string(passwordHash))
	if err != nil {
		return nil, err
	}

	user.ID = id
	user.CreatedAt = time.Now()
	return user, nil
}

// Login authenticates a user by username and password and returns the user ID
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (int64, error) {
	userID, passwordHash, err := s.db.GetUserCredentials(ctx, req.Username)
	if err != nil {
		return 0, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return 0, errors.New("invalid credentials")
	}
	return userID, nil
}

// GenerateTokenPair generates both access and refresh tokens
func (s *AuthService) GenerateTokenPair(userID int64) (string, string, error) {
	// Calculate expiration times once to ensure consistency
	now := time.Now()
	accessExpiry := now.Add(1 * time.Hour)
	refreshExpiry := now.Add(30 * 24 * time.Hour)

	// Generate access token (1 hour expiry)
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"type":    "access",
		"exp":     accessExpiry.Unix(),
		"iat":     now.Unix(),
	})

	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return "", "", err
	}

	// Generate refresh token (30 days expiry)
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"type":    "refresh",
		"exp":     refreshExpiry.Unix(),
		"iat":     now.Unix(),
	})

	refreshTokenString, err := refreshToken.SignedString(s.jwtSecret)
	if err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenString, nil
}

// ValidateToken validates a JWT access token and returns the user ID
func (s *AuthService) ValidateToken(tokenString string) (int64, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return 0, err
	}

	// Check if it's an access token (not refresh)
	tokenType, _ := claims["type"].(string)
	if tokenType == "refresh" {
		return 0, errors.New("cannot use refresh token for authentication")
	}

	return userIDFromClaims(claims)
}

// ValidateRefreshToken validates a refresh token and returns the user ID
func (s *AuthService) ValidateRefreshToken(tokenString string) (int64, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return 0, err
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "refresh" {
		return 0, errors.New("not a refresh token")
	}

	return userIDFromClaims(claims)
}

func (s *AuthService) parseClaims(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func userIDFromClaims(claims jwt.MapClaims) (int64, error) {
	// Numeric claims decode as float64
	raw, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("invalid user id in token")
	}
	return int64(raw), nil
}
