package services

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"catalog/internal/apperrors"
	"catalog/internal/dto"
	"catalog/internal/models"
	"catalog/internal/repositories"
)

// AuthService handles registration and authentication of the admin
// accounts that guard catalog mutations.
type AuthService struct {
	users     repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
}

// Register creates a new admin account with a bcrypt-hashed password.
// Username and email must be unused.
func (s *AuthService) Register(req dto.RegisterRequest) error {
	existing, err := s.users.GetByUsername(req.Username)
	if err != nil && !apperrors.IsCode(err, apperrors.CodeNotFound) {
		return err
	}
	if existing != nil {
		return apperrors.Duplicate("username '%s' already taken", req.Username)
	}

	existing, err = s.users.GetByEmail(req.Email)
	if err != nil && !apperrors.IsCode(err, apperrors.CodeNotFound) {
		return err
	}
	if existing != nil {
		return apperrors.Duplicate("email '%s' already registered", req.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
	}
	return s.users.Create(user)
}

// Login authenticates a user and returns a signed JWT on success. The
// error deliberately does not reveal whether the username exists.
func (s *AuthService) Login(username, password string) (string, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return "", apperrors.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperrors.Unauthorized("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
		"iat":      time.Now().Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token").Wrap(err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperrors.Unauthorized("invalid token")
}
