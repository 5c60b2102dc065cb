package services_test

import (
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"catalog/internal/apperrors"
	"catalog/internal/dto"
	"catalog/internal/models"
	"catalog/internal/services"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// TestMain suppresses service logging for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(os.Stdout)
	os.Exit(m.Run())
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	req := dto.RegisterRequest{Username: "admin", Email: "admin@example.com", Password: "password123"}

	// Successful registration
	mockRepo.On("GetByUsername", req.Username).Return(nil, apperrors.NotFound("user not found with username: admin")).Once()
	mockRepo.On("GetByEmail", req.Email).Return(nil, apperrors.NotFound("user not found with email: admin@example.com")).Once()
	mockRepo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		// The password must be stored hashed, never in clear text.
		return u.Username == "admin" && u.Password != "password123" &&
			bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("password123")) == nil
	})).Return(nil).Once()

	err := authService.Register(req)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Username already taken
	mockRepo.On("GetByUsername", req.Username).Return(&models.User{ID: 1, Username: "admin"}, nil).Once()
	err = authService.Register(req)
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeDuplicate, apperrors.CodeOf(err))
	mockRepo.AssertExpectations(t)

	// Email already registered
	mockRepo.On("GetByUsername", req.Username).Return(nil, apperrors.NotFound("user not found with username: admin")).Once()
	mockRepo.On("GetByEmail", req.Email).Return(&models.User{ID: 1, Email: req.Email}, nil).Once()
	err = authService.Register(req)
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeDuplicate, apperrors.CodeOf(err))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_RepositoryError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	// A failing uniqueness lookup must propagate, not read as "name is
	// free".
	cause := errors.New("connection reset")
	mockRepo.On("GetByUsername", "admin").Return(nil, cause).Once()

	err := authService.Register(dto.RegisterRequest{Username: "admin", Email: "admin@example.com", Password: "password123"})

	assert.ErrorIs(t, err, cause)
	assert.NotEqual(t, apperrors.CodeDuplicate, apperrors.CodeOf(err))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       123,
		Username: "admin",
		Email:    "admin@example.com",
		Password: string(hashedPassword),
	}

	// Successful login
	mockRepo.On("GetByUsername", user.Username).Return(user, nil).Once()

	token, err := authService.Login("admin", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, float64(user.ID), claims["user_id"])
	assert.Equal(t, user.Username, claims["username"])
	mockRepo.AssertExpectations(t)

	// Wrong password
	mockRepo.On("GetByUsername", user.Username).Return(user, nil).Once()
	_, err = authService.Login("admin", "wrongpassword")
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "invalid credentials")
	mockRepo.AssertExpectations(t)

	// Unknown user yields the same generic error
	mockRepo.On("GetByUsername", "nobody").Return(nil, apperrors.NotFound("user not found with username: nobody")).Once()
	_, err = authService.Login("nobody", "password123")
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "invalid credentials")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  float64(123),
		"username": "admin",
		"exp":      jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, float64(123), claims["user_id"])
	assert.Equal(t, "admin", claims["username"])

	// Garbage token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	// Expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  float64(123),
		"username": "admin",
		"exp":      jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}
