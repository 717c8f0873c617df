package database

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"crisis-response-service/models"
)

const testJWTSecret = "test-secret"

func TestCreateUser(t *testing.T) {
	it(func() {
		auth := NewAuthService(testDB, testJWTSecret)
		req := models.RegisterRequest{
			Username: "carol",
			Email:    "carol@example.com",
			Phone:    "+15550000099",
			Location: "Downtown",
			Password: "correct horse",
		}

		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM users WHERE username = (.+)\\)").
			WithArgs(req.Username).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM users WHERE email = (.+)\\)").
			WithArgs(req.Email).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("INSERT INTO users (.+)").
			WithArgs(req.Username, req.Email, req.Phone, req.Location, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(3, 1))

		user, err := auth.CreateUser(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, int64(3), user.ID)
		assert.Equal(t, "carol", user.Username)
	})
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	it(func() {
		auth := NewAuthService(testDB, testJWTSecret)

		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM users WHERE username = (.+)\\)").
			WithArgs("carol").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := auth.CreateUser(context.Background(), models.RegisterRequest{
			Username: "carol",
			Email:    "carol@example.com",
			Password: "correct horse",
		})
		require.Error(t, err)
		assert.Equal(t, "username already exists", err.Error())
	})
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	it(func() {
		auth := NewAuthService(testDB, testJWTSecret)

		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM users WHERE username = (.+)\\)").
			WithArgs("carol").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM users WHERE email = (.+)\\)").
			WithArgs("carol@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := auth.CreateUser(context.Background(), models.RegisterRequest{
			Username: "carol",
			Email:    "carol@example.com",
			Password: "correct horse",
		})
		require.Error(t, err)
		assert.Equal(t, "email already registered", err.Error())
	})
}

func TestLogin(t *testing.T) {
	it(func() {
		auth := NewAuthService(testDB, testJWTSecret)

		hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
		require.NoError(t, err)

		mock.ExpectQuery("SELECT id, password_hash FROM users WHERE username = (.+)").
			WithArgs("carol").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(3, string(hash)))

		userID, err := auth.Login(context.Background(), models.LoginRequest{
			Username: "carol",
			Password: "correct horse",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), userID)
	})
}

func TestLoginWrongPassword(t *testing.T) {
	it(func() {
		auth := NewAuthService(testDB, testJWTSecret)

		hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
		require.NoError(t, err)

		mock.ExpectQuery("SELECT id, password_hash FROM users WHERE username = (.+)").
			WithArgs("carol").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(3, string(hash)))

		_, err = auth.Login(context.Background(), models.LoginRequest{
			Username: "carol",
			Password: "battery staple",
		})
		require.Error(t, err)
		assert.Equal(t, "invalid credentials", err.Error())
	})
}

func TestTokenPairRoundTrip(t *testing.T) {
	auth := NewAuthService(nil, testJWTSecret)

	access, refresh, err := auth.GenerateTokenPair(3)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	userID, err := auth.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, int64(3), userID)

	userID, err = auth.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, int64(3), userID)
}

func TestValidateTokenRejectsRefreshToken(t *testing.T) {
	auth := NewAuthService(nil, testJWTSecret)

	_, refresh, err := auth.GenerateTokenPair(3)
	require.NoError(t, err)

	_, err = auth.ValidateToken(refresh)
	require.Error(t, err)
	assert.Equal(t, "cannot use refresh token for authentication", err.Error())
}

func TestValidateRefreshTokenRejectsAccessToken(t *testing.T) {
	auth := NewAuthService(nil, testJWTSecret)

	access, _, err := auth.GenerateTokenPair(3)
	require.NoError(t, err)

	_, err = auth.ValidateRefreshToken(access)
	require.Error(t, err)
	assert.Equal(t, "not a refresh token", err.Error())
}

func TestValidateTokenWrongSecret(t *testing.T) {
	auth := NewAuthService(nil, testJWTSecret)
	other := NewAuthService(nil, "different-secret")

	access, _, err := auth.GenerateTokenPair(3)
	require.NoError(t, err)

	_, err = other.ValidateToken(access)
	require.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	auth := NewAuthService(nil, testJWTSecret)

	_, err := auth.ValidateToken("not-a-token")
	require.Error(t, err)
}
