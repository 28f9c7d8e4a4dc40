package utils

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"landestate/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT(domain.EmployeeParticipant(7), "bo@x.io", "Bo", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.EmployeeParticipant(7), claims.Participant())
	assert.Equal(t, "employee:7", claims.Subject)
	assert.Equal(t, "bo@x.io", claims.Email)
}

func TestParseJWTRejectsWrongSecretAndExpired(t *testing.T) {
	token, err := GenerateJWT(domain.UserParticipant(1), "a@x.io", "A", "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(token, "other")
	assert.Error(t, err)

	expired, err := GenerateJWT(domain.UserParticipant(1), "a@x.io", "A", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)
}

func TestGenerateJWTRequiresSecret(t *testing.T) {
	_, err := GenerateJWT(domain.UserParticipant(1), "a@x.io", "A", "", time.Hour)
	assert.Error(t, err)
}

func TestJWTPayloadCarriesNoSecrets(t *testing.T) {
	token, err := GenerateJWT(domain.UserParticipant(3), "c@x.io", "C", "secret", time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	for _, field := range []string{"password", "resetToken", "ssn", "salary"} {
		assert.NotContains(t, string(payload), field)
	}
}
