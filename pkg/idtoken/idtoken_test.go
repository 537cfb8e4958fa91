package idtoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

func TestSignAndVerify(t *testing.T) {
	h, err := NewHMAC("secret", "issuer-a")
	require.NoError(t, err)

	token, err := h.Sign(domain.Identity{Email: "alice@x.io", DisplayName: "Alice"}, time.Minute)
	require.NoError(t, err)

	identity, err := h.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, &domain.Identity{Email: "alice@x.io", DisplayName: "Alice"}, identity)
}

func TestVerifyRejects(t *testing.T) {
	h, err := NewHMAC("secret", "issuer-a")
	require.NoError(t, err)
	wrongSecret, err := NewHMAC("other", "issuer-a")
	require.NoError(t, err)
	wrongIssuer, err := NewHMAC("secret", "issuer-b")
	require.NoError(t, err)

	identity := domain.Identity{Email: "alice@x.io"}
	forged, err := wrongSecret.Sign(identity, time.Minute)
	require.NoError(t, err)
	foreign, err := wrongIssuer.Sign(identity, time.Minute)
	require.NoError(t, err)
	expired, err := h.Sign(identity, -time.Minute)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"wrong secret": forged,
		"wrong issuer": foreign,
		"expired":      expired,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIssuerCheckCanBeDisabled(t *testing.T) {
	signer, err := NewHMAC("secret", "anything")
	require.NoError(t, err)
	verifier, err := NewHMAC("secret", "")
	require.NoError(t, err)

	token, err := signer.Sign(domain.Identity{Email: "a@x.io"}, time.Minute)
	require.NoError(t, err)
	_, err = verifier.Verify(token)
	assert.NoError(t, err)
}

func TestSignRequiresEmail(t *testing.T) {
	h, err := NewHMAC("secret", "")
	require.NoError(t, err)
	_, err = h.Sign(domain.Identity{DisplayName: "nobody"}, time.Minute)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = NewHMAC("", "")
	assert.Error(t, err)
}
