package crypto

import (
	"testing"

	"casevault/config"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) service.EnvelopeCodec {
	t.Helper()
	cfg := &config.Config{}
	cfg.Crypto = &config.CryptoConfig{
		// Low iteration count keeps the suite fast; production uses 600k.
		Iterations: 1000,
		SaltLength: 16,
	}

	return New(Params{Config: cfg})
}

func TestEnvelopeCodec_SealOpenRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	salt, err := codec.NewSalt()
	require.NoError(t, err)
	require.Len(t, salt, 16)

	key := codec.DeriveKey("correct horse battery staple", salt)
	plaintext := []byte(`{"version":3,"cases":[]}`)

	env, err := codec.Seal(plaintext, key, salt)
	require.NoError(t, err)
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.NotEmpty(t, env.Salt)
	assert.NotEmpty(t, env.IV)
	assert.NotEmpty(t, env.Ciphertext)

	opened, err := codec.Open(env, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestEnvelopeCodec_FreshIVPerSeal(t *testing.T) {
	codec := newTestCodec(t)

	salt, err := codec.NewSalt()
	require.NoError(t, err)
	key := codec.DeriveKey("secret", salt)

	first, err := codec.Seal([]byte("payload"), key, salt)
	require.NoError(t, err)
	second, err := codec.Seal([]byte("payload"), key, salt)
	require.NoError(t, err)

	assert.NotEqual(t, first.IV, second.IV)
	assert.NotEqual(t, first.Ciphertext, second.Ciphertext)
}

func TestEnvelopeCodec_WrongKeyIsNotCorruption(t *testing.T) {
	codec := newTestCodec(t)

	salt, err := codec.NewSalt()
	require.NoError(t, err)
	key := codec.DeriveKey("right password", salt)

	env, err := codec.Seal([]byte("payload"), key, salt)
	require.NoError(t, err)

	wrongKey := codec.DeriveKey("wrong password", salt)
	_, err = codec.Open(env, wrongKey)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrWrongKey)
	assert.NotErrorIs(t, err, domainerrors.ErrMalformedEnvelope)
}

func TestEnvelopeCodec_MalformedEnvelope(t *testing.T) {
	codec := newTestCodec(t)

	salt, err := codec.NewSalt()
	require.NoError(t, err)
	key := codec.DeriveKey("secret", salt)

	valid, err := codec.Seal([]byte("payload"), key, salt)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(env *service.Envelope)
	}{
		{"unsupported version", func(env *service.Envelope) { env.Version = EnvelopeVersion + 1 }},
		{"zero version", func(env *service.Envelope) { env.Version = 0 }},
		{"invalid iv encoding", func(env *service.Envelope) { env.IV = "not base64!!!" }},
		{"wrong iv length", func(env *service.Envelope) { env.IV = "c2hvcnQ=" }},
		{"invalid ciphertext encoding", func(env *service.Envelope) { env.Ciphertext = "%%%" }},
		{"empty ciphertext", func(env *service.Envelope) { env.Ciphertext = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := *valid
			tt.mutate(&env)

			_, err := codec.Open(&env, key)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrMalformedEnvelope)
			assert.NotErrorIs(t, err, domainerrors.ErrWrongKey)
		})
	}
}

func TestEnvelopeCodec_OpenNilEnvelope(t *testing.T) {
	codec := newTestCodec(t)

	_, err := codec.Open(nil, make(service.Key, 32))
	assert.ErrorIs(t, err, domainerrors.ErrMalformedEnvelope)
}

func TestEnvelopeCodec_DeriveKeyNormalizesSecret(t *testing.T) {
	codec := newTestCodec(t)
	salt := []byte("0123456789abcdef")

	// "é" composed (U+00E9) versus "e" + combining acute (U+0065 U+0301).
	composed := codec.DeriveKey("café", salt)
	decomposed := codec.DeriveKey("café", salt)

	assert.Equal(t, composed, decomposed)
	assert.Len(t, composed, 32)
}

func TestEnvelopeCodec_DeriveKeyDependsOnSalt(t *testing.T) {
	codec := newTestCodec(t)

	a := codec.DeriveKey("secret", []byte("0123456789abcdef"))
	b := codec.DeriveKey("secret", []byte("fedcba9876543210"))

	assert.NotEqual(t, a, b)
}

func TestEnvelopeCodec_SealRejectsBadKeyLength(t *testing.T) {
	codec := newTestCodec(t)

	_, err := codec.Seal([]byte("payload"), make(service.Key, 16), []byte("salt"))
	assert.Error(t, err)
}

func TestEnvelopeCodec_IsEnvelope(t *testing.T) {
	codec := newTestCodec(t)

	assert.True(t, codec.IsEnvelope([]byte(`{"version":1,"salt":"c2FsdA==","iv":"aXY=","ciphertext":"Y3Q="}`)))
	assert.False(t, codec.IsEnvelope([]byte(`{"version":3,"cases":[],"people":[]}`)))
	assert.False(t, codec.IsEnvelope([]byte(`not json`)))
	assert.False(t, codec.IsEnvelope([]byte(`[]`)))
}

func TestDecodeSalt(t *testing.T) {
	salt, err := DecodeSalt(&service.Envelope{Salt: "c2FsdHNhbHQ="})
	require.NoError(t, err)
	assert.Equal(t, []byte("saltsalt"), salt)

	_, err = DecodeSalt(&service.Envelope{Salt: "%%%"})
	assert.ErrorIs(t, err, domainerrors.ErrMalformedEnvelope)

	_, err = DecodeSalt(&service.Envelope{Salt: ""})
	assert.ErrorIs(t, err, domainerrors.ErrMalformedEnvelope)
}
