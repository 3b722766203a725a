// Package crypto implements the encryption envelope codec: PBKDF2-SHA256
// key derivation plus AES-256-GCM sealing of the serialized document.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"casevault/config"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"
)

const (
	// EnvelopeVersion is the current envelope layout version.
	EnvelopeVersion = 1

	keyLength   = 32 // 256-bit key
	nonceLength = 12 // standard GCM nonce
)

type envelopeCodec struct {
	iterations int
	saltLength int
}

// Params holds dependencies for the codec, injected by Fx.
type Params struct {
	fx.In

	Config *config.Config
}

// New creates the envelope codec from crypto configuration.
func New(params Params) service.EnvelopeCodec {
	return &envelopeCodec{
		iterations: params.Config.Crypto.Iterations,
		saltLength: params.Config.Crypto.SaltLength,
	}
}

// DeriveKey stretches the secret with PBKDF2-SHA256. The secret is NFC
// normalized first so equal passwords derive equal keys on every platform,
// whatever the host string encoding was.
func (c *envelopeCodec) DeriveKey(secret string, salt []byte) service.Key {
	normalized := norm.NFC.String(secret)

	return pbkdf2.Key([]byte(normalized), salt, c.iterations, keyLength, sha256.New)
}

// NewSalt returns a fresh random salt.
func (c *envelopeCodec) NewSalt() ([]byte, error) {
	salt := make([]byte, c.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	return salt, nil
}

// Seal encrypts plaintext under key with a fresh nonce.
func (c *envelopeCodec) Seal(plaintext []byte, key service.Key, salt []byte) (*service.Envelope, error) {
	if len(key) != keyLength {
		return nil, errors.Errorf("key must be %d bytes, got %d", keyLength, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCM")
	}

	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "failed to generate nonce")
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	return &service.Envelope{
		Version:    EnvelopeVersion,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		IV:         base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// Open decrypts the envelope. A GCM authentication failure means the key is
// wrong (ErrWrongKey); anything structurally invalid about the envelope
// itself means the file is damaged (ErrMalformedEnvelope). The two must
// never be conflated: the first is "incorrect password", the second is
// "corrupted file".
func (c *envelopeCodec) Open(env *service.Envelope, key service.Key) ([]byte, error) {
	if env == nil {
		return nil, domainerrors.ErrMalformedEnvelope.WrapMessage("nil envelope")
	}
	if env.Version <= 0 || env.Version > EnvelopeVersion {
		return nil, domainerrors.ErrMalformedEnvelope.WrapMessage("unsupported envelope version")
	}

	nonce, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return nil, domainerrors.ErrMalformedEnvelope.WrapMessage("invalid iv encoding")
	}
	if len(nonce) != nonceLength {
		return nil, domainerrors.ErrMalformedEnvelope.WrapMessage("invalid iv length")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, domainerrors.ErrMalformedEnvelope.WrapMessage("invalid ciphertext encoding")
	}
	if len(ciphertext) == 0 {
		return nil, domainerrors.ErrMalformedEnvelope.WrapMessage("empty ciphertext")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCM")
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// Authentication failed: the structure was fine, the key was not.
		return nil, domainerrors.ErrWrongKey.WrapMessage("authentication tag mismatch")
	}

	return plaintext, nil
}

// IsEnvelope reports whether raw parses as an encrypted envelope rather
// than a plaintext document. The probe is structural only; it never
// attempts decryption.
func (c *envelopeCodec) IsEnvelope(raw []byte) bool {
	var probe struct {
		Salt       *string `json:"salt"`
		IV         *string `json:"iv"`
		Ciphertext *string `json:"ciphertext"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}

	return probe.Salt != nil && probe.IV != nil && probe.Ciphertext != nil
}

// DecodeSalt extracts the raw salt bytes from an envelope so a caller can
// re-derive the key for an existing vault.
func DecodeSalt(env *service.Envelope) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, domainerrors.ErrMalformedEnvelope.WrapMessage("invalid salt encoding")
	}
	if len(salt) == 0 {
		return nil, domainerrors.ErrMalformedEnvelope.WrapMessage("empty salt")
	}

	return salt, nil
}
