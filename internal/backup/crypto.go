package backup

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Parameters of the password-based encryption scheme. These are part of
// the wire format contract with existing backups and must not change
// without a new algorithm identifier.
const (
	// AlgorithmID tags encrypted envelopes.
	AlgorithmID = "AES-GCM"

	kdfIterations = 100_000
	keyLength     = 32 // AES-256
	saltLength    = 16
	nonceLength   = 12
)

// Envelope is the on-disk form of an encrypted backup. It fully replaces
// the plaintext document; consumers detect it by the presence of the
// encryption and data fields, never by file extension.
type Envelope struct {
	Encryption string `json:"encryption"`
	IV         string `json:"iv"`
	Salt       string `json:"salt"`
	Data       string `json:"data"`
}

// Cryptor derives keys from passwords and seals/opens backup documents.
// Randomness is injected so tests can run it deterministically.
type Cryptor struct {
	rand       io.Reader
	iterations int
}

// NewCryptor creates a Cryptor using the platform's secure randomness.
func NewCryptor() *Cryptor {
	return &Cryptor{rand: rand.Reader, iterations: kdfIterations}
}

// NewCryptorWithRand creates a Cryptor reading salts and nonces from r.
// For tests only; production callers use NewCryptor.
func NewCryptorWithRand(r io.Reader) *Cryptor {
	return &Cryptor{rand: r, iterations: kdfIterations}
}

// deriveKey runs PBKDF2-SHA256 over the password. Key derivation is
// deliberately slow, so it honors context cancellation.
func (c *Cryptor) deriveKey(ctx context.Context, password string, salt []byte) ([]byte, error) {
	derived := make(chan []byte, 1)
	go func() {
		derived <- pbkdf2.Key([]byte(password), salt, c.iterations, keyLength, sha256.New)
	}()

	select {
	case key := <-derived:
		return key, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Encrypt seals a plaintext document with a password-derived key. Each
// call draws a fresh salt and nonce; a nonce is never reused with the
// same derived key.
func (c *Cryptor) Encrypt(ctx context.Context, plaintext []byte, password string) (*Envelope, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(c.rand, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceLength)
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	key, err := c.deriveKey(ctx, password, salt)
	if err != nil {
		return nil, err
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	return &Envelope{
		Encryption: AlgorithmID,
		IV:         base64.StdEncoding.EncodeToString(nonce),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Data:       base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// Decrypt re-derives the key from the password and the envelope's salt
// and opens the ciphertext. Any failure past envelope decoding surfaces
// as the single undifferentiated ErrDecryptionFailed: callers cannot
// distinguish a wrong password from corrupted bytes.
func (c *Cryptor) Decrypt(ctx context.Context, envelope *Envelope, password string) ([]byte, error) {
	if envelope.Encryption != AlgorithmID {
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrBackupFormatInvalid, envelope.Encryption)
	}

	salt, err := base64.StdEncoding.DecodeString(envelope.Salt)
	if err != nil || len(salt) == 0 {
		return nil, ErrDecryptionFailed
	}
	nonce, err := base64.StdEncoding.DecodeString(envelope.IV)
	if err != nil || len(nonce) != nonceLength {
		return nil, ErrDecryptionFailed
	}
	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Data)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	key, err := c.deriveKey(ctx, password, salt)
	if err != nil {
		return nil, err
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}
