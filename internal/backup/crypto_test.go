package backup

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// patternReader yields a repeating byte pattern, making salts and nonces
// deterministic in tests.
type patternReader struct {
	next byte
}

func (r *patternReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}
	return len(p), nil
}

func TestCryptor_EncryptDecryptRoundTrip(t *testing.T) {
	ctx := context.Background()
	cryptor := NewCryptor()
	plaintext := []byte(`{"meta":{"version":1,"app":"Finanza"}}`)

	envelope, err := cryptor.Encrypt(ctx, plaintext, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmID, envelope.Encryption)

	salt, err := base64.StdEncoding.DecodeString(envelope.Salt)
	require.NoError(t, err)
	assert.Len(t, salt, saltLength)
	nonce, err := base64.StdEncoding.DecodeString(envelope.IV)
	require.NoError(t, err)
	assert.Len(t, nonce, nonceLength)

	decrypted, err := cryptor.Decrypt(ctx, envelope, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestCryptor_WrongPassword(t *testing.T) {
	ctx := context.Background()
	cryptor := NewCryptor()

	envelope, err := cryptor.Encrypt(ctx, []byte("payload"), "right")
	require.NoError(t, err)

	_, err = cryptor.Decrypt(ctx, envelope, "wrong")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestCryptor_TamperedCiphertext(t *testing.T) {
	ctx := context.Background()
	cryptor := NewCryptor()

	envelope, err := cryptor.Encrypt(ctx, []byte("payload"), "pw")
	require.NoError(t, err)

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Data)
	require.NoError(t, err)
	ciphertext[0] ^= 0xff
	envelope.Data = base64.StdEncoding.EncodeToString(ciphertext)

	// Corruption and wrong password are indistinguishable.
	_, err = cryptor.Decrypt(ctx, envelope, "pw")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestCryptor_UnknownAlgorithm(t *testing.T) {
	cryptor := NewCryptor()
	_, err := cryptor.Decrypt(context.Background(), &Envelope{Encryption: "ROT13", Data: "x"}, "pw")
	assert.ErrorIs(t, err, ErrBackupFormatInvalid)
}

func TestCryptor_InjectedRandomnessIsDeterministic(t *testing.T) {
	ctx := context.Background()

	first, err := NewCryptorWithRand(&patternReader{}).Encrypt(ctx, []byte("payload"), "pw")
	require.NoError(t, err)
	second, err := NewCryptorWithRand(&patternReader{}).Encrypt(ctx, []byte("payload"), "pw")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCryptor_DeriveKeyHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cryptor := NewCryptor()
	// Inflate the cost so cancellation wins the race.
	cryptor.iterations = 50_000_000

	_, err := cryptor.Encrypt(ctx, []byte("payload"), "pw")
	assert.ErrorIs(t, err, context.Canceled)
}
