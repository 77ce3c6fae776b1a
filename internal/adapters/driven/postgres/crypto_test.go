package postgres

import (
	"bytes"
	"testing"
)

var testKey = []byte("01234567890123456789012345678901")

func TestSecretEncryptor_RoundTrip(t *testing.T) {
	encryptor, err := NewSecretEncryptor(testKey)
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}

	blob, err := encryptor.EncryptString("sk-test-key")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}

	// Verify blob format
	if len(blob) < 1+nonceSize {
		t.Fatalf("blob too short: %d bytes", len(blob))
	}
	if blob[0] != secretVersion {
		t.Errorf("version byte: got %d, want %d", blob[0], secretVersion)
	}
	if bytes.Contains(blob, []byte("sk-test-key")) {
		t.Error("plaintext leaked into the blob")
	}

	decrypted, err := encryptor.DecryptString(blob)
	if err != nil {
		t.Fatalf("DecryptString: %v", err)
	}
	if decrypted != "sk-test-key" {
		t.Errorf("got %q, want %q", decrypted, "sk-test-key")
	}
}

func TestSecretEncryptor_InvalidKeySize(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33, 64} {
		if _, err := NewSecretEncryptor(make([]byte, size)); err == nil {
			t.Errorf("key size %d accepted", size)
		}
	}
}

func TestSecretEncryptor_WrongKey(t *testing.T) {
	encryptor, err := NewSecretEncryptor(testKey)
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}

	blob, err := encryptor.EncryptString("secret")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}

	other, err := NewSecretEncryptor([]byte("99999999999999999999999999999999"))
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}

	if _, err := other.DecryptString(blob); err != ErrDecryptionFailed {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestSecretEncryptor_CorruptedBlob(t *testing.T) {
	encryptor, err := NewSecretEncryptor(testKey)
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}

	blob, err := encryptor.EncryptString("secret")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}

	// Flip a ciphertext byte
	blob[len(blob)-1] ^= 0xFF
	if _, err := encryptor.DecryptString(blob); err != ErrDecryptionFailed {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}

	// Too-small blob
	if _, err := encryptor.DecryptString([]byte{secretVersion, 0x01}); err != ErrInvalidBlobSize {
		t.Errorf("expected ErrInvalidBlobSize, got %v", err)
	}

	// Unknown version
	blob[0] = 0x7F
	if _, err := encryptor.DecryptString(blob); err == nil {
		t.Error("unknown version accepted")
	}
}

func TestSecretEncryptor_NoncesAreUnique(t *testing.T) {
	encryptor, err := NewSecretEncryptor(testKey)
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}

	a, err := encryptor.EncryptString("same input")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	b, err := encryptor.EncryptString("same input")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}

	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same input produced identical blobs")
	}
}
