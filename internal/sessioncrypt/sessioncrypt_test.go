package sessioncrypt

import (
	"bytes"
	"testing"

	"expertminer/internal/models"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	box, err := NewBox(testKey())
	if err != nil {
		t.Fatalf("NewBox() error = %v", err)
	}

	cookies := []models.Cookie{
		{Name: "li_at", Value: "secret-token", Domain: ".linkedin.com", Secure: true, HTTPOnly: true},
		{Name: "JSESSIONID", Value: "ajax:123", Path: "/"},
	}

	sealed, err := box.SealCookies(cookies)
	if err != nil {
		t.Fatalf("SealCookies() error = %v", err)
	}
	if bytes.Contains(sealed, []byte("secret-token")) {
		t.Error("sealed payload contains plaintext cookie value")
	}

	got, err := box.OpenCookies(sealed)
	if err != nil {
		t.Fatalf("OpenCookies() error = %v", err)
	}
	if len(got) != 2 || got[0].Value != "secret-token" || got[1].Name != "JSESSIONID" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestOpenRejectsTamperedPayload(t *testing.T) {
	box, _ := NewBox(testKey())
	sealed, err := box.SealCookies([]models.Cookie{{Name: "a", Value: "b"}})
	if err != nil {
		t.Fatalf("SealCookies() error = %v", err)
	}

	sealed[len(sealed)-1] ^= 0xff
	if _, err := box.OpenCookies(sealed); err == nil {
		t.Error("expected error for tampered payload")
	}
}

func TestNewBoxRejectsBadKey(t *testing.T) {
	if _, err := NewBox([]byte("short")); err == nil {
		t.Error("expected error for short key")
	}
}

func TestOpenRejectsTruncatedPayload(t *testing.T) {
	box, _ := NewBox(testKey())
	if _, err := box.OpenCookies([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated payload")
	}
}
