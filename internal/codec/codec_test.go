package codec

import (
	"encoding/json"
	"testing"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	o := New()
	payloads := [][]byte{
		[]byte(`{"user":{"name":"ada"}}`),
		[]byte(""),
		[]byte("plain text"),
		{0x00, 0xff, 0x10, 0x80},
	}

	for _, payload := range payloads {
		encoded := o.Encode(payload)
		decoded, err := o.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(%q) error: %v", encoded, err)
		}
		if string(decoded) != string(payload) {
			t.Errorf("round trip = %q, want %q", decoded, payload)
		}
	}
}

// Corrupting a single character of the encoded form must produce a decode
// error, not a panic and not silent garbage. The coordinator maps that error
// to an empty tree.
func TestDecode_CorruptedPayloadFails(t *testing.T) {
	o := New()
	original, _ := json.Marshal(map[string]any{"user": map[string]any{"name": "ada"}})
	encoded := o.Encode(original)

	corrupted := []byte(encoded)
	if corrupted[2] == 'A' {
		corrupted[2] = 'B'
	} else {
		corrupted[2] = 'A'
	}

	if _, err := o.Decode(string(corrupted)); err == nil {
		t.Error("Decode accepted a corrupted payload")
	}
}

func TestDecode_InvalidBase64(t *testing.T) {
	o := New()
	if _, err := o.Decode("not base64!!!"); err == nil {
		t.Error("Decode accepted invalid base64")
	}
}

func TestDecode_Truncated(t *testing.T) {
	o := New()
	if _, err := o.Decode("AA"); err == nil {
		t.Error("Decode accepted a truncated payload")
	}
}

func TestNewWithKey_IndependentKeystreams(t *testing.T) {
	a := NewWithKey([]byte("key-a"))
	b := NewWithKey([]byte("key-b"))

	encoded := a.Encode([]byte("secret"))
	if _, err := b.Decode(encoded); err == nil {
		t.Error("payload encoded under key-a decoded cleanly under key-b")
	}

	decoded, err := a.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode under the matching key failed: %v", err)
	}
	if string(decoded) != "secret" {
		t.Errorf("Decode = %q, want %q", decoded, "secret")
	}
}
