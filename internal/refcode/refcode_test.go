package refcode

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c, err := New("test-salt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []int64{1, 42, 99999} {
		ref, err := c.Encode(id)
		if err != nil {
			t.Fatalf("encode %d: %v", id, err)
		}
		if !strings.HasPrefix(ref, "RP-") {
			t.Fatalf("reference %q missing prefix", ref)
		}
		got, err := c.Decode(ref)
		if err != nil {
			t.Fatalf("decode %q: %v", ref, err)
		}
		if got != id {
			t.Fatalf("round trip %d -> %q -> %d", id, ref, got)
		}
	}
}

func TestDecodeGarbage(t *testing.T) {
	c, err := New("test-salt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Decode("RP-!!"); err == nil {
		t.Fatalf("want error for garbage reference")
	}
}
