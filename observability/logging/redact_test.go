package logging

import "testing"

func TestMaskFieldRedactsAddresses(t *testing.T) {
	attr := MaskField("recipient", "vendor-wallet-1")
	if attr.Value.String() != RedactedValue {
		t.Fatalf("expected redacted value, got %q", attr.Value.String())
	}
}

func TestMaskFieldPassesAllowlistedKeys(t *testing.T) {
	for _, key := range []string{"event", "id", "amount", "status", "priority"} {
		attr := MaskField(key, "visible")
		if attr.Value.String() != "visible" {
			t.Fatalf("expected %q to pass through, got %q", key, attr.Value.String())
		}
	}
}

func TestMaskValueLeavesEmptyAlone(t *testing.T) {
	if got := MaskValue(""); got != "" {
		t.Fatalf("expected empty passthrough, got %q", got)
	}
	if got := MaskValue("secret"); got != RedactedValue {
		t.Fatalf("expected redaction, got %q", got)
	}
}
