package ai

import (
	"context"
	"testing"

	"lab-inventory-api-server/config"
	"lab-inventory-api-server/internal/ingest"
)

func TestStripCodeFence(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{`[{"name":"DHT22"}]`, `[{"name":"DHT22"}]`},
		{"```json\n[{\"name\":\"DHT22\"}]\n```", `[{"name":"DHT22"}]`},
		{"```\n[]\n```", `[]`},
		{"  \n[]\n  ", `[]`},
	}
	for _, tc := range testCases {
		if got := stripCodeFence(tc.in); got != tc.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDisabledClientDegradesGracefully(t *testing.T) {
	c := NewClient(config.GeminiConfig{Model: "gemini-2.5-flash"})
	if c.Enabled() {
		t.Fatal("client without an API key must report disabled")
	}

	drafts := []ingest.ComponentDraft{{Name: "DHT22"}}
	if got := c.EnrichComponents(context.Background(), drafts); len(got) != 1 || got[0].Name != "DHT22" {
		t.Errorf("enrichment must pass drafts through unchanged, got %+v", got)
	}

	if _, err := c.IdentifyComponent(context.Background(), []byte{0x1}, "image/png", nil); err == nil {
		t.Error("expected an error from a disabled client")
	}
	if _, err := c.Chat(context.Background(), "how many ESP32s?", ""); err == nil {
		t.Error("expected an error from a disabled client")
	}
}
