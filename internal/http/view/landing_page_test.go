package view

import (
	"strings"
	"testing"
)

func TestRenderLandingPage(t *testing.T) {
	html, err := RenderLandingPage(LandingPageData{
		Title:         "Go from scratch",
		OfferType:     "course",
		OfferID:       "go-101",
		Price:         "49.00 USD",
		IntroMediaURL: "https://cdn.example/intro.mp4",
		CountdownSecs: 42,
		ReferrerID:    "aff-9",
	})
	if err != nil {
		t.Fatalf("RenderLandingPage returned error: %v", err)
	}

	for _, want := range []string{
		`<span id="countdown">42</span>`,
		`fetch("/api/checkout"`,
		// A failed checkout must block with a visible message.
		"Checkout failed, please try again.",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}

func TestRenderSettlementPage_MissingTransaction(t *testing.T) {
	html, err := RenderSettlementPage(SettlementPageData{Missing: true})
	if err != nil {
		t.Fatalf("RenderSettlementPage returned error: %v", err)
	}

	if !strings.Contains(html, "Something went wrong") {
		t.Error("missing-transaction page must show the terminal message")
	}
	// Terminal screen: no polling script at all.
	if strings.Contains(html, "fetch(") {
		t.Error("missing-transaction page must not poll for status")
	}
}
