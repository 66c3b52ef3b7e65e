package mail

import (
	"strings"
	"testing"
)

func TestRenderVerification(t *testing.T) {
	text, html, err := RenderVerification(VerificationData{Code: "482193", CurrentYear: 2025})
	if err != nil {
		t.Fatalf("RenderVerification: %v", err)
	}

	if text != "Your verification code is: 482193" {
		t.Fatalf("unexpected text body: %q", text)
	}
	if !strings.Contains(html, "482193") {
		t.Fatalf("HTML body missing code: %s", html)
	}
	if !strings.Contains(html, "2025") {
		t.Fatalf("HTML body missing year: %s", html)
	}
	if !strings.Contains(html, "<html") {
		t.Fatalf("HTML body does not look like HTML: %s", html)
	}
}

func TestRenderVerification_EscapesCode(t *testing.T) {
	// Codes are always numeric in practice; the template must still never
	// emit markup verbatim.
	_, html, err := RenderVerification(VerificationData{Code: "<script>", CurrentYear: 2025})
	if err != nil {
		t.Fatalf("RenderVerification: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("code not escaped: %s", html)
	}
}
