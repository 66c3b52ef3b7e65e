package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var verificationTmpl = template.Must(
	template.ParseFS(templateFS, "templates/verification.html"),
)

// VerificationData is the input to the verification email templates.
type VerificationData struct {
	Code        string
	CurrentYear int
}

// RenderVerification produces the plain-text and HTML bodies of the
// verification email for the given code.
func RenderVerification(data VerificationData) (textBody, htmlBody string, err error) {
	textBody = fmt.Sprintf("Your verification code is: %s", data.Code)

	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render verification template: %w", err)
	}
	return textBody, buf.String(), nil
}
