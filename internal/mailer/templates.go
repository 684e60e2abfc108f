package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

const (
	subjectMFACode    = "Umbroll - 2FA verifikációs kód"
	subjectInvitation = "Meghívó - Umbroll Partner Dashboard"
)

var (
	mfaCodeText = texttemplate.Must(texttemplate.New("mfa_text").Parse(
		"A kétlépcsős azonosítási kódod: {{.Code}}\n\nEz a kód {{.Minutes}} percig érvényes.\n"))
	mfaCodeHTML = htmltemplate.Must(htmltemplate.New("mfa_html").Parse(
		`<h2>Umbroll 2FA</h2><p>A kétlépcsős azonosítási kódod:</p>` +
			`<h1 style="letter-spacing:8px;font-size:32px">{{.Code}}</h1>` +
			`<p>Ez a kód {{.Minutes}} percig érvényes.</p>`))

	invitationText = texttemplate.Must(texttemplate.New("invite_text").Parse(
		"Meghívást kaptál az Umbroll Partner Dashboard-ra.\n\nRegisztrálj itt: {{.Link}}\n\nA meghívó {{.Days}} napig érvényes.\n"))
	invitationHTML = htmltemplate.Must(htmltemplate.New("invite_html").Parse(
		`<h2>Umbroll Partner Dashboard</h2><p>Meghívást kaptál a <strong>{{.Role}}</strong> szerepkörrel.</p>` +
			`<p><a href="{{.Link}}" style="display:inline-block;padding:12px 24px;background:#c41230;color:white;text-decoration:none;border-radius:8px">Meghívó elfogadása</a></p>` +
			`<p style="color:#666">A meghívó {{.Days}} napig érvényes.</p>`))
)

func render(text *texttemplate.Template, html *htmltemplate.Template, data any) (string, string, error) {
	var textBuf, htmlBuf bytes.Buffer
	if err := text.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", text.Name(), err)
	}
	if err := html.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", html.Name(), err)
	}
	return textBuf.String(), htmlBuf.String(), nil
}

// MFACodeMessage builds the email carrying a one-time code.
func MFACodeMessage(to, code string, validFor time.Duration) (Message, error) {
	text, html, err := render(mfaCodeText, mfaCodeHTML, struct {
		Code    string
		Minutes int
	}{code, int(validFor.Minutes())})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subjectMFACode, Text: text, HTML: html}, nil
}

// InvitationMessage builds the invitation email linking to the accept page.
func InvitationMessage(to, link, role string, validFor time.Duration) (Message, error) {
	text, html, err := render(invitationText, invitationHTML, struct {
		Link string
		Role string
		Days int
	}{link, role, int(validFor.Hours() / 24)})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subjectInvitation, Text: text, HTML: html}, nil
}

// InvitationLink is the accept page URL for a token.
func InvitationLink(appURL, token string) string {
	return strings.TrimRight(appURL, "/") + "/accept-invite?token=" + token
}
