package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// html accumulates markup for one component render. Dynamic values go
// through text or attr, which escape them; raw is for static markup only.
type html struct {
	b strings.Builder
}

func (h *html) raw(s ...string) {
	for _, part := range s {
		h.b.WriteString(part)
	}
}

func (h *html) text(s string) {
	h.b.WriteString(templ.EscapeString(s))
}

// attr writes name="value" with a leading space.
func (h *html) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// hidden writes a hidden form input.
func (h *html) hidden(name, value string) {
	h.raw(`<input type="hidden"`)
	h.attr("name", name)
	h.attr("value", value)
	h.raw(" />\n")
}

// component turns a body builder into a templ.Component. Markup is built in
// memory first so a failing component never leaves a half-written page.
func component(build func(h *html) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var h html
		if err := build(&h); err != nil {
			return err
		}
		_, err := io.WriteString(w, h.b.String())
		return err
	})
}

const styles = `
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; margin: 0; padding: 2rem; background: #f5f5f5; }
    .box { max-width: 480px; margin: 0 auto; padding: 2rem; background: #fff; border-radius: 8px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); }
    h1 { margin-top: 0; }
    label { display: block; margin-bottom: 0.5rem; font-weight: 600; }
    input[type="text"], input[type="password"] { width: 100%; padding: 0.6rem; margin-bottom: 1rem; box-sizing: border-box; }
    button { padding: 0.6rem 1.2rem; border: none; border-radius: 4px; cursor: pointer; font-size: 1rem; }
    .primary, .approve { background: #16a34a; color: #fff; }
    .deny { background: #dc2626; color: #fff; }
    .secondary { background: #4b5563; color: #fff; }
    .error { color: #dc2626; background: #fee2e2; padding: 0.75rem; border-radius: 4px; margin-bottom: 1rem; }
    .notice { color: #065f46; background: #d1fae5; padding: 0.75rem; border-radius: 4px; margin-bottom: 1rem; }
    .hint { background: #f3f4f6; padding: 1rem; border-radius: 6px; margin-bottom: 1rem; font-size: 0.9rem; color: #6b7280; }
    code.block { display: block; padding: 1rem; background: #111827; color: #e5e7eb; border-radius: 6px; word-break: break-all; }
`

// layout wraps body in the shared page shell.
func layout(h *html, title string, body func(h *html)) {
	h.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n",
		"  <meta charset=\"utf-8\" />\n",
		"  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\" />\n",
		"  <title>")
	h.text(title)
	h.raw("</title>\n  <style>", styles, "  </style>\n</head>\n<body>\n<div class=\"box\">\n")
	body(h)
	h.raw("</div>\n</body>\n</html>\n")
}

func csrfField(h *html, token string) {
	if token != "" {
		h.hidden("csrf_token", token)
	}
}

func payloadFields(h *html, p ConsentPayload) {
	h.hidden("original_query", p.OriginalQuery)
	h.hidden("client_id", p.ClientID)
	h.hidden("redirect_uri", p.RedirectURI)
	h.hidden("scope", p.Scope)
	h.hidden("state", p.State)
	h.hidden("code_challenge", p.CodeChallenge)
	h.hidden("code_challenge_method", p.CodeChallengeMethod)
	h.hidden("response_type", p.ResponseType)
	showCode := ""
	if p.ShowCode {
		showCode = "true"
	}
	h.hidden("show_code", showCode)
}
