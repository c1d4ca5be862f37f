package templates

import (
	"github.com/a-h/templ"
)

// ErrorPage shows a title and message.
func ErrorPage(props ErrorPageProps) templ.Component {
	return component(func(h *html) error {
		layout(h, props.Title, func(h *html) {
			h.raw("  <h1>")
			h.text(props.Title)
			h.raw("</h1>\n  <div class=\"error\">")
			h.text(props.Message)
			h.raw("</div>\n")
		})
		return nil
	})
}

// LoginPage asks for credentials and carries the authorize query along.
func LoginPage(props LoginPageProps) templ.Component {
	return component(func(h *html) error {
		layout(h, "Sign in", func(h *html) {
			h.raw("  <h1>Sign in</h1>\n  <p>Sign in to approve <strong>")
			h.text(props.ClientName)
			h.raw("</strong>'s access request.</p>\n",
				"  <div class=\"hint\">\n",
				"    <strong>Test users:</strong><br />\n",
				"    Username: <code>alice</code> or <code>bob</code><br />\n",
				"    Password: <code>password123</code>\n",
				"  </div>\n")
			if props.Error != "" {
				h.raw("  <div class=\"error\">")
				h.text(props.Error)
				h.raw("</div>\n")
			}
			h.raw("  <form method=\"post\" action=\"/login\">\n")
			csrfField(h, props.CSRFToken)
			h.raw("    <label for=\"username\">Username</label>\n",
				"    <input id=\"username\" name=\"username\" type=\"text\" required autofocus />\n",
				"    <label for=\"password\">Password</label>\n",
				"    <input id=\"password\" name=\"password\" type=\"password\" required />\n")
			h.hidden("original_query", props.OriginalQuery)
			h.raw("    <button type=\"submit\" class=\"primary\">Continue</button>\n  </form>\n")
		})
		return nil
	})
}

// ConsentPage lists the requested scopes with approve, deny and sign-out forms.
func ConsentPage(props ConsentPageProps) templ.Component {
	return component(func(h *html) error {
		layout(h, "Authorize application", func(h *html) {
			h.raw("  <h1>Authorize ")
			h.text(props.ClientName)
			h.raw("</h1>\n")
			if props.Notice != "" {
				h.raw("  <div class=\"notice\">")
				h.text(props.Notice)
				h.raw("</div>\n")
			}
			h.raw("  <p>Signed in as <strong>")
			h.text(props.Username)
			h.raw("</strong>.</p>\n  <p>This application is requesting the following scopes:</p>\n  <ul>\n")
			for _, s := range props.Scopes {
				h.raw("    <li>")
				h.text(s)
				h.raw("</li>\n")
			}
			h.raw("  </ul>\n")

			for _, form := range []struct{ decision, class, label, style string }{
				{"approve", "approve", "Approve", ""},
				{"deny", "deny", "Deny", "margin-top: 0.5rem;"},
			} {
				h.raw("  <form method=\"post\" action=\"/consent\"")
				if form.style != "" {
					h.attr("style", form.style)
				}
				h.raw(">\n")
				csrfField(h, props.CSRFToken)
				payloadFields(h, props.Payload)
				h.hidden("decision", form.decision)
				h.raw("    <button type=\"submit\"")
				h.attr("class", form.class)
				h.raw(">", form.label, "</button>\n  </form>\n")
			}

			h.raw("  <form method=\"post\" action=\"/logout\" style=\"margin-top: 1.5rem;\">\n")
			csrfField(h, props.CSRFToken)
			payloadFields(h, props.Payload)
			h.raw("    <button type=\"submit\" class=\"secondary\">Sign out</button>\n  </form>\n")
		})
		return nil
	})
}

// CodePage displays an issued authorization code instead of redirecting.
func CodePage(props CodePageProps) templ.Component {
	return component(func(h *html) error {
		layout(h, "Authorization code issued", func(h *html) {
			h.raw("  <h1>Authorization Code Ready</h1>\n  <p>Client: <strong>")
			h.text(props.ClientName)
			h.raw("</strong></p>\n  <code class=\"block\" id=\"auth-code\">")
			h.text(props.Code)
			h.raw("</code>\n")
			if props.State != "" {
				h.raw("  <p><strong>state:</strong> ")
				h.text(props.State)
				h.raw("</p>\n")
			}
			h.raw("  <p><strong>Scopes:</strong> ")
			for i, s := range props.Scopes {
				if i > 0 {
					h.raw(" ")
				}
				h.raw("<code>")
				h.text(s)
				h.raw("</code>")
			}
			h.raw("</p>\n  <p><a class=\"primary\"")
			h.attr("href", string(templ.URL(props.ContinueURL)))
			h.raw(">Continue to Client</a></p>\n",
				"  <p class=\"hint\">The code is valid for a short time and can be used exactly once in a token request.</p>\n")
		})
		return nil
	})
}
