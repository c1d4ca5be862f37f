package templates

// BaseProps contains common properties shared across all pages
type BaseProps struct {
	CSRFToken string
}

// ===== Page Props Structures =====

// ErrorPageProps contains properties for the error page
type ErrorPageProps struct {
	BaseProps
	Title   string
	Message string
}

// LoginPageProps contains properties for the login page
type LoginPageProps struct {
	BaseProps
	ClientName    string
	Error         string
	OriginalQuery string
}

// ConsentPayload is echoed back through hidden fields on every consent
// and logout form.
type ConsentPayload struct {
	OriginalQuery       string
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
	ResponseType        string
	ShowCode            bool
}

// ConsentPageProps contains properties for the consent page
type ConsentPageProps struct {
	BaseProps
	ClientName string
	Username   string
	Scopes     []string
	Notice     string
	Payload    ConsentPayload
}

// CodePageProps contains properties for the show-code page
type CodePageProps struct {
	BaseProps
	ClientName  string
	Code        string
	State       string
	Scopes      []string
	ContinueURL string
}
