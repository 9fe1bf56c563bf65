package tokensource

import (
	"golang.org/x/oauth2"
)

// Endpoint defines the OAuth2 endpoints for Intuit (QuickBooks Online) authentication.
// Client credentials go in the Basic authorization header.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://appcenter.intuit.com/connect/oauth2",
	TokenURL:  "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer",
	AuthStyle: oauth2.AuthStyleInHeader,
}

// scopes are informational for refresh requests; Intuit keeps the scopes of the original grant
var scopes = []string{"com.intuit.quickbooks.accounting"}
