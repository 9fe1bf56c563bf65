// Package quickbooks is a minimal QuickBooks Online Accounting API client.
//
// Requests are authorized by an oauth2.TokenSource; the client never refreshes tokens
// itself. Failures are classified so callers can react to them:
//   - *StatusError: the API answered with a non-2xx status (Unauthorized reports 401)
//   - *TransportError: no HTTP response was received (DNS, TCP, TLS, timeouts)
//
// # Usage
//
//	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "bearer"})
//	client, err := quickbooks.New(companyID, ts, quickbooks.WithBaseURL(quickbooks.SandboxBaseURL))
//	info, err := client.CompanyInfo(ctx)
//	items, err := client.QueryAll(ctx, "Item", "", 1000)
package quickbooks
