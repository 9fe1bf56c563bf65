// Package tokensource exchanges OAuth2 refresh tokens for new access tokens at the
// Intuit token endpoint.
//
// Intuit rotates refresh tokens: a refresh may return a different refresh token, and
// the previous one stops working after a while. Callers must persist whatever Refresh
// returns.
//
// # Refresher
//
//	r, err := tokensource.NewRefresher(clientID, clientSecret, tokensource.Endpoint)
//	token, err := r.Refresh(ctx, refreshToken)
//
// # Custom Base Transport
//
// Configure a custom base transport for token requests (e.g., for proxies or tests):
//
//	r, err := tokensource.NewRefresher(
//		clientID, clientSecret,
//		tokensource.Endpoint,
//		tokensource.WithTransport(customTransport),
//	)
package tokensource
