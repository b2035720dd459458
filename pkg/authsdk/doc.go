// Package authsdk is a Go client for the ScholarSpace authentication
// service, and the home of its JSON wire types.
//
// Unauthenticated operations live on SDKClient:
//
//	client := authsdk.NewSDKClient("http://localhost:8080")
//	session, err := client.Login(ctx, "admin@example.com", "admin123")
//
// A Session carries the bearer token for everything else:
//
//	profile, err := session.Profile(ctx)
//
// Failed requests return *APIError, which matches the exported sentinels
// with errors.Is:
//
//	if errors.Is(err, authsdk.ErrInvalidCredentials) { ... }
package authsdk
