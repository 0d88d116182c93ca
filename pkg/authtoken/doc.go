// Package authtoken issues and verifies the HMAC-SHA256 bearer tokens
// that carry a user identity between the web client and the API.
//
// Tokens are compact JWS strings (header.claims.signature, base64url
// without padding) signed with HS256. The subject claim is always a
// user UUID; Middleware verifies the token on each request and places
// the parsed user ID in the request context for handlers downstream.
package authtoken
