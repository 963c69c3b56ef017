// Package client talks to the CredHex server over gRPC.
//
// GRPCClient keeps the access and refresh tokens in memory, attaches the
// access token to every call, and refreshes it once when the server reports
// it expired. Status errors are mapped back to the sentinels in
// internal/common, so callers match them with errors.Is.
//
// GRPCClient implements vault.Store and session.IdentityProvider.
package client
