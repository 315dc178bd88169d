// Package oauth implements the 1-legged OAuth (HMAC-SHA1) signing the wave
// active API requires, plus validation of inbound signed requests.
//
// Outbound requests carry every OAuth parameter in the URL query string
// and send the JSON body unmodified; the body is bound to the signature
// through the oauth_body_hash parameter, a base64 SHA-1 digest of the raw
// bytes. The consumer key is namespaced under the wave provider's domain
// ("google.com:" prefix) on the outbound side only.
//
// Validation failures report generic auth errors. The mismatch specifics
// are logged, never returned, so a probing caller learns nothing about
// which check failed.
package oauth
