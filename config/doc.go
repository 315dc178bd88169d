// Package config loads and validates a robot's deployment configuration:
// its identity (name, address, avatar, profile), the consumer credentials
// registered per RPC gateway, the verification tokens, and the serving
// options.
//
// Load validates the raw JSON against an embedded JSON schema first, so
// structural mistakes surface with field-level messages, then applies the
// semantic checks a schema cannot express. Credentials reach the rest of
// the program only through the loaded Config value; there is no global
// registry.
package config
