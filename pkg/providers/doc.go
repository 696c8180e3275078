// Package providers defines the upstream client contract and the canonical
// OpenAI-wire request/response shapes shared by the whole gateway.
//
// A Client wraps one configured upstream endpoint. It is created unvalidated
// by the provider registry, validated via Create (which performs a real
// connectivity and auth check by fetching the upstream model list), and then
// serves chat completions and model listings. Clients translate every
// upstream wire irregularity (non-2xx responses, malformed JSON) into the
// typed errors defined in this package; callers never see raw wire bytes.
//
// The package also contains the model Filter (whitelist/blacklist applied to
// upstream model lists before alias registration) and the shared HTTPClient
// base that concrete adapters embed.
package providers
