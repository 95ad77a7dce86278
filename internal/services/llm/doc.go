// Package llm provides the OpenRouter chat client that executes outline and
// batch generation requests.
//
// # Contract
//
// Client.Complete sends one user message with the given temperature and model
// and returns choices[0].message.content verbatim. A non-2xx response becomes
// a GenerationRequestError carrying the body's error.message (or a generic
// message), as does a transport failure. A success response without the
// content path becomes a MalformedResponseError.
//
// # Configuration
//
// Requires api_key; base_url, model, referer, title, timeout and max_tokens
// have defaults.
//
// # Retry Behaviour
//
// One attempt by default: callers re-invoke a failed generation themselves.
// When WithRetryMaxAttempts raises the limit, HTTP 408/429/5xx and network
// timeouts are retried with exponential backoff (base 1s, max 10s), honouring
// Retry-After. Context cancellation aborts retries immediately.
package llm
