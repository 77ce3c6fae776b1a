package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrConsistency indicates a broken parent/child link in the chunk hierarchy
	ErrConsistency = errors.New("chunk hierarchy inconsistent")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrRetrievalUnavailable indicates both search branches failed
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrLocationUnresolved indicates no place could be extracted for a weather lookup
	ErrLocationUnresolved = errors.New("location unresolved")

	// ErrEmbeddingUnavailable indicates the embedding capability could not be reached
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrIndexUnavailable indicates the search index could not be reached
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrClassificationUnavailable indicates the classification capability failed
	ErrClassificationUnavailable = errors.New("classification unavailable")

	// ErrWeatherUnavailable indicates the weather provider could not be reached
	ErrWeatherUnavailable = errors.New("weather unavailable")

	// ErrTimeout indicates the per-query deadline was exceeded
	ErrTimeout = errors.New("deadline exceeded")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidCredentials indicates wrong client id/secret combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates an external AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
