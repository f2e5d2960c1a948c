package config

import "errors"

// Validation errors returned by Config.Validate. Callers match them with errors.Is.
var (
	// ErrMissingEndpoint means AI_SERVICE_ENDPOINT was not set anywhere
	ErrMissingEndpoint = errors.New("missing service endpoint: set AI_SERVICE_ENDPOINT or service.endpoint")

	// ErrMissingKey means AI_SERVICE_KEY was not set anywhere
	ErrMissingKey = errors.New("missing service key: set AI_SERVICE_KEY or service.key")

	// ErrInvalidEndpoint is returned for endpoints that are not absolute http(s) URLs
	ErrInvalidEndpoint = errors.New("invalid service endpoint: must be an http or https URL")

	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	ErrInvalidStroke = errors.New("invalid render stroke: must be between 1 and 50")

	ErrInvalidColor = errors.New("invalid render color")

	ErrInvalidQuality = errors.New("invalid output quality: must be between 1 and 100")

	ErrInvalidMode = errors.New("invalid background mode: use backgroundRemoval or foregroundMatting")

	ErrNoFeatures = errors.New("no vision features selected")

	ErrInvalidCrop = errors.New("invalid crop settings")

	ErrInvalidCountryHint = errors.New("invalid country hint: use an ISO 3166-1 region code or none")

	// ErrConfigNotFound is returned by LoadFromFile when the file does not exist
	ErrConfigNotFound = errors.New("configuration file not found")
)
