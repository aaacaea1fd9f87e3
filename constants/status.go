package constants

// Marker prefixes used when a failed stage is rendered as display text.
const (
	MarkerOCRError = "[OCR ERROR]"
	MarkerAPIError = "[API ERROR]"
)

// Defaults for the chat-completion endpoint.
const (
	DefaultSonarEndpoint = "https://api.perplexity.ai/chat/completions"
	DefaultSonarModel    = "sonar"
)

// MaxUploadMBDefault caps the size of an image posted to the web form.
const MaxUploadMBDefault = 10
