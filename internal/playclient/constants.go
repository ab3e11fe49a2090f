package playclient

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusCreated  = 201
	StatusAccepted = 202
)

// SSE framing.
const (
	sseEventPrefix = "event: "
	sseDataPrefix  = "data: "
)

// Report formatting.
const (
	barWidthChars = 30
	percentScale  = 100
)
