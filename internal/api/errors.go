package api

// ErrorKind classifies a failed call to the analysis service. Every
// kind is terminal for that call; the client never retries.
type ErrorKind int

const (
	KindNetworkError ErrorKind = iota
	KindTimeout
	KindPayloadTooLarge
	KindServerError
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindServerError:
		return "server_error"
	default:
		return "network_error"
	}
}

// TransportError is the failure surface of both workflows. Message is
// already user-readable: the server's detail field when the response
// carried one, otherwise a fixed wording per kind.
type TransportError struct {
	Kind    ErrorKind
	Message string
}

func (e *TransportError) Error() string {
	return e.Message
}
