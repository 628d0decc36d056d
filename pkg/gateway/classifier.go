package gateway

// NoResponseCode is reported when the transport failed before a response.
const NoResponseCode = -1

// Response is a received HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Classify maps a response to an Outcome. A nil response is a transport failure.
//
// Every 4xx, 429 included, is permanent: the server will not accept the
// request unchanged and retrying it would loop forever.
func Classify(resp *Response) Outcome {
	switch {
	case resp == nil:
		return TransientFailure{Code: NoResponseCode}
	case resp.StatusCode < 300:
		return Success{}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return PermanentFailure{Code: resp.StatusCode}
	default:
		return TransientFailure{Code: resp.StatusCode}
	}
}
