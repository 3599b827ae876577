package predictor

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportMessage is shown for calls that never produced a usable response.
const TransportMessage = "Unable to reach the prediction service. Please try again."

// TransportError means the remote call could not complete: connection
// failure, unreadable body, or a success body that is not the expected JSON.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RejectedError means the service answered with a non-2xx status. Message is
// the body's "error" field, empty when the body carried none.
type RejectedError struct {
	Op      string
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Op, e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

// ErrorMessage converts err into display text. A rejection's own message wins;
// otherwise transport failures get TransportMessage and everything else gets
// fallback.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var rej *RejectedError
	if errors.As(err, &rej) {
		if rej.Message != "" {
			return rej.Message
		}
		return fallback
	}
	var te *TransportError
	if errors.As(err, &te) {
		return TransportMessage
	}
	return fallback
}
