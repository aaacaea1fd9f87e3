package result

import (
	"fmt"

	"github.com/joseph-ayodele/screenchat/constants"
)

// Kind classifies why a stage failed.
type Kind int

const (
	KindNone Kind = iota
	DecodeError
	BackendUnavailable
	TransportError
	HTTPStatusError
	MalformedResponse
)

var kindNames = map[Kind]string{
	KindNone:           "none",
	DecodeError:        "decode_error",
	BackendUnavailable: "backend_unavailable",
	TransportError:     "transport_error",
	HTTPStatusError:    "http_status_error",
	MalformedResponse:  "malformed_response",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsOCR reports whether the kind belongs to the text extraction stage.
func (k Kind) IsOCR() bool { return k == DecodeError || k == BackendUnavailable }

// Marker is the display prefix for failures of this kind.
func (k Kind) Marker() string {
	if k.IsOCR() {
		return constants.MarkerOCRError
	}
	return constants.MarkerAPIError
}

// Failure describes a recovered stage fault.
type Failure struct {
	Kind       Kind
	Detail     string
	StatusCode int // only set for HTTPStatusError
	Err        error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

func (f *Failure) Unwrap() error { return f.Err }

// Result is either a successful text or a Failure.
type Result struct {
	Text    string
	Failure *Failure
}

// Success wraps text. Empty text is still a success.
func Success(text string) Result {
	return Result{Text: text}
}

// Fail builds a failed Result. The detail defaults to err's message.
func Fail(kind Kind, detail string, err error) Result {
	if detail == "" && err != nil {
		detail = err.Error()
	}
	return Result{Failure: &Failure{Kind: kind, Detail: detail, Err: err}}
}

// FailStatus builds an HTTPStatusError result.
func FailStatus(code int, detail string) Result {
	return Result{Failure: &Failure{
		Kind:       HTTPStatusError,
		Detail:     detail,
		StatusCode: code,
	}}
}

func (r Result) OK() bool { return r.Failure == nil }

// Kind returns KindNone for successes.
func (r Result) Kind() Kind {
	if r.Failure == nil {
		return KindNone
	}
	return r.Failure.Kind
}

// Err returns the failure as an error, or nil.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Display renders the result the way both front ends show it:
// the text itself, or "<marker> <detail>" on failure.
func (r Result) Display() string {
	if r.Failure == nil {
		return r.Text
	}
	return r.Failure.Kind.Marker() + " " + r.Failure.Detail
}
