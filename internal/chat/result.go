package chat

import (
	"fmt"

	"github.com/samvad-hq/samvad-chat/internal/domain"
)

// Kind tags the variant held by a Result.
type Kind int

const (
	// KindAnswer is a 200 response with a decodable JSON object body.
	KindAnswer Kind = iota
	// KindStatus is any non-200 response.
	KindStatus
	// KindTransport covers connection failures and undecodable 200 bodies.
	KindTransport
)

// Result is the outcome of one Ask call. Exactly one of the variant fields is meaningful per Kind.
type Result struct {
	Kind       Kind
	Answer     string
	StatusCode int
	Body       string
	Err        error
}

func answered(answer string) Result { return Result{Kind: KindAnswer, Answer: answer} }

func statusFailure(code int, body string) Result {
	return Result{Kind: KindStatus, StatusCode: code, Body: body}
}

func transportFailure(err error) Result { return Result{Kind: KindTransport, Err: err} }

// Render returns the line printed to the user for this result.
func (r Result) Render() string {
	switch r.Kind {
	case KindAnswer:
		return "Answer: " + r.Answer
	case KindStatus:
		return fmt.Sprintf("Error %d %s", r.StatusCode, r.Body)
	default:
		return fmt.Sprintf("Connection error: %v", r.Err)
	}
}

// Outcome maps the result kind onto the domain outcome.
func (r Result) Outcome() domain.Outcome {
	switch r.Kind {
	case KindAnswer:
		return domain.OutcomeAnswer
	case KindStatus:
		return domain.OutcomeStatus
	default:
		return domain.OutcomeTransport
	}
}

// Fill copies the result payload onto ex.
func (r Result) Fill(ex *domain.Exchange) {
	ex.Outcome = r.Outcome()
	switch r.Kind {
	case KindAnswer:
		ex.Answer = r.Answer
	case KindStatus:
		ex.StatusCode = r.StatusCode
		ex.Body = r.Body
	default:
		if r.Err != nil {
			ex.Error = r.Err.Error()
		}
	}
}
