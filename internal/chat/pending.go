package chat

import (
	"context"
	"fmt"

	"github.com/sells-group/esg-advisor/internal/model"
	"github.com/sells-group/esg-advisor/internal/store"
)

// NoMatchError reports a company-name query that resolved to nothing.
// The prompt stays armed so the user can try again.
type NoMatchError struct {
	Query string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no company matching %q", e.Query)
}

// PendingCompanyPrompt is the caller-side clarification flow for "generate
// a BI report for <company>" requests that arrive without an active
// company. It lives outside tool dispatch on purpose: the model never sees
// this state. While armed, the next user utterance is interpreted as a
// company-name query instead of a fresh chat message.
//
// Lifecycle: Arm when the report request cannot be resolved directly;
// Resolve on the next utterance. A successful lookup clears the state; a
// failed lookup keeps it armed so the caller re-prompts.
type PendingCompanyPrompt struct {
	armed bool
}

// Arm puts the prompt into the waiting-for-a-name state.
func (p *PendingCompanyPrompt) Arm() { p.armed = true }

// Armed reports whether the next utterance should be treated as a
// company-name query.
func (p *PendingCompanyPrompt) Armed() bool { return p.armed }

// Reset clears the state without resolving, e.g. when the conversation
// moves on.
func (p *PendingCompanyPrompt) Reset() { p.armed = false }

// Resolve treats utterance as a company-name query. The first match from
// the substring search wins. On success the prompt disarms; on no match
// it stays armed and returns NoMatchError.
func (p *PendingCompanyPrompt) Resolve(ctx context.Context, st store.Store, utterance string) (*model.Company, error) {
	companies, err := st.ListCompanies(ctx, utterance, 1)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, &NoMatchError{Query: utterance}
	}
	p.armed = false
	return &companies[0], nil
}
