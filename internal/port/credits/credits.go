// Package credits defines the petition-credit entitlement port.
package credits

import "context"

// Ledger is the port interface for the credit/entitlement collaborator.
// CanGeneratePetition is consulted before the LLM call; Consume after it.
// A false return from Consume is logged by callers but never rolls back an
// already-produced document.
type Ledger interface {
	CanGeneratePetition(ctx context.Context) (bool, error)

	// Consume debits one petition credit, recording label as the reason.
	// Returns false when no credit was available to debit.
	Consume(ctx context.Context, label string) (bool, error)

	// Balance returns the remaining petition credits.
	Balance(ctx context.Context) (int, error)
}
