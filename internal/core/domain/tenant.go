package domain

import "time"

// Tenant is an isolated namespace owning documents, connected sheets and
// conversation history. Tenant administration is handled elsewhere; the
// core only reads the tenant's free-text description to build the client
// context pseudo-document for chat.
type Tenant struct {
	// ID is the unique tenant identifier.
	ID string

	// Name is the display name.
	Name string

	// Description is free text about the tenant's business, prepended
	// to chat context as a synthetic document when present.
	Description string

	// CreatedAt is when the tenant was created.
	CreatedAt time.Time
}
