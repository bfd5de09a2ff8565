// Package domain contains the core business entities and rules for deskhand.
//
// This package has no dependencies on infrastructure concerns. It defines
// the entities (Document, Chunk, ConnectedSheet, ConversationTurn), the
// value types used by the retrieval and verification pipelines, and the
// sentinel errors that cross service boundaries.
package domain
