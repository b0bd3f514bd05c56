// Package domain contains the core entities of the flashcard system: users
// with roles and profile data, decks, topics carrying spaced-repetition state
// and an embedded card collection, and the card variants themselves. Entities
// validate their own invariants; nothing here knows about HTTP, SQL, or AI
// providers. The scheduling algorithm lives in the srs subpackage.
package domain
