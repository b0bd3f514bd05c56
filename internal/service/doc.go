// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// The service package implements the application layer in the clean architecture,
// containing use cases that coordinate the flow of data between external interfaces
// (API, background tasks) and the domain layer. It abstracts away infrastructure
// details while orchestrating domain entities to fulfill business requirements.
//
// Key components:
//
// 1. Service Interfaces:
//   - Define application-specific operations available to the delivery mechanisms
//   - Each service focuses on a specific domain area (users, decks, topics,
//     card generation)
//
// 2. Use Case Implementations:
//   - Coordinate between stores, the scheduling engine and external providers
//   - Apply transactional boundaries when operations read, modify and write
//     the same rows
//   - Enforce ownership: every user-facing operation verifies the resource
//     belongs to the requesting user before touching it
//
// 3. Dependency Management:
//   - Services receive dependencies through constructor injection
//   - Core dependencies include stores, domain services, and cross-cutting concerns
//
// 4. Error Handling:
//   - Translate domain-specific errors to application-level errors
//   - Provide meaningful error context for API responses
//
// The service layer depends on domain entities and repository interfaces (from store),
// but never on specific infrastructure implementations, maintaining the Dependency
// Inversion Principle of clean architecture.
package service
