// Package mocks holds the shared test doubles for the interfaces consumed
// across packages: stores, services, the JWT service, the password verifier,
// the event emitter, and the card generator.
//
// Every mock follows the same pattern: a struct with one function field per
// interface method, overridden per test, with a usable default when the
// field is nil. Each file carries a compile-time assertion such as
//
//	var _ store.UserStore = (*MockUserStore)(nil)
//
// so interface drift surfaces here rather than deep inside a test failure.
//
//	mockJWT := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return &auth.Claims{UserID: userID, Role: "user", TokenType: "access"}, nil
//	    },
//	}
//
// Mocks used by exactly one package (the task pipeline's in-package doubles)
// stay next to their tests instead of living here.
package mocks
