// Command hash-generator prints the bcrypt hash of a password so operators
// can seed user rows directly, most commonly the first admin account: role
// promotion through the API requires an existing admin, so the bootstrap
// admin has to be inserted by hand.
//
// Usage:
//
//	hash-generator [-cost N] <password>
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor (4-31)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator [-cost N] <password>")
		os.Exit(2)
	}

	hash, err := hashPassword(flag.Arg(0), *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}

// hashPassword hashes the password at the given cost, enforcing the same
// minimum length the registration endpoint does so seeded accounts are not
// weaker than registered ones.
func hashPassword(password string, cost int) (string, error) {
	if len(password) < 12 {
		return "", fmt.Errorf("password must be at least 12 characters, got %d", len(password))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash: %w", err)
	}

	return string(hash), nil
}
