// Package testutil provides common helpers for client and session tests.
package testutil

import "testing"

// Given, When, and Then keep scenario tests readable without pulling in a
// heavy BDD framework. Each runs as a named subtest; failures in an earlier
// step still let later steps report, so keep steps independent or use
// t.Fatal inside them.
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Given "+desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("When "+desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Then "+desc, fn)
}
