package db

import "strings"

// IsUniqueViolation reports whether err carries a unique-index violation.
// With a constraint name the check narrows to that specific index; without
// one any duplicate-key failure matches. The SQLite message is covered so
// the helper behaves the same under the test database.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	duplicate := strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
	if !duplicate {
		return false
	}
	if constraintName == "" {
		return true
	}
	return strings.Contains(msg, constraintName) || strings.Contains(msg, "UNIQUE constraint failed")
}
