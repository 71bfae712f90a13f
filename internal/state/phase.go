// Package state holds the console's resource containers: one per
// backend collection (auth, projects, users, invites). Every async
// operation follows the same three-phase protocol: pending sets
// isLoading and clears the error, fulfilled merges the result,
// rejected records a non-empty failure message and leaves the
// collection untouched. Mutations are serialized per container with a
// mutex; completions for concurrently dispatched operations land in
// resolution order (last resolved wins).
package state

import (
	"errors"

	"admin-console/pkg/apierror"
)

// phase is the loading/error pair every container carries. Callers
// must hold the container lock.
type phase struct {
	isLoading bool
	err       string
}

func (p *phase) begin() {
	p.isLoading = true
	p.err = ""
}

func (p *phase) fulfill() {
	p.isLoading = false
	p.err = ""
}

func (p *phase) reject(err error) {
	p.isLoading = false
	p.err = failureMessage(err)
}

// failureMessage always yields a non-empty, human-readable string.
func failureMessage(err error) string {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	if err == nil || err.Error() == "" {
		return "operation failed"
	}

	return err.Error()
}
