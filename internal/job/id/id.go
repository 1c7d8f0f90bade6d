// Package id provides unique identifier generation for jobs.
package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generate creates a new unique job ID.
// Format: job-<uuid>
// Example: job-7f9c24e5-1a2b-4c3d-9e8f-0a1b2c3d4e5f
func Generate() string {
	return fmt.Sprintf("job-%s", uuid.NewString())
}
