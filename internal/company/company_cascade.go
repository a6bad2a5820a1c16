package company

import (
	"fmt"

	"github.com/google/uuid"
)

// CascadeError reports the collection that stopped a tenant cascade. The
// whole cascade was rolled back when it is returned.
type CascadeError struct {
	CompanyID  uuid.UUID
	Collection string
	Err        error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade delete of company %s failed at %s: %v", e.CompanyID, e.Collection, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

func (e *CascadeError) Details() any {
	return map[string]any{
		"company_id":         e.CompanyID.String(),
		"failed_collections": []string{e.Collection},
		"rolled_back":        true,
	}
}
