package model

import "github.com/dillanci/settlement/internal/domain/valueobject"

// Sale is the view of a property sale held by the sales directory. The
// settlement service reads it but never writes it.
type Sale struct {
	ID       string
	TenantID string
	Status   valueobject.SaleStatus
	NotaryID string
}
