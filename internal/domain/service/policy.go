package service

import (
	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Policy – role/capability table consulted by every command
// ---------------------------------------------------------------------------

// Policy decides which roles may exercise which capabilities.
type Policy struct {
	grants map[valueobject.Role]map[valueobject.Capability]struct{}
}

var defaultGrants = map[valueobject.Role][]valueobject.Capability{
	valueobject.RoleAdmin: {
		valueobject.CapRead,
		valueobject.CapSchedulePreview,
		valueobject.CapScheduleCreate,
		valueobject.CapScheduleReplace,
		valueobject.CapScheduleEditDue,
		valueobject.CapInstallmentPay,
		valueobject.CapPaymentOpen,
		valueobject.CapPaymentRecord,
		valueobject.CapSaleTransfer,
		valueobject.CapMortgageSubmit,
		valueobject.CapMortgageCancel,
		valueobject.CapMortgageProcess,
	},
	valueobject.RoleAgence: {
		valueobject.CapRead,
		valueobject.CapSchedulePreview,
		valueobject.CapScheduleCreate,
		valueobject.CapScheduleReplace,
		valueobject.CapScheduleEditDue,
		valueobject.CapInstallmentPay,
		valueobject.CapPaymentOpen,
		valueobject.CapPaymentRecord,
		valueobject.CapSaleTransfer,
	},
	valueobject.RoleNotaire: {
		valueobject.CapRead,
		valueobject.CapMortgageProcess,
	},
	valueobject.RoleBanque: {
		valueobject.CapRead,
		valueobject.CapMortgageSubmit,
		valueobject.CapMortgageCancel,
	},
	valueobject.RoleClient: {
		valueobject.CapRead,
		valueobject.CapSchedulePreview,
	},
}

// NewPolicy returns the standard role table.
func NewPolicy() *Policy {
	p := &Policy{grants: make(map[valueobject.Role]map[valueobject.Capability]struct{})}
	for role, caps := range defaultGrants {
		set := make(map[valueobject.Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		p.grants[role] = set
	}
	return p
}

// Allows reports whether any of roles grants capability.
func (p *Policy) Allows(roles []string, capability valueobject.Capability) bool {
	for _, r := range roles {
		if _, ok := p.grants[valueobject.Role(r)][capability]; ok {
			return true
		}
	}
	return false
}

// Authorize returns a ForbiddenError when none of roles grants capability.
func (p *Policy) Authorize(roles []string, capability valueobject.Capability) error {
	if p.Allows(roles, capability) {
		return nil
	}
	return &model.ForbiddenError{Roles: roles, Capability: capability}
}

// MortgageCapability maps a workflow action to the capability guarding it.
func MortgageCapability(action valueobject.MortgageAction) valueobject.Capability {
	if action == valueobject.MortgageActionCancel {
		return valueobject.CapMortgageCancel
	}
	return valueobject.CapMortgageProcess
}
