package valueobject

// Role is the acting role of a caller, as carried by its token.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAgence  Role = "agence"
	RoleNotaire Role = "notaire"
	RoleBanque  Role = "banque"
	RoleClient  Role = "client"
)

// Capability names an operation guarded by the policy.
type Capability string

const (
	CapRead            Capability = "read"
	CapSchedulePreview Capability = "schedule.preview"
	CapScheduleCreate  Capability = "schedule.create"
	CapScheduleReplace Capability = "schedule.replace"
	CapScheduleEditDue Capability = "schedule.edit_due_date"
	CapInstallmentPay  Capability = "installment.mark_paid"
	CapPaymentOpen     Capability = "payment.open"
	CapPaymentRecord   Capability = "payment.record"
	CapSaleTransfer    Capability = "sale.transfer"
	CapMortgageSubmit  Capability = "mortgage.submit"
	CapMortgageCancel  Capability = "mortgage.cancel"
	CapMortgageProcess Capability = "mortgage.process"
)
