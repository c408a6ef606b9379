package domain

// ModificationStatus is the lifecycle state of a budget modification.
type ModificationStatus string

const (
	ModificationDraft    ModificationStatus = "draft"
	ModificationPending  ModificationStatus = "pending"
	ModificationApproved ModificationStatus = "approved"
	ModificationVoid     ModificationStatus = "void"
)

// ModificationAction is a workflow action applied to a modification.
type ModificationAction string

const (
	ActionSubmit  ModificationAction = "submit"
	ActionApprove ModificationAction = "approve"
	ActionReject  ModificationAction = "reject"
	ActionVoid    ModificationAction = "void"
)

// Direct-cost ledger types.
const (
	CostTypeInvoice              = "Invoice"
	CostTypeExpense              = "Expense"
	CostTypePayroll              = "Payroll"
	CostTypeSubcontractorInvoice = "Subcontractor Invoice"
)

// JobToDateCostTypes are the direct-cost types that count toward job-to-date
// cost detail: every approved type, Subcontractor Invoice included.
var JobToDateCostTypes = map[string]bool{
	CostTypeInvoice:              true,
	CostTypeExpense:              true,
	CostTypePayroll:              true,
	CostTypeSubcontractorInvoice: true,
}

// DirectCostTypes are the types that count toward Direct Costs. Subcontractor
// Invoices are excluded on purpose: they are tracked as committed-cost
// burn-down, not direct spend.
var DirectCostTypes = map[string]bool{
	CostTypeInvoice: true,
	CostTypeExpense: true,
	CostTypePayroll: true,
}

// PendingSubcontractStatuses are subcontract statuses whose SOV lines count
// as pending cost changes.
var PendingSubcontractStatuses = []string{"Out For Signature"}

// PendingPurchaseOrderStatuses are PO statuses whose SOV lines count as
// pending cost changes.
var PendingPurchaseOrderStatuses = []string{
	"Processing",
	"Submitted",
	"Partially Received",
	"Received",
}

// PendingChangeOrderPrefix matches change-order statuses counted as pending
// ("Pending - In Review", "Pending Approval", ...).
const PendingChangeOrderPrefix = "Pending"

// ApprovedChangeOrderStatus marks change orders whose lines roll into the
// approved-CO total.
const ApprovedChangeOrderStatus = "Approved"
