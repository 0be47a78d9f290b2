// Package p2p defines the procure-to-pay domain vocabulary: object types,
// the fixed activity catalog grouped by business phase, and the metric
// selections understood by the discovery views.
package p2p

// Object types of the P2P model.
const (
	TypeItem = "item"
	TypePO   = "po"
	TypeGR   = "gr"
	TypeInv  = "inv"
	TypeWF   = "wf"
)

// ObjectTypes lists all object types in display order.
var ObjectTypes = []string{TypeItem, TypePO, TypeGR, TypeInv, TypeWF}

// Activity groups. The lists are a fixed contract with the source system and
// must not be reordered or reworded.
var (
	PRActivities = []string{"PR Cancelled", "PR Purchase Request"}

	POActivities = []string{"PO From SAP", "PO From WISE"}

	GRActivities = []string{"GR (PO reversal)", "GR (Return)", "GR Goods Receipt"}

	InvoicingActivities = []string{
		"Invoice Created", "Invoice Errors", "Invoice Payment", "Invoice Posted",
		"Invoice Unprocessed", "Invoice WF_DP_APPROV", "Invoice WF_FI_APPROV",
		"Invoice WF_GL_DISCREP", "Invoice WF_GR_MISSING", "Invoice WF_PO_MISSING",
		"Invoice WF_PRICE_DISC", "Invoice WF_QUANT_DISC", "Invoice WF_Unknown",
	}

	WorkflowActivities = []string{
		"WF Data_Update",
		"WF FI_APPROV_Being processed", "WF FI_APPROV_Declined", "WF FI_APPROV_Recalled",
		"WF FI_APPROV_Released", "WF FI_APPROV_Sent",
		"WF GR_Missing_Being processed", "WF GR_Missing_Declined",
		"WF GR_Missing_Recalled", "WF GR_Missing_Released", "WF GR_Missing_Sent",
		"WF INFO_Being processed", "WF INFO_Declined", "WF INFO_Recalled",
		"WF INFO_Released", "WF INFO_Sent",
		"WF PO_MISSING_Being processed", "WF PO_MISSING_Declined",
		"WF PO_MISSING_Recalled", "WF PO_MISSING_Released", "WF PO_MISSING_Sent",
		"WF PRICE_DISC_Declined", "WF PRICE_DISC_Recalled",
		"WF PRICE_DISC_Released", "WF PRICE_DISC_Sent",
	}
)

// Groups maps a business-phase name to its activity list.
var Groups = map[string][]string{
	"PR":        PRActivities,
	"PO":        POActivities,
	"GR":        GRActivities,
	"Invoicing": InvoicingActivities,
	"Workflow":  WorkflowActivities,
}

// GroupNames lists the phase groups in process order.
var GroupNames = []string{"PR", "PO", "GR", "Invoicing", "Workflow"}

// AllActivities returns the complete activity catalog in phase order.
func AllActivities() []string {
	out := make([]string, 0,
		len(PRActivities)+len(POActivities)+len(GRActivities)+
			len(InvoicingActivities)+len(WorkflowActivities))
	for _, g := range GroupNames {
		out = append(out, Groups[g]...)
	}
	return out
}

// KnownActivity reports whether a name is in the fixed catalog.
func KnownActivity(name string) bool {
	for _, g := range GroupNames {
		for _, a := range Groups[g] {
			if a == name {
				return true
			}
		}
	}
	return false
}

// KnownObjectType reports whether a name is a valid object type.
func KnownObjectType(name string) bool {
	for _, t := range ObjectTypes {
		if t == name {
			return true
		}
	}
	return false
}

// SelectionMode controls how the activity allow-list is assembled.
type SelectionMode string

const (
	// SelectAll includes the full catalog.
	SelectAll SelectionMode = "all"
	// SelectGroups includes the union of chosen phase groups.
	SelectGroups SelectionMode = "groups"
	// SelectIndividual includes individually chosen activities.
	SelectIndividual SelectionMode = "individual"
)

// ResolveActivities computes the final activity allow-list:
// (selection by mode) minus the exclusion set. The result preserves catalog
// order and is deduplicated; excluding every selected activity yields an
// empty list, which downstream stages treat as an empty selection, not an
// error.
func ResolveActivities(mode SelectionMode, groups, individual, exclude []string) []string {
	selected := make(map[string]bool)

	switch mode {
	case SelectAll:
		for _, a := range AllActivities() {
			selected[a] = true
		}
	case SelectGroups:
		for _, g := range groups {
			for _, a := range Groups[g] {
				selected[a] = true
			}
		}
	case SelectIndividual:
		for _, a := range individual {
			if KnownActivity(a) {
				selected[a] = true
			}
		}
	}

	for _, a := range exclude {
		delete(selected, a)
	}

	var out []string
	for _, a := range AllActivities() {
		if selected[a] {
			out = append(out, a)
		}
	}
	return out
}
