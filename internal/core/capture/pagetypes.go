// Package capture holds the in-memory editable state of the active
// submission: scalar fields, repeater row arenas, and attachment state. It
// replaces tree traversal with an explicit registry built once at startup,
// decoupled from any rendering technology.
package capture

import "github.com/example/fieldforms/internal/core/payload"

// RowField declares one column of a repeater row. Checkbox marks boolean
// coercion, mirroring FieldSpec.
type RowField struct {
	Label    string
	Checkbox bool
}

// GroupSchema declares one repeater group: its canonical name and the
// columns of a row.
type GroupSchema struct {
	Name   string
	Fields []RowField
}

// rowFields builds plain text columns.
func rowFields(labels ...string) []RowField {
	fields := make([]RowField, len(labels))
	for i, l := range labels {
		fields[i] = RowField{Label: l}
	}
	return fields
}

// FieldSpec declares one scalar field addressable on a page. Label is the
// human-visible name, ID the stable element identifier, Checkbox marks
// boolean coercion, and Capabilities tag the logical role so the same field
// resolves even when labeled slightly differently across record types.
type FieldSpec struct {
	Label        string
	ID           string
	Checkbox     bool
	Capabilities []string
}

var materialRowFields = rowFields(
	"Size", "Material", "Manufacturer", "Date", "Coil #", "SDR of PE",
	"ST Pipe Thickness", "Coating Type", "Depth (inches)", "Length (inches)",
)

var otherMaterialRowFields = rowFields("Type", "Size", "Material", "Quantity")

var pipeTestRowFields = []RowField{
	{Label: "Date Tested"},
	{Label: "Test Type"},
	{Label: "Soaped with no Leaks", Checkbox: true},
	{Label: "Pressure"},
	{Label: "Chart"},
	{Label: "Duration"},
	{Label: "Tested By"},
}

var groupsByPage = map[payload.PageType][]GroupSchema{
	payload.PageLeakRepair: {
		{Name: "pipeMaterials", Fields: materialRowFields},
		{Name: "otherMaterials", Fields: otherMaterialRowFields},
		{Name: "pipeTests", Fields: pipeTestRowFields},
	},
	payload.PageMains: {
		{Name: "mainsMaterials", Fields: materialRowFields},
		{Name: "mainsOtherMaterials", Fields: otherMaterialRowFields},
		{Name: "mainsPipeTests", Fields: pipeTestRowFields},
	},
	payload.PageServices: {
		{Name: "svcMaterials", Fields: materialRowFields},
		{Name: "svcOtherMaterials", Fields: otherMaterialRowFields},
		{Name: "svcPipeTests", Fields: pipeTestRowFields},
	},
	payload.PageRetirement: {
		{Name: "retSection", Fields: rowFields(
			"Size", "Material", "Pipe Condition", "Retired in Place",
			"Riser Removed", "Length (feet)",
		)},
		{Name: "retStructures", Fields: rowFields(
			"Structures Retired", "Number", "Action Taken",
		)},
		{Name: "retNewMaterials", Fields: rowFields(
			"Materials Used", "Size", "Material", "Quantity",
		)},
	},
}

var commonFields = []FieldSpec{
	{Label: "Work Order #", ID: "workOrder", Capabilities: []string{"work-order"}},
	{Label: "Address", ID: "address", Capabilities: []string{"location"}},
	{Label: "Town", ID: "town", Capabilities: []string{"location"}},
	{Label: "Foreman", ID: "foreman", Capabilities: []string{"crew"}},
	{Label: "Crew Members", ID: "crewMembers", Capabilities: []string{"crew"}},
	{Label: "Date Completed", ID: "dateCompleted", Capabilities: []string{"completion-date"}},
	{Label: "Notes", ID: "notes"},
}

var fieldsByPage = map[payload.PageType][]FieldSpec{
	payload.PageLeakRepair: append([]FieldSpec{
		{Label: "Leak Number", ID: "leakNumber"},
		{Label: "Leak Grade", ID: "leakGrade"},
		{Label: "Leak Location", ID: "leakLocation", Capabilities: []string{"location"}},
		{Label: "Gas Found", ID: "gasFound", Checkbox: true},
		{Label: "Repair Method", ID: "repairMethod"},
		{Label: "Coating Type", ID: "lrCoatingType", Capabilities: []string{"coating"}},
	}, commonFields...),
	payload.PageMains: append([]FieldSpec{
		{Label: "Main Size", ID: "mainSize"},
		{Label: "Pressure Class", ID: "pressureClass"},
		{Label: "Tie-In Completed", ID: "tieInCompleted", Checkbox: true},
		{Label: "Coating Types", ID: "mainsCoatingTypes", Capabilities: []string{"coating"}},
	}, commonFields...),
	payload.PageServices: append([]FieldSpec{
		{Label: "Service Size", ID: "serviceSize"},
		{Label: "Meter Set", ID: "meterSet", Checkbox: true},
		{Label: "Service Renewed", ID: "serviceRenewed", Checkbox: true},
		{Label: "Coating Types", ID: "svcCoatingTypes", Capabilities: []string{"coating"}},
	}, commonFields...),
	payload.PageRetirement: append([]FieldSpec{
		{Label: "Retirement Reason", ID: "retirementReason"},
		{Label: "Purged", ID: "purged", Checkbox: true},
		{Label: "Cut and Capped", ID: "cutAndCapped", Checkbox: true},
	}, commonFields...),
}

// GroupsFor returns the repeater groups addressable on a page type.
func GroupsFor(pt payload.PageType) []GroupSchema {
	return groupsByPage[pt]
}

// FieldsFor returns the scalar field specs addressable on a page type.
func FieldsFor(pt payload.PageType) []FieldSpec {
	return fieldsByPage[pt]
}
