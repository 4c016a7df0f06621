package mapper

import "github.com/zgloszenie/accident-form/internal/model"

// fieldToBackend is the single source of truth linking form fields to
// backend field paths. The reverse lookup is derived from it at init, so
// the two directions cannot diverge. Fields with an empty list are never
// validated remotely.
var fieldToBackend = map[model.FieldName][]string{
	model.FieldPesel:      {"injured_person.pesel"},
	model.FieldDocType:    {},
	model.FieldDocNumber:  {"injured_person.document_number"},
	model.FieldFirstName:  {"injured_person.first_name"},
	model.FieldLastName:   {"injured_person.last_name"},
	model.FieldBirthDate:  {},
	model.FieldBirthPlace: {},
	model.FieldPhone:      {"injured_person.phone"},

	model.FieldResidenceAbroad:  {},
	model.FieldResidenceStreet:  {},
	model.FieldResidenceHouseNo: {},
	model.FieldResidenceAptNo:   {},
	model.FieldResidencePostal:  {},
	model.FieldResidenceCity:    {"injured_address.city"},
	model.FieldResidenceCountry: {},

	model.FieldLastResStreet:  {},
	model.FieldLastResHouseNo: {},
	model.FieldLastResAptNo:   {},
	model.FieldLastResPostal:  {},
	model.FieldLastResCity:    {},

	model.FieldCorrStreet:   {},
	model.FieldCorrHouseNo:  {},
	model.FieldCorrAptNo:    {},
	model.FieldCorrPostal:   {},
	model.FieldCorrCity:     {},
	model.FieldCorrCountry:  {},
	model.FieldCorrMode:     {},
	model.FieldCorrOnBehalf: {},

	model.FieldAccidentDate:        {},
	model.FieldAccidentPlace:       {"accident_info.accident_place"},
	model.FieldAccidentHoursStart:  {},
	model.FieldAccidentHoursEnd:    {},
	model.FieldAccidentInjuries:    {"accident_info.injuries_description"},
	model.FieldAccidentDetails:     {"accident_info.detailed_description"},
	model.FieldAccidentAuthority:   {"accident_info.investigating_authority"},
	model.FieldAccidentFirstAid:    {},
	model.FieldAccidentFacility:    {"accident_info.first_aid_facility"},
	model.FieldAccidentMachine:     {},
	model.FieldAccidentMachineDesc: {"accident_info.machine_description"},
	model.FieldAccidentMachineCert: {},
	model.FieldAccidentMachineReg:  {},
}

// validatablePaths fixes the dispatch order of remote validation calls.
// reporter.pesel stays listed for the backend contract even though no form
// field maps to it yet.
var validatablePaths = []string{
	"injured_person.pesel",
	"reporter.pesel",
	"injured_person.first_name",
	"injured_person.last_name",
	"injured_address.city",
	"injured_person.document_number",
	"injured_person.phone",
	"accident_info.accident_place",
	"accident_info.first_aid_facility",
	"accident_info.investigating_authority",
	"accident_info.machine_description",
	"accident_info.detailed_description",
	"accident_info.injuries_description",
}

var backendToField = func() map[string]model.FieldName {
	rev := make(map[string]model.FieldName)
	for field, paths := range fieldToBackend {
		for _, p := range paths {
			rev[p] = field
		}
	}
	return rev
}()

// BackendPaths returns the backend field paths validated for one form field.
func BackendPaths(field model.FieldName) []string {
	return fieldToBackend[field]
}

// FormField resolves a backend field path to its form field; ok is false for
// paths with no form-side counterpart.
func FormField(path string) (model.FieldName, bool) {
	f, ok := backendToField[path]
	return f, ok
}

// MapFieldsToValidate returns the backend paths whose source value is
// currently non-empty, in dispatch order, intersected with requested when
// requested is non-empty.
func MapFieldsToValidate(v *model.FormValues, requested []string) []string {
	var reqSet map[string]struct{}
	if len(requested) > 0 {
		reqSet = make(map[string]struct{}, len(requested))
		for _, r := range requested {
			reqSet[r] = struct{}{}
		}
	}
	var out []string
	for _, path := range validatablePaths {
		if reqSet != nil {
			if _, ok := reqSet[path]; !ok {
				continue
			}
		}
		field, ok := backendToField[path]
		if !ok {
			continue
		}
		src := v.StringField(field)
		if src == nil || !hasValue(*src) {
			continue
		}
		out = append(out, path)
	}
	return out
}
