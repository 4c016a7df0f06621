// Package schema performs structural validation of the form value tree. Each
// wizard step validates its own required-field subset; the summary step is
// the union of both plus the abroad conditional. Errors are keyed by dotted
// field name with first-error-wins per field.
package schema

import (
	"regexp"

	"github.com/zgloszenie/accident-form/internal/model"
)

var (
	postalCodeRe = regexp.MustCompile(`^[0-9]{2}-?[0-9]{3}$`)
	peselRe      = regexp.MustCompile(`^[0-9]{11}$`)
	phoneRe      = regexp.MustCompile(`^[0-9]{7,15}$`)
)

// Result reports one validation pass. A field absent from Errors is valid.
type Result struct {
	Success bool
	Errors  map[model.FieldName]string

	order []model.FieldName
}

// First returns the first violated field and its message in rule order, or
// empty values when the pass succeeded.
func (r Result) First() (model.FieldName, string) {
	if len(r.order) == 0 {
		return "", ""
	}
	f := r.order[0]
	return f, r.Errors[f]
}

type rule struct {
	field model.FieldName
	check func(v *model.FormValues) string
}

func minLen(field model.FieldName, get func(*model.FormValues) string, n int, msg string) rule {
	return rule{field: field, check: func(v *model.FormValues) string {
		if len([]rune(get(v))) < n {
			return msg
		}
		return ""
	}}
}

func match(field model.FieldName, get func(*model.FormValues) string, re *regexp.Regexp, msg string) rule {
	return rule{field: field, check: func(v *model.FormValues) string {
		if !re.MatchString(get(v)) {
			return msg
		}
		return ""
	}}
}

func oneOf(field model.FieldName, get func(*model.FormValues) string, allowed []string, msg string) rule {
	return rule{field: field, check: func(v *model.FormValues) string {
		val := get(v)
		for _, a := range allowed {
			if val == a {
				return ""
			}
		}
		return msg
	}}
}

// identityRules covers the person, residence, and correspondence sections of
// the basic step. Apartment numbers are the only optional address fields.
var identityRules = []rule{
	match(model.FieldPesel, func(v *model.FormValues) string { return v.Pesel }, peselRe, "PESEL powinien mieć 11 cyfr"),
	oneOf(model.FieldDocType, func(v *model.FormValues) string { return v.DocType },
		[]string{model.DocIDCard, model.DocPassport, model.DocOther, ""}, "Wybierz rodzaj dokumentu"),
	minLen(model.FieldDocNumber, func(v *model.FormValues) string { return v.DocNumber }, 3, "Podaj numer dokumentu"),
	minLen(model.FieldFirstName, func(v *model.FormValues) string { return v.FirstName }, 2, "Imię jest wymagane"),
	minLen(model.FieldLastName, func(v *model.FormValues) string { return v.LastName }, 2, "Nazwisko jest wymagane"),
	minLen(model.FieldBirthDate, func(v *model.FormValues) string { return v.BirthDate }, 4, "Data urodzenia jest wymagana"),
	minLen(model.FieldBirthPlace, func(v *model.FormValues) string { return v.BirthPlace }, 2, "Miejsce urodzenia jest wymagana"),
	match(model.FieldPhone, func(v *model.FormValues) string { return v.Phone }, phoneRe, "Telefon powinien mieć 7-15 cyfr"),

	minLen(model.FieldResidenceStreet, func(v *model.FormValues) string { return v.Residence.Street }, 2, "Ulica jest wymagana"),
	minLen(model.FieldResidenceHouseNo, func(v *model.FormValues) string { return v.Residence.HouseNumber }, 1, "Numer domu jest wymagany"),
	match(model.FieldResidencePostal, func(v *model.FormValues) string { return v.Residence.PostalCode }, postalCodeRe, "Podaj kod w formacie 12-345"),
	minLen(model.FieldResidenceCity, func(v *model.FormValues) string { return v.Residence.City }, 2, "Miejscowość jest wymagana"),
	minLen(model.FieldResidenceCountry, func(v *model.FormValues) string { return v.Residence.Country }, 2, "Podaj nazwę państwa"),

	minLen(model.FieldCorrStreet, func(v *model.FormValues) string { return v.Correspondence.Street }, 2, "Ulica jest wymagana"),
	minLen(model.FieldCorrHouseNo, func(v *model.FormValues) string { return v.Correspondence.HouseNumber }, 1, "Numer domu jest wymagany"),
	match(model.FieldCorrPostal, func(v *model.FormValues) string { return v.Correspondence.PostalCode }, postalCodeRe, "Podaj kod w formacie 12-345"),
	minLen(model.FieldCorrCity, func(v *model.FormValues) string { return v.Correspondence.City }, 2, "Miejscowość jest wymagana"),
	minLen(model.FieldCorrCountry, func(v *model.FormValues) string { return v.Correspondence.Country }, 2, "Podaj nazwę państwa"),
	oneOf(model.FieldCorrMode, func(v *model.FormValues) string { return v.Correspondence.Mode },
		[]string{model.ModeAddress, model.ModePosteRestante, model.ModePOBox, model.ModePostalCompartment},
		"Wybierz sposób doręczenia"),
}

// lastResidenceRules mirrors the residence address rules minus country and
// applies only when residence.abroad is set.
var lastResidenceRules = []rule{
	minLen(model.FieldLastResStreet, func(v *model.FormValues) string { return v.LastResidence.Street }, 2, "Ulica jest wymagana"),
	minLen(model.FieldLastResHouseNo, func(v *model.FormValues) string { return v.LastResidence.HouseNumber }, 1, "Numer domu jest wymagany"),
	match(model.FieldLastResPostal, func(v *model.FormValues) string { return v.LastResidence.PostalCode }, postalCodeRe, "Podaj kod w formacie 12-345"),
	minLen(model.FieldLastResCity, func(v *model.FormValues) string { return v.LastResidence.City }, 2, "Miejscowość jest wymagana"),
}

var accidentRules = []rule{
	minLen(model.FieldAccidentDate, func(v *model.FormValues) string { return v.Accident.Date }, 4, "Data wypadku jest wymagana"),
	minLen(model.FieldAccidentPlace, func(v *model.FormValues) string { return v.Accident.Place }, 2, "Podaj miejsce wypadku"),
	minLen(model.FieldAccidentInjuries, func(v *model.FormValues) string { return v.Accident.InjuryTypes }, 2, "Opisz rodzaj urazów"),
	minLen(model.FieldAccidentDetails, func(v *model.FormValues) string { return v.Accident.AccidentDetails }, 4, "Dodaj opis okoliczności"),
}

func (r *Result) apply(v *model.FormValues, rules []rule) {
	for _, ru := range rules {
		if _, seen := r.Errors[ru.field]; seen {
			continue
		}
		if msg := ru.check(v); msg != "" {
			r.Errors[ru.field] = msg
			r.order = append(r.order, ru.field)
		}
	}
}

// ValidateStep validates the subset of rules belonging to step.
func ValidateStep(v *model.FormValues, step model.Step) Result {
	r := Result{Errors: make(map[model.FieldName]string)}
	switch step {
	case model.StepAccident:
		r.apply(v, accidentRules)
	case model.StepSummary:
		r.apply(v, identityRules)
		r.apply(v, accidentRules)
		if v.Residence.Abroad {
			r.apply(v, lastResidenceRules)
		}
	default:
		r.apply(v, identityRules)
		if v.Residence.Abroad {
			r.apply(v, lastResidenceRules)
		}
	}
	r.Success = len(r.Errors) == 0
	return r
}

// ValidateAll validates the complete value tree (the summary rule set).
func ValidateAll(v *model.FormValues) Result {
	return ValidateStep(v, model.StepSummary)
}
