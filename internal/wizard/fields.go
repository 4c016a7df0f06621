package wizard

import (
	"github.com/zgloszenie/accident-form/internal/mapper"
	"github.com/zgloszenie/accident-form/internal/model"
)

// fieldDef describes one visible row of a wizard step. Boolean rows render
// as toggles; normalize runs on every keystroke for masked inputs.
type fieldDef struct {
	name      model.FieldName
	label     string
	boolean   bool
	normalize func(string) string
}

var basicFields = []fieldDef{
	{name: model.FieldPesel, label: "PESEL", normalize: mapper.NormalizePESEL},
	{name: model.FieldDocType, label: "Rodzaj dokumentu (id_card/passport/other)"},
	{name: model.FieldDocNumber, label: "Numer dokumentu"},
	{name: model.FieldFirstName, label: "Imię"},
	{name: model.FieldLastName, label: "Nazwisko"},
	{name: model.FieldBirthDate, label: "Data urodzenia"},
	{name: model.FieldBirthPlace, label: "Miejsce urodzenia"},
	{name: model.FieldPhone, label: "Telefon", normalize: mapper.NormalizePhone},

	{name: model.FieldResidenceStreet, label: "Ulica"},
	{name: model.FieldResidenceHouseNo, label: "Numer domu"},
	{name: model.FieldResidenceAptNo, label: "Numer mieszkania"},
	{name: model.FieldResidencePostal, label: "Kod pocztowy", normalize: mapper.NormalizePostalCode},
	{name: model.FieldResidenceCity, label: "Miejscowość"},
	{name: model.FieldResidenceCountry, label: "Państwo"},
	{name: model.FieldResidenceAbroad, label: "Mieszkam za granicą", boolean: true},
}

// lastResidenceFields appear only when the abroad toggle is on.
var lastResidenceFields = []fieldDef{
	{name: model.FieldLastResStreet, label: "Ostatni adres w Polsce: ulica"},
	{name: model.FieldLastResHouseNo, label: "Ostatni adres w Polsce: numer domu"},
	{name: model.FieldLastResAptNo, label: "Ostatni adres w Polsce: numer mieszkania"},
	{name: model.FieldLastResPostal, label: "Ostatni adres w Polsce: kod pocztowy", normalize: mapper.NormalizePostalCode},
	{name: model.FieldLastResCity, label: "Ostatni adres w Polsce: miejscowość"},
}

var correspondenceFields = []fieldDef{
	{name: model.FieldCorrStreet, label: "Korespondencja: ulica"},
	{name: model.FieldCorrHouseNo, label: "Korespondencja: numer domu"},
	{name: model.FieldCorrAptNo, label: "Korespondencja: numer mieszkania"},
	{name: model.FieldCorrPostal, label: "Korespondencja: kod pocztowy", normalize: mapper.NormalizePostalCode},
	{name: model.FieldCorrCity, label: "Korespondencja: miejscowość"},
	{name: model.FieldCorrCountry, label: "Korespondencja: państwo"},
	{name: model.FieldCorrMode, label: "Sposób doręczenia (adres/poste_restante/skrytka_pocztowa/przegrodka_pocztowa)"},
	{name: model.FieldCorrOnBehalf, label: "Zgłaszam w czyimś imieniu", boolean: true},
}

var accidentFields = []fieldDef{
	{name: model.FieldAccidentDate, label: "Data wypadku"},
	{name: model.FieldAccidentPlace, label: "Miejsce wypadku"},
	{name: model.FieldAccidentHoursStart, label: "Planowany początek pracy"},
	{name: model.FieldAccidentHoursEnd, label: "Planowany koniec pracy"},
	{name: model.FieldAccidentInjuries, label: "Rodzaj urazów"},
	{name: model.FieldAccidentDetails, label: "Opis okoliczności"},
	{name: model.FieldAccidentAuthority, label: "Organ prowadzący postępowanie"},
	{name: model.FieldAccidentFirstAid, label: "Udzielono pierwszej pomocy", boolean: true},
	{name: model.FieldAccidentFacility, label: "Placówka medyczna"},
	{name: model.FieldAccidentMachine, label: "Wypadek z udziałem maszyny", boolean: true},
	{name: model.FieldAccidentMachineDesc, label: "Opis użycia maszyny"},
	{name: model.FieldAccidentMachineCert, label: "Maszyna z certyfikatem", boolean: true},
	{name: model.FieldAccidentMachineReg, label: "Maszyna zarejestrowana", boolean: true},
}

// allFields lists every form row in display order, for summary lookups.
func allFields() []fieldDef {
	out := append([]fieldDef(nil), basicFields...)
	out = append(out, lastResidenceFields...)
	out = append(out, correspondenceFields...)
	return append(out, accidentFields...)
}

// stepFields resolves the visible rows for a step against the current
// values (the abroad toggle folds the last-residence block in and out).
func stepFields(step model.Step, values model.FormValues) []fieldDef {
	switch step {
	case model.StepAccident:
		return accidentFields
	case model.StepSummary:
		return nil
	default:
		fields := append([]fieldDef(nil), basicFields...)
		if values.Residence.Abroad {
			fields = append(fields, lastResidenceFields...)
		}
		return append(fields, correspondenceFields...)
	}
}
