package schema

import (
	"testing"

	"github.com/zgloszenie/accident-form/internal/model"
)

func validBasic() model.FormValues {
	v := model.Defaults()
	v.Pesel = "44051401359"
	v.DocType = model.DocIDCard
	v.DocNumber = "ABC123456"
	v.FirstName = "Jan"
	v.LastName = "Kowalski"
	v.BirthDate = "1980-05-14"
	v.BirthPlace = "Warszawa"
	v.Phone = "500600700"
	v.Residence.Street = "Prosta"
	v.Residence.HouseNumber = "1"
	v.Residence.PostalCode = "00-001"
	v.Residence.City = "Warszawa"
	v.Correspondence.Street = "Prosta"
	v.Correspondence.HouseNumber = "1"
	v.Correspondence.PostalCode = "00-001"
	v.Correspondence.City = "Warszawa"
	return v
}

func validFull() model.FormValues {
	v := validBasic()
	v.Accident.Date = "2025-06-01"
	v.Accident.Place = "hala produkcyjna"
	v.Accident.InjuryTypes = "złamanie ręki"
	v.Accident.AccidentDetails = "upadek z drabiny podczas pracy"
	return v
}

func TestValidateStep_BasicValid(t *testing.T) {
	v := validBasic()
	res := ValidateStep(&v, model.StepBasic)
	if !res.Success || len(res.Errors) != 0 {
		t.Fatalf("want success, got errors: %v", res.Errors)
	}
}

func TestValidateStep_BasicIgnoresAccidentSection(t *testing.T) {
	v := validBasic()
	// accident untouched: empty date/place must not fail the basic step
	res := ValidateStep(&v, model.StepBasic)
	if !res.Success {
		t.Fatalf("basic step must skip accident rules, got: %v", res.Errors)
	}
}

func TestValidateStep_PeselFormat(t *testing.T) {
	for _, bad := range []string{"", "123", "123456789012", "4405140135a", "44 51401359"} {
		v := validBasic()
		v.Pesel = bad
		res := ValidateStep(&v, model.StepBasic)
		if res.Success {
			t.Fatalf("pesel %q: want failure", bad)
		}
		if _, ok := res.Errors[model.FieldPesel]; !ok {
			t.Fatalf("pesel %q: want error under pesel, got %v", bad, res.Errors)
		}
	}
}

func TestValidateStep_PhoneFormat(t *testing.T) {
	cases := map[string]bool{
		"1234567":          true,
		"123456789012345":  true,
		"123456":           false,
		"1234567890123456": false,
		"+48123456789":     false,
	}
	for phone, want := range cases {
		v := validBasic()
		v.Phone = phone
		res := ValidateStep(&v, model.StepBasic)
		_, hasErr := res.Errors[model.FieldPhone]
		if hasErr == want {
			t.Fatalf("phone %q: want valid=%v, errors=%v", phone, want, res.Errors)
		}
	}
}

func TestValidateStep_PostalCode(t *testing.T) {
	cases := map[string]bool{
		"00-001": true,
		"00001":  true,
		"0-001":  false,
		"00-01":  false,
		"ab-cde": false,
	}
	for code, want := range cases {
		v := validBasic()
		v.Residence.PostalCode = code
		res := ValidateStep(&v, model.StepBasic)
		_, hasErr := res.Errors[model.FieldResidencePostal]
		if hasErr == want {
			t.Fatalf("postal %q: want valid=%v, errors=%v", code, want, res.Errors)
		}
	}
}

func TestValidateStep_AbroadRequiresLastResidence(t *testing.T) {
	v := validBasic()
	v.Residence.Abroad = true
	res := ValidateStep(&v, model.StepBasic)
	if res.Success {
		t.Fatalf("abroad with empty lastResidence: want failure")
	}
	found := false
	for field := range res.Errors {
		switch field {
		case model.FieldLastResStreet, model.FieldLastResHouseNo, model.FieldLastResPostal, model.FieldLastResCity:
			found = true
		}
	}
	if !found {
		t.Fatalf("want a lastResidence-rooted error, got %v", res.Errors)
	}

	v.LastResidence = model.LastResidence{
		Street:      "Długa",
		HouseNumber: "2",
		PostalCode:  "11-222",
		City:        "Kraków",
	}
	res = ValidateStep(&v, model.StepBasic)
	if !res.Success {
		t.Fatalf("filled lastResidence: want success, got %v", res.Errors)
	}
}

func TestValidateStep_AbroadOffSkipsLastResidence(t *testing.T) {
	v := applyAccident(validBasic())
	v.Residence.Abroad = false
	res := ValidateAll(&v)
	for field := range res.Errors {
		if field == model.FieldLastResStreet || field == model.FieldLastResCity {
			t.Fatalf("lastResidence must not be required when abroad=false: %v", res.Errors)
		}
	}
}

func applyAccident(v model.FormValues) model.FormValues {
	v.Accident.Date = "2025-06-01"
	v.Accident.Place = "magazyn"
	v.Accident.InjuryTypes = "stłuczenie"
	v.Accident.AccidentDetails = "uderzenie przez paletę"
	return v
}

func TestValidateStep_AccidentOnly(t *testing.T) {
	var v model.FormValues // identity entirely empty
	v.Accident.Date = "2025-06-01"
	v.Accident.Place = "magazyn"
	v.Accident.InjuryTypes = "stłuczenie"
	v.Accident.AccidentDetails = "uderzenie przez paletę"
	res := ValidateStep(&v, model.StepAccident)
	if !res.Success {
		t.Fatalf("accident step must ignore identity fields, got %v", res.Errors)
	}

	v.Accident.AccidentDetails = "abc"
	res = ValidateStep(&v, model.StepAccident)
	if res.Success {
		t.Fatalf("details below minimum length must fail")
	}
	if res.Errors[model.FieldAccidentDetails] == "" {
		t.Fatalf("want accident.accidentDetails error, got %v", res.Errors)
	}
}

func TestValidateAll_Union(t *testing.T) {
	v := validFull()
	res := ValidateAll(&v)
	if !res.Success {
		t.Fatalf("full valid tree: got %v", res.Errors)
	}

	v.Pesel = "123"
	v.Accident.Date = ""
	res = ValidateAll(&v)
	if res.Success {
		t.Fatalf("want failure")
	}
	if _, ok := res.Errors[model.FieldPesel]; !ok {
		t.Fatalf("want pesel error in summary, got %v", res.Errors)
	}
	if _, ok := res.Errors[model.FieldAccidentDate]; !ok {
		t.Fatalf("want accident.date error in summary, got %v", res.Errors)
	}
}

func TestValidateStep_FirstErrorWins(t *testing.T) {
	v := validBasic()
	v.Pesel = ""
	v.FirstName = ""
	res := ValidateStep(&v, model.StepBasic)
	field, msg := res.First()
	if field != model.FieldPesel {
		t.Fatalf("first error field: want pesel, got %s", field)
	}
	if msg != "PESEL powinien mieć 11 cyfr" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestValidateStep_DocTypeEnum(t *testing.T) {
	v := validBasic()
	v.DocType = "driving_license"
	res := ValidateStep(&v, model.StepBasic)
	if res.Errors[model.FieldDocType] == "" {
		t.Fatalf("unknown doc type must fail, got %v", res.Errors)
	}

	v.DocType = ""
	res = ValidateStep(&v, model.StepBasic)
	if _, ok := res.Errors[model.FieldDocType]; ok {
		t.Fatalf("empty doc type is allowed, got %v", res.Errors)
	}
}
