// Package mapper reshapes the form value tree into the backend-namespaced
// payload and owns the single bidirectional field-path table shared by the
// remote validator and the controller.
package mapper

import (
	"strings"

	"github.com/zgloszenie/accident-form/internal/model"
)

// Person is the injured_person payload group.
type Person struct {
	Pesel          *string `json:"pesel"`
	DocumentType   *string `json:"document_type"`
	DocumentNumber *string `json:"document_number"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	BirthDate      *string `json:"birth_date"`
	BirthPlace     *string `json:"birth_place"`
	Phone          *string `json:"phone"`
}

// Address is the shape of injured_address and the correspondence address.
// An unset country is an explicit null on the wire, never a missing key.
type Address struct {
	Street          *string `json:"street"`
	HouseNumber     *string `json:"house_number"`
	ApartmentNumber *string `json:"apartment_number"`
	PostalCode      *string `json:"postal_code"`
	City            *string `json:"city"`
	Country         *string `json:"country"`
}

// PrevAddress is the injured_previous_address group; it carries no country.
type PrevAddress struct {
	Street          *string `json:"street"`
	HouseNumber     *string `json:"house_number"`
	ApartmentNumber *string `json:"apartment_number"`
	PostalCode      *string `json:"postal_code"`
	City            *string `json:"city"`
}

// AccidentInfo is the accident_info payload group.
type AccidentInfo struct {
	AccidentDate           *string `json:"accident_date"`
	AccidentTime           *string `json:"accident_time"`
	AccidentPlace          *string `json:"accident_place"`
	PlannedWorkStart       *string `json:"planned_work_start"`
	PlannedWorkEnd         *string `json:"planned_work_end"`
	InjuriesDescription    *string `json:"injuries_description"`
	DetailedDescription    *string `json:"detailed_description"`
	FirstAidProvided       bool    `json:"first_aid_provided"`
	FirstAidFacility       *string `json:"first_aid_facility"`
	InvestigatingAuthority *string `json:"investigating_authority"`
	MachineInvolved        bool    `json:"machine_involved"`
	MachineDescription     *string `json:"machine_description"`
	MachineCertified       bool    `json:"machine_certified"`
	MachineRegistered      bool    `json:"machine_registered"`
}

// Payload is the backend form document. Optional nested address groups are
// nil (serialized as null) when nothing inside them is set.
type Payload struct {
	InjuredPerson                Person       `json:"injured_person"`
	InjuredAddress               Address      `json:"injured_address"`
	InjuredPreviousAddress       *PrevAddress `json:"injured_previous_address"`
	InjuredCorrespondenceAddress *Address     `json:"injured_correspondence_address"`
	CorrespondenceType           string       `json:"correspondence_type"`
	Reporter                     *Person      `json:"reporter,omitempty"`
	AccidentInfo                 AccidentInfo `json:"accident_info"`
}

// ns maps an empty string to nil so unset fields serialize as null.
func ns(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MapCorrespondenceType remaps the form delivery mode to the backend enum.
func MapCorrespondenceType(mode string) string {
	switch mode {
	case model.ModeAddress:
		return "standard"
	case model.ModePosteRestante:
		return "poste_restante"
	case model.ModePOBox:
		return "po_box"
	case model.ModePostalCompartment:
		return "postal_compartment"
	default:
		return "standard"
	}
}

// MapFormToBackendPayload derives the backend payload from the value tree.
// It never fails; empty optional groups come out as nil, not empty objects.
func MapFormToBackendPayload(v *model.FormValues) Payload {
	var prev *PrevAddress
	lr := v.LastResidence
	if lr.Street != "" || lr.City != "" || lr.PostalCode != "" || lr.HouseNumber != "" {
		prev = &PrevAddress{
			Street:          ns(lr.Street),
			HouseNumber:     ns(lr.HouseNumber),
			ApartmentNumber: ns(lr.ApartmentNumber),
			PostalCode:      ns(lr.PostalCode),
			City:            ns(lr.City),
		}
	}

	var corr *Address
	co := v.Correspondence
	if co.Street != "" || co.City != "" || co.PostalCode != "" {
		corr = &Address{
			Street:          ns(co.Street),
			HouseNumber:     ns(co.HouseNumber),
			ApartmentNumber: ns(co.ApartmentNumber),
			PostalCode:      ns(co.PostalCode),
			City:            ns(co.City),
			Country:         ns(co.Country),
		}
	}

	return Payload{
		InjuredPerson: Person{
			Pesel:          ns(v.Pesel),
			DocumentType:   ns(v.DocType),
			DocumentNumber: ns(v.DocNumber),
			FirstName:      ns(v.FirstName),
			LastName:       ns(v.LastName),
			BirthDate:      ns(v.BirthDate),
			BirthPlace:     ns(v.BirthPlace),
			Phone:          ns(v.Phone),
		},
		InjuredAddress: Address{
			Street:          ns(v.Residence.Street),
			HouseNumber:     ns(v.Residence.HouseNumber),
			ApartmentNumber: ns(v.Residence.ApartmentNumber),
			PostalCode:      ns(v.Residence.PostalCode),
			City:            ns(v.Residence.City),
			Country:         ns(v.Residence.Country),
		},
		InjuredPreviousAddress:       prev,
		InjuredCorrespondenceAddress: corr,
		CorrespondenceType:           MapCorrespondenceType(co.Mode),
		AccidentInfo: AccidentInfo{
			AccidentDate:           ns(v.Accident.Date),
			AccidentTime:           ns(v.Accident.PlannedHoursStart),
			AccidentPlace:          ns(v.Accident.Place),
			PlannedWorkStart:       ns(v.Accident.PlannedHoursStart),
			PlannedWorkEnd:         ns(v.Accident.PlannedHoursEnd),
			InjuriesDescription:    ns(v.Accident.InjuryTypes),
			DetailedDescription:    ns(v.Accident.AccidentDetails),
			FirstAidProvided:       v.Accident.FirstAid,
			FirstAidFacility:       ns(v.Accident.MedicalFacility),
			InvestigatingAuthority: ns(v.Accident.Authority),
			MachineInvolved:        v.Accident.MachineRelated,
			MachineDescription:     ns(v.Accident.MachineUsageDetails),
			MachineCertified:       v.Accident.MachineCertified,
			MachineRegistered:      v.Accident.MachineRegistered,
		},
	}
}

// hasValue mirrors the inclusion rule for candidate validation paths:
// empty or whitespace-only strings do not count.
func hasValue(s string) bool {
	return strings.TrimSpace(s) != ""
}
