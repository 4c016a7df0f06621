// Package model defines the accident notification form value tree and the
// closed set of field names used to key error, status, and hint maps.
package model

// Step identifies one screen of the three-step wizard.
type Step string

const (
	StepBasic    Step = "basic"
	StepAccident Step = "accident"
	StepSummary  Step = "summary"
)

// Next returns the following step; summary is terminal.
func (s Step) Next() Step {
	switch s {
	case StepBasic:
		return StepAccident
	default:
		return StepSummary
	}
}

// Prev returns the preceding step; basic is initial.
func (s Step) Prev() Step {
	switch s {
	case StepSummary:
		return StepAccident
	default:
		return StepBasic
	}
}

// Progress renders the "n / 3" indicator shown in the wizard header.
func (s Step) Progress() string {
	switch s {
	case StepBasic:
		return "1 / 3"
	case StepAccident:
		return "2 / 3"
	default:
		return "3 / 3"
	}
}

// Document type values accepted for DocType (empty means not chosen yet).
const (
	DocIDCard   = "id_card"
	DocPassport = "passport"
	DocOther    = "other"
)

// Correspondence delivery modes.
const (
	ModeAddress           = "adres"
	ModePosteRestante     = "poste_restante"
	ModePOBox             = "skrytka_pocztowa"
	ModePostalCompartment = "przegrodka_pocztowa"
)

// Residence is the injured person's current address, with the abroad flag
// that makes LastResidence required.
type Residence struct {
	Street          string `json:"street"`
	HouseNumber     string `json:"houseNumber"`
	ApartmentNumber string `json:"apartmentNumber"`
	PostalCode      string `json:"postalCode"`
	City            string `json:"city"`
	Country         string `json:"country"`
	Abroad          bool   `json:"abroad"`
}

// LastResidence is the last address in Poland, required only when
// Residence.Abroad is set.
type LastResidence struct {
	Street          string `json:"street"`
	HouseNumber     string `json:"houseNumber"`
	ApartmentNumber string `json:"apartmentNumber"`
	PostalCode      string `json:"postalCode"`
	City            string `json:"city"`
}

// Correspondence is the mailing address plus delivery mode and the
// on-behalf flag.
type Correspondence struct {
	Street          string `json:"street"`
	HouseNumber     string `json:"houseNumber"`
	ApartmentNumber string `json:"apartmentNumber"`
	PostalCode      string `json:"postalCode"`
	City            string `json:"city"`
	Country         string `json:"country"`
	Mode            string `json:"mode"`
	OnBehalf        bool   `json:"onBehalf"`
}

// Accident collects the incident details of step two.
type Accident struct {
	Date                string `json:"date"`
	Place               string `json:"place"`
	PlannedHoursStart   string `json:"plannedHoursStart"`
	PlannedHoursEnd     string `json:"plannedHoursEnd"`
	InjuryTypes         string `json:"injuryTypes"`
	AccidentDetails     string `json:"accidentDetails"`
	Authority           string `json:"authority"`
	FirstAid            bool   `json:"firstAid"`
	MedicalFacility     string `json:"medicalFacility"`
	MachineRelated      bool   `json:"machineRelated"`
	MachineUsageDetails string `json:"machineUsageDetails"`
	MachineCertified    bool   `json:"machineCertified"`
	MachineRegistered   bool   `json:"machineRegistered"`
}

// FormValues is the canonical value tree owned by the form controller. All
// leaves are strings or booleans; the draft store persists it verbatim.
type FormValues struct {
	Pesel          string         `json:"pesel"`
	DocType        string         `json:"docType"`
	DocNumber      string         `json:"docNumber"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	BirthDate      string         `json:"birthDate"`
	BirthPlace     string         `json:"birthPlace"`
	Phone          string         `json:"phone"`
	Residence      Residence      `json:"residence"`
	LastResidence  LastResidence  `json:"lastResidence"`
	Correspondence Correspondence `json:"correspondence"`
	Accident       Accident       `json:"accident"`
}

// Defaults returns the initial value tree for a fresh form.
func Defaults() FormValues {
	return FormValues{
		Residence:      Residence{Country: "Polska"},
		Correspondence: Correspondence{Country: "Polska", Mode: ModeAddress},
	}
}
