package model

// FieldName is a dotted path addressing a single leaf of FormValues. It is
// the key type for structural errors, remote statuses, and hints.
type FieldName string

const (
	FieldPesel      FieldName = "pesel"
	FieldDocType    FieldName = "docType"
	FieldDocNumber  FieldName = "docNumber"
	FieldFirstName  FieldName = "firstName"
	FieldLastName   FieldName = "lastName"
	FieldBirthDate  FieldName = "birthDate"
	FieldBirthPlace FieldName = "birthPlace"
	FieldPhone      FieldName = "phone"

	FieldResidenceAbroad  FieldName = "residence.abroad"
	FieldResidenceStreet  FieldName = "residence.street"
	FieldResidenceHouseNo FieldName = "residence.houseNumber"
	FieldResidenceAptNo   FieldName = "residence.apartmentNumber"
	FieldResidencePostal  FieldName = "residence.postalCode"
	FieldResidenceCity    FieldName = "residence.city"
	FieldResidenceCountry FieldName = "residence.country"

	FieldLastResStreet  FieldName = "lastResidence.street"
	FieldLastResHouseNo FieldName = "lastResidence.houseNumber"
	FieldLastResAptNo   FieldName = "lastResidence.apartmentNumber"
	FieldLastResPostal  FieldName = "lastResidence.postalCode"
	FieldLastResCity    FieldName = "lastResidence.city"

	FieldCorrStreet   FieldName = "correspondence.street"
	FieldCorrHouseNo  FieldName = "correspondence.houseNumber"
	FieldCorrAptNo    FieldName = "correspondence.apartmentNumber"
	FieldCorrPostal   FieldName = "correspondence.postalCode"
	FieldCorrCity     FieldName = "correspondence.city"
	FieldCorrCountry  FieldName = "correspondence.country"
	FieldCorrMode     FieldName = "correspondence.mode"
	FieldCorrOnBehalf FieldName = "correspondence.onBehalf"

	FieldAccidentDate        FieldName = "accident.date"
	FieldAccidentPlace       FieldName = "accident.place"
	FieldAccidentHoursStart  FieldName = "accident.plannedHoursStart"
	FieldAccidentHoursEnd    FieldName = "accident.plannedHoursEnd"
	FieldAccidentInjuries    FieldName = "accident.injuryTypes"
	FieldAccidentDetails     FieldName = "accident.accidentDetails"
	FieldAccidentAuthority   FieldName = "accident.authority"
	FieldAccidentFirstAid    FieldName = "accident.firstAid"
	FieldAccidentFacility    FieldName = "accident.medicalFacility"
	FieldAccidentMachine     FieldName = "accident.machineRelated"
	FieldAccidentMachineDesc FieldName = "accident.machineUsageDetails"
	FieldAccidentMachineCert FieldName = "accident.machineCertified"
	FieldAccidentMachineReg  FieldName = "accident.machineRegistered"
)

// StringField returns a pointer to the string leaf addressed by f, or nil if
// f names a boolean or unknown field. Components mutate the value tree only
// through these accessors, so the controller stays the single owner.
func (v *FormValues) StringField(f FieldName) *string {
	switch f {
	case FieldPesel:
		return &v.Pesel
	case FieldDocType:
		return &v.DocType
	case FieldDocNumber:
		return &v.DocNumber
	case FieldFirstName:
		return &v.FirstName
	case FieldLastName:
		return &v.LastName
	case FieldBirthDate:
		return &v.BirthDate
	case FieldBirthPlace:
		return &v.BirthPlace
	case FieldPhone:
		return &v.Phone
	case FieldResidenceStreet:
		return &v.Residence.Street
	case FieldResidenceHouseNo:
		return &v.Residence.HouseNumber
	case FieldResidenceAptNo:
		return &v.Residence.ApartmentNumber
	case FieldResidencePostal:
		return &v.Residence.PostalCode
	case FieldResidenceCity:
		return &v.Residence.City
	case FieldResidenceCountry:
		return &v.Residence.Country
	case FieldLastResStreet:
		return &v.LastResidence.Street
	case FieldLastResHouseNo:
		return &v.LastResidence.HouseNumber
	case FieldLastResAptNo:
		return &v.LastResidence.ApartmentNumber
	case FieldLastResPostal:
		return &v.LastResidence.PostalCode
	case FieldLastResCity:
		return &v.LastResidence.City
	case FieldCorrStreet:
		return &v.Correspondence.Street
	case FieldCorrHouseNo:
		return &v.Correspondence.HouseNumber
	case FieldCorrAptNo:
		return &v.Correspondence.ApartmentNumber
	case FieldCorrPostal:
		return &v.Correspondence.PostalCode
	case FieldCorrCity:
		return &v.Correspondence.City
	case FieldCorrCountry:
		return &v.Correspondence.Country
	case FieldCorrMode:
		return &v.Correspondence.Mode
	case FieldAccidentDate:
		return &v.Accident.Date
	case FieldAccidentPlace:
		return &v.Accident.Place
	case FieldAccidentHoursStart:
		return &v.Accident.PlannedHoursStart
	case FieldAccidentHoursEnd:
		return &v.Accident.PlannedHoursEnd
	case FieldAccidentInjuries:
		return &v.Accident.InjuryTypes
	case FieldAccidentDetails:
		return &v.Accident.AccidentDetails
	case FieldAccidentAuthority:
		return &v.Accident.Authority
	case FieldAccidentFacility:
		return &v.Accident.MedicalFacility
	case FieldAccidentMachineDesc:
		return &v.Accident.MachineUsageDetails
	}
	return nil
}

// BoolField returns a pointer to the boolean leaf addressed by f, or nil.
func (v *FormValues) BoolField(f FieldName) *bool {
	switch f {
	case FieldResidenceAbroad:
		return &v.Residence.Abroad
	case FieldCorrOnBehalf:
		return &v.Correspondence.OnBehalf
	case FieldAccidentFirstAid:
		return &v.Accident.FirstAid
	case FieldAccidentMachine:
		return &v.Accident.MachineRelated
	case FieldAccidentMachineCert:
		return &v.Accident.MachineCertified
	case FieldAccidentMachineReg:
		return &v.Accident.MachineRegistered
	}
	return nil
}
