// Package catalog defines the fixed document-type checklists that every
// compliance holder carries. Vehicles (trucks and trailers) and drivers have
// disjoint catalogs; each holder owns exactly one slot per catalog entry, in
// catalog order.
package catalog

// DocumentType identifies one entry in a holder's document checklist.
type DocumentType string

// Vehicle document types, in checklist order.
const (
	Registration           DocumentType = "registration"
	VehicleCard            DocumentType = "vehicle-card"
	ADRT9                  DocumentType = "adr-t9"
	TrafficInsurance       DocumentType = "traffic-insurance"
	HazmatInsurance        DocumentType = "hazmat-insurance"
	ComprehensiveInsurance DocumentType = "comprehensive-insurance"
	PeriodicInspection     DocumentType = "periodic-inspection"
	EmissionTest           DocumentType = "emission-test"
	MeterCalibration       DocumentType = "meter-calibration"
	TachographCalibration  DocumentType = "tachograph-calibration"
	ActivityLicense        DocumentType = "activity-license"
	OperatingLicense       DocumentType = "operating-license"
	HosePressureTest       DocumentType = "hose-pressure-test"
	TankInspectionCert     DocumentType = "tank-inspection-certificate"
	TaxPlate               DocumentType = "tax-plate"
)

// Driver document types, in checklist order.
const (
	IdentityCard           DocumentType = "id"
	DriverLicense          DocumentType = "driver-license"
	PsychometricTest       DocumentType = "psychometric-test"
	CriminalRecord         DocumentType = "criminal-record"
	EmploymentStartNotice  DocumentType = "employment-start-notice"
	ResidenceCertificate   DocumentType = "residence-certificate"
	PPEAssignment          DocumentType = "ppe-assignment"
	HealthExam             DocumentType = "health-exam"
	OHSTrainingCert        DocumentType = "ohs-training-certificate"
	FireSafetyTrainingCert DocumentType = "fire-safety-training-certificate"
)

var vehicleCatalog = []DocumentType{
	Registration,
	VehicleCard,
	ADRT9,
	TrafficInsurance,
	HazmatInsurance,
	ComprehensiveInsurance,
	PeriodicInspection,
	EmissionTest,
	MeterCalibration,
	TachographCalibration,
	ActivityLicense,
	OperatingLicense,
	HosePressureTest,
	TankInspectionCert,
	TaxPlate,
}

var driverCatalog = []DocumentType{
	IdentityCard,
	DriverLicense,
	PsychometricTest,
	CriminalRecord,
	EmploymentStartNotice,
	ResidenceCertificate,
	PPEAssignment,
	HealthExam,
	OHSTrainingCert,
	FireSafetyTrainingCert,
}

var labels = map[DocumentType]string{
	Registration:           "Vehicle Registration",
	VehicleCard:            "Vehicle Card",
	ADRT9:                  "ADR / T9 Certificate",
	TrafficInsurance:       "Traffic Insurance",
	HazmatInsurance:        "Hazardous Materials Insurance",
	ComprehensiveInsurance: "Comprehensive Insurance",
	PeriodicInspection:     "Periodic Inspection",
	EmissionTest:           "Emission Test",
	MeterCalibration:       "Meter Calibration",
	TachographCalibration:  "Tachograph Calibration",
	ActivityLicense:        "Activity License",
	OperatingLicense:       "Operating License",
	HosePressureTest:       "Hose Pressure Test",
	TankInspectionCert:     "Tank Inspection Certificate",
	TaxPlate:               "Tax Plate",

	IdentityCard:           "Identity Card",
	DriverLicense:          "Driver License",
	PsychometricTest:       "Psychometric Test",
	CriminalRecord:         "Criminal Record",
	EmploymentStartNotice:  "Employment Start Notice",
	ResidenceCertificate:   "Residence Certificate",
	PPEAssignment:          "PPE Assignment Form",
	HealthExam:             "Health Examination",
	OHSTrainingCert:        "OHS Training Certificate",
	FireSafetyTrainingCert: "Fire Safety Training Certificate",
}

// VehicleCatalog returns the vehicle document checklist in fixed order.
// The returned slice is a copy; callers may modify it freely.
func VehicleCatalog() []DocumentType {
	result := make([]DocumentType, len(vehicleCatalog))
	copy(result, vehicleCatalog)
	return result
}

// DriverCatalog returns the driver document checklist in fixed order.
// The returned slice is a copy; callers may modify it freely.
func DriverCatalog() []DocumentType {
	result := make([]DocumentType, len(driverCatalog))
	copy(result, driverCatalog)
	return result
}

// Label returns the display label for a document type.
// Unknown types fall back to the raw type string.
func Label(t DocumentType) string {
	if label, ok := labels[t]; ok {
		return label
	}
	return string(t)
}

// IsVehicleType reports whether t belongs to the vehicle catalog.
func IsVehicleType(t DocumentType) bool {
	for _, v := range vehicleCatalog {
		if v == t {
			return true
		}
	}
	return false
}

// IsDriverType reports whether t belongs to the driver catalog.
func IsDriverType(t DocumentType) bool {
	for _, d := range driverCatalog {
		if d == t {
			return true
		}
	}
	return false
}
