package domain

import "errors"

var ErrRecordNotFound = errors.New("patient record not found")

// RecordStatus is the onboarding state of the account's patient record.
// Callers treat it as opaque.
type RecordStatus string

const (
	RecordStatusNotApplicable       RecordStatus = "NOT_APPLICABLE"
	RecordStatusNoRecord            RecordStatus = "NO_RECORD"
	RecordStatusAssessmentSubmitted RecordStatus = "ASSESSMENT_SUBMITTED"
	RecordStatusCounselorAssigned   RecordStatus = "COUNSELOR_ASSIGNED"
	RecordStatusDoctorAssigned      RecordStatus = "DOCTOR_ASSIGNED"
	RecordStatusClosed              RecordStatus = "CLOSED"
	RecordStatusUnknown             RecordStatus = "UNKNOWN"
)

// PatientRecord is the latest stored state of a patient's record.
type PatientRecord struct {
	PatientEmail string
	Status       RecordStatus
}
