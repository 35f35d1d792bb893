package consent

// MedicalContext is the consented summary embedded into rendered messages.
type MedicalContext struct {
	Summary     string
	RecordsLink string
}

// Service looks up whether the owner consented to sharing medical records for a
// request and, if so, returns the context to embed. Implementations live in the
// medical-record service; this repository only consumes the boundary.
type Service interface {
	MedicalContextFor(emergencyRequestID int) (*MedicalContext, error)
}
