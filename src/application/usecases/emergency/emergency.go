package emergency

import (
	"pet-emergency-api/src/application/usecases/dispatch"
	domainEmergency "pet-emergency-api/src/domain/emergency"
	logger "pet-emergency-api/src/infrastructure/logger"
	"pet-emergency-api/src/infrastructure/repository/db/emergencyrequest"

	"go.uber.org/zap"
)

// CreateRequest carries a validated emergency submission into the use case
type CreateRequest struct {
	PetName             string
	Species             string
	Symptom             string
	OwnerName           string
	OwnerContact        string
	ShareMedicalRecords bool
}

// CreateResponse returns the persisted request plus the fan-out summary
type CreateResponse struct {
	Request  *domainEmergency.EmergencyRequest
	Dispatch *dispatch.DispatchResult
}

// IEmergencyUseCase accepts emergency submissions and triggers the broadcast fan-out
type IEmergencyUseCase interface {
	CreateEmergencyRequest(request *CreateRequest) (*CreateResponse, error)
	GetEmergencyRequest(id int) (*domainEmergency.EmergencyRequest, error)
}

type EmergencyUseCase struct {
	emergencyRequestRepository emergencyrequest.EmergencyRequestRepositoryInterface
	dispatchUseCase            dispatch.IDispatchUseCase
	Logger                     *logger.Logger
}

func NewEmergencyUseCase(
	emergencyRequestRepository emergencyrequest.EmergencyRequestRepositoryInterface,
	dispatchUseCase dispatch.IDispatchUseCase,
	loggerInstance *logger.Logger,
) IEmergencyUseCase {
	return &EmergencyUseCase{
		emergencyRequestRepository: emergencyRequestRepository,
		dispatchUseCase:            dispatchUseCase,
		Logger:                     loggerInstance,
	}
}

// CreateEmergencyRequest persists the request, then fans it out to the ranked
// hospitals. Fan-out failure after persistence is not fatal to the submission:
// the request exists and the broadcast watcher / a re-dispatch can finish the
// job, so the caller still gets the created request back.
func (u *EmergencyUseCase) CreateEmergencyRequest(request *CreateRequest) (*CreateResponse, error) {
	created, err := u.emergencyRequestRepository.Create(&domainEmergency.EmergencyRequest{
		PetName:             request.PetName,
		Species:             request.Species,
		Symptom:             request.Symptom,
		OwnerName:           request.OwnerName,
		OwnerContact:        request.OwnerContact,
		ShareMedicalRecords: request.ShareMedicalRecords,
	})
	if err != nil {
		return nil, err
	}

	result, err := u.dispatchUseCase.DispatchBroadcast(created)
	if err != nil {
		u.Logger.Error("Broadcast fan-out failed after request creation",
			zap.Error(err),
			zap.Int("emergencyRequestID", created.ID))
		result = &dispatch.DispatchResult{}
	}

	return &CreateResponse{Request: created, Dispatch: result}, nil
}

func (u *EmergencyUseCase) GetEmergencyRequest(id int) (*domainEmergency.EmergencyRequest, error) {
	return u.emergencyRequestRepository.GetByID(id)
}
