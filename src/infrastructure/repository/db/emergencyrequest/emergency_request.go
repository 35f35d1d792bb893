package emergencyrequest

import (
	"time"

	domainEmergency "pet-emergency-api/src/domain/emergency"
	domainErrors "pet-emergency-api/src/domain/errors"
	logger "pet-emergency-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EmergencyRequest is the database model for emergency requests. Only the
// fields the delivery pipeline needs live here; the owner/pet profile CRUD is a
// separate service.
type EmergencyRequest struct {
	ID                  int       `gorm:"primaryKey"`
	PetName             string    `gorm:"column:pet_name;size:100"`
	Species             string    `gorm:"column:species;size:50"`
	Symptom             string    `gorm:"column:symptom;type:text"`
	OwnerName           string    `gorm:"column:owner_name;size:100"`
	OwnerContact        string    `gorm:"column:owner_contact;size:100"`
	ShareMedicalRecords bool      `gorm:"column:share_medical_records;default:false"`
	CreatedAt           time.Time `gorm:"autoCreateTime:mili"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime:mili"`
}

func (EmergencyRequest) TableName() string {
	return "emergency_requests"
}

// EmergencyRequestRepositoryInterface defines persistence operations for emergency requests
type EmergencyRequestRepositoryInterface interface {
	Create(request *domainEmergency.EmergencyRequest) (*domainEmergency.EmergencyRequest, error)
	GetByID(id int) (*domainEmergency.EmergencyRequest, error)
}

type EmergencyRequestRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewEmergencyRequestRepository(db *gorm.DB, loggerInstance *logger.Logger) EmergencyRequestRepositoryInterface {
	return &EmergencyRequestRepository{DB: db, Logger: loggerInstance}
}

func (r *EmergencyRequestRepository) Create(request *domainEmergency.EmergencyRequest) (*domainEmergency.EmergencyRequest, error) {
	row := emergencyRequestFromDomainMapper(request)
	if err := r.DB.Create(row).Error; err != nil {
		r.Logger.Error("Error creating emergency request", zap.Error(err))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	r.Logger.Info("Successfully created emergency request", zap.Int("id", row.ID))
	return row.toDomainMapper(), nil
}

func (r *EmergencyRequestRepository) GetByID(id int) (*domainEmergency.EmergencyRequest, error) {
	var request EmergencyRequest
	err := r.DB.Where("id = ?", id).First(&request).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			r.Logger.Warn("Emergency request not found", zap.Int("id", id))
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting emergency request by ID", zap.Error(err), zap.Int("id", id))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return request.toDomainMapper(), nil
}

func (m *EmergencyRequest) toDomainMapper() *domainEmergency.EmergencyRequest {
	return &domainEmergency.EmergencyRequest{
		ID:                  m.ID,
		PetName:             m.PetName,
		Species:             m.Species,
		Symptom:             m.Symptom,
		OwnerName:           m.OwnerName,
		OwnerContact:        m.OwnerContact,
		ShareMedicalRecords: m.ShareMedicalRecords,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func emergencyRequestFromDomainMapper(m *domainEmergency.EmergencyRequest) *EmergencyRequest {
	return &EmergencyRequest{
		ID:                  m.ID,
		PetName:             m.PetName,
		Species:             m.Species,
		Symptom:             m.Symptom,
		OwnerName:           m.OwnerName,
		OwnerContact:        m.OwnerContact,
		ShareMedicalRecords: m.ShareMedicalRecords,
	}
}
