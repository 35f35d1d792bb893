package broadcast

import (
	"time"

	domainEmergency "pet-emergency-api/src/domain/emergency"
	domainErrors "pet-emergency-api/src/domain/errors"
	logger "pet-emergency-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BroadcastMessage is the database model for broadcast messages. Rows are never
// deleted; they form the delivery audit trail.
type BroadcastMessage struct {
	ID                 int        `gorm:"primaryKey"`
	Reference          string     `gorm:"column:reference;size:36;uniqueIndex"`
	EmergencyRequestID int        `gorm:"column:emergency_request_id;uniqueIndex:idx_request_hospital_channel"`
	HospitalID         int        `gorm:"column:hospital_id;uniqueIndex:idx_request_hospital_channel"`
	Channel            string     `gorm:"column:channel;size:16;uniqueIndex:idx_request_hospital_channel"`
	Recipient          string     `gorm:"column:recipient;size:255"`
	Content            string     `gorm:"column:content;type:text"`
	Status             string     `gorm:"column:status;size:16;index"`
	RetryCount         int        `gorm:"column:retry_count;default:0"`
	ErrorMessage       string     `gorm:"column:error_message;type:text"`
	CreatedAt          time.Time  `gorm:"autoCreateTime:mili"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime:mili"`
	SentAt             *time.Time `gorm:"column:sent_at"`
	DeliveredAt        *time.Time `gorm:"column:delivered_at"`
	ReadAt             *time.Time `gorm:"column:read_at"`
	FailedAt           *time.Time `gorm:"column:failed_at"`
}

func (BroadcastMessage) TableName() string {
	return "broadcast_messages"
}

// ColumnsBroadcastMessageMapping maps JSON field names to DB column names
var ColumnsBroadcastMessageMapping = map[string]string{
	"status":       "status",
	"retryCount":   "retry_count",
	"errorMessage": "error_message",
	"sentAt":       "sent_at",
	"deliveredAt":  "delivered_at",
	"readAt":       "read_at",
	"failedAt":     "failed_at",
}

// BroadcastMessageRepositoryInterface defines the persistence operations for broadcast messages
type BroadcastMessageRepositoryInterface interface {
	// CreateIgnoreConflict inserts a message unless a row for the same
	// (request, hospital, channel) tuple already exists. Returns whether a row
	// was actually created, together with the row now present in the database.
	CreateIgnoreConflict(message *domainEmergency.BroadcastMessage) (bool, *domainEmergency.BroadcastMessage, error)
	GetByID(id int) (*domainEmergency.BroadcastMessage, error)
	GetByReference(reference string) (*domainEmergency.BroadcastMessage, error)
	List(emergencyRequestID int, status string) (*[]domainEmergency.BroadcastMessage, error)
	// TransitionStatus performs an optimistic compare-and-set: the update only
	// applies while the row still has status=from. Returns false when the row
	// was concurrently moved to another status.
	TransitionStatus(id int, from, to domainEmergency.Status, updates map[string]interface{}) (bool, error)
	CountsByRequest(emergencyRequestID int) (*domainEmergency.StatusCounts, error)
	StatsByChannel(emergencyRequestID int) (*[]domainEmergency.ChannelStats, error)
}

type BroadcastMessageRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewBroadcastMessageRepository(db *gorm.DB, loggerInstance *logger.Logger) BroadcastMessageRepositoryInterface {
	return &BroadcastMessageRepository{DB: db, Logger: loggerInstance}
}

func (r *BroadcastMessageRepository) CreateIgnoreConflict(message *domainEmergency.BroadcastMessage) (bool, *domainEmergency.BroadcastMessage, error) {
	row := broadcastMessageFromDomainMapper(message)

	// Idempotent fan-out: the unique index on (request, hospital, channel) plus
	// ON CONFLICT DO NOTHING closes the pre-check-then-insert race.
	txDb := r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "emergency_request_id"},
			{Name: "hospital_id"},
			{Name: "channel"},
		},
		DoNothing: true,
	}).Create(row)
	if txDb.Error != nil {
		r.Logger.Error("Error creating broadcast message",
			zap.Error(txDb.Error),
			zap.Int("emergencyRequestID", message.EmergencyRequestID),
			zap.Int("hospitalID", message.HospitalID),
			zap.String("channel", string(message.Channel)))
		return false, nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}

	if txDb.RowsAffected == 0 {
		var existing BroadcastMessage
		err := r.DB.Where("emergency_request_id = ? AND hospital_id = ? AND channel = ?",
			message.EmergencyRequestID, message.HospitalID, string(message.Channel)).
			First(&existing).Error
		if err != nil {
			r.Logger.Error("Error loading existing broadcast message after conflict", zap.Error(err))
			return false, nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
		}
		return false, existing.toDomainMapper(), nil
	}

	return true, row.toDomainMapper(), nil
}

func (r *BroadcastMessageRepository) GetByID(id int) (*domainEmergency.BroadcastMessage, error) {
	var message BroadcastMessage
	err := r.DB.Where("id = ?", id).First(&message).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			r.Logger.Warn("Broadcast message not found", zap.Int("id", id))
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting broadcast message by ID", zap.Error(err), zap.Int("id", id))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return message.toDomainMapper(), nil
}

func (r *BroadcastMessageRepository) GetByReference(reference string) (*domainEmergency.BroadcastMessage, error) {
	var message BroadcastMessage
	err := r.DB.Where("reference = ?", reference).First(&message).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			r.Logger.Warn("Broadcast message not found by reference", zap.String("reference", reference))
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting broadcast message by reference", zap.Error(err), zap.String("reference", reference))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return message.toDomainMapper(), nil
}

func (r *BroadcastMessageRepository) List(emergencyRequestID int, status string) (*[]domainEmergency.BroadcastMessage, error) {
	var messages []BroadcastMessage
	query := r.DB.Order("created_at ASC")
	if emergencyRequestID > 0 {
		query = query.Where("emergency_request_id = ?", emergencyRequestID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&messages).Error; err != nil {
		r.Logger.Error("Error listing broadcast messages", zap.Error(err))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return broadcastMessageArrayToDomainMapper(&messages), nil
}

func (r *BroadcastMessageRepository) TransitionStatus(id int, from, to domainEmergency.Status, updates map[string]interface{}) (bool, error) {
	updateData := map[string]interface{}{"status": string(to)}
	for k, v := range updates {
		if column, ok := ColumnsBroadcastMessageMapping[k]; ok {
			updateData[column] = v
		} else {
			updateData[k] = v
		}
	}

	txDb := r.DB.Model(&BroadcastMessage{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updateData)
	if txDb.Error != nil {
		r.Logger.Error("Error transitioning broadcast message status",
			zap.Error(txDb.Error),
			zap.Int("id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)))
		return false, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}

	return txDb.RowsAffected == 1, nil
}

func (r *BroadcastMessageRepository) CountsByRequest(emergencyRequestID int) (*domainEmergency.StatusCounts, error) {
	type statusCount struct {
		Status string
		Count  int
	}
	var rows []statusCount
	err := r.DB.Model(&BroadcastMessage{}).
		Select("status, count(*) as count").
		Where("emergency_request_id = ?", emergencyRequestID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		r.Logger.Error("Error counting broadcast messages", zap.Error(err), zap.Int("emergencyRequestID", emergencyRequestID))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}

	counts := &domainEmergency.StatusCounts{}
	for _, row := range rows {
		applyStatusCount(counts, row.Status, row.Count)
	}
	return counts, nil
}

func (r *BroadcastMessageRepository) StatsByChannel(emergencyRequestID int) (*[]domainEmergency.ChannelStats, error) {
	type channelStatusCount struct {
		Channel string
		Status  string
		Count   int
	}
	var rows []channelStatusCount
	query := r.DB.Model(&BroadcastMessage{}).
		Select("channel, status, count(*) as count").
		Group("channel").Group("status")
	if emergencyRequestID > 0 {
		query = query.Where("emergency_request_id = ?", emergencyRequestID)
	}
	if err := query.Scan(&rows).Error; err != nil {
		r.Logger.Error("Error aggregating broadcast messages by channel", zap.Error(err))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}

	byChannel := make(map[string]*domainEmergency.StatusCounts)
	for _, row := range rows {
		counts, ok := byChannel[row.Channel]
		if !ok {
			counts = &domainEmergency.StatusCounts{}
			byChannel[row.Channel] = counts
		}
		applyStatusCount(counts, row.Status, row.Count)
	}

	stats := make([]domainEmergency.ChannelStats, 0, len(byChannel))
	for _, channel := range domainEmergency.AllChannels {
		if counts, ok := byChannel[string(channel)]; ok {
			stats = append(stats, domainEmergency.ChannelStats{Channel: channel, Counts: *counts})
		}
	}
	return &stats, nil
}

func applyStatusCount(counts *domainEmergency.StatusCounts, status string, count int) {
	counts.Total += count
	switch domainEmergency.Status(status) {
	case domainEmergency.StatusQueued:
		counts.Queued += count
	case domainEmergency.StatusSent:
		counts.Sent += count
	case domainEmergency.StatusDelivered:
		counts.Delivered += count
	case domainEmergency.StatusRead:
		counts.Read += count
	case domainEmergency.StatusFailed:
		counts.Failed += count
	}
}
