package di

import (
	"sync"

	"pet-emergency-api/src/domain/common"
	"pet-emergency-api/src/domain/consent"
	domainEmergency "pet-emergency-api/src/domain/emergency"
	"pet-emergency-api/src/domain/hospital"
	"pet-emergency-api/src/infrastructure/channels"
	"pet-emergency-api/src/infrastructure/clients/consentclient"
	"pet-emergency-api/src/infrastructure/clients/ranking"
	"pet-emergency-api/src/infrastructure/helper"
	"pet-emergency-api/src/infrastructure/messaging"
	"pet-emergency-api/src/infrastructure/utils"

	authUseCase "pet-emergency-api/src/application/usecases/auth"
	deliveryUseCase "pet-emergency-api/src/application/usecases/delivery"
	dispatchUseCase "pet-emergency-api/src/application/usecases/dispatch"
	emergencyUseCase "pet-emergency-api/src/application/usecases/emergency"
	statusUseCase "pet-emergency-api/src/application/usecases/status"
	logger "pet-emergency-api/src/infrastructure/logger"
	"pet-emergency-api/src/infrastructure/repository/db"
	"pet-emergency-api/src/infrastructure/repository/db/broadcast"
	"pet-emergency-api/src/infrastructure/repository/db/emergencyrequest"
	authController "pet-emergency-api/src/infrastructure/rest/controllers/auth"
	emergencyController "pet-emergency-api/src/infrastructure/rest/controllers/emergency"
	messagesController "pet-emergency-api/src/infrastructure/rest/controllers/messages"
	"pet-emergency-api/src/infrastructure/security"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApplicationContext holds all application dependencies and services
type ApplicationContext struct {
	DB                         *gorm.DB
	Logger                     *logger.Logger
	AuthController             authController.IAuthController
	EmergencyController        emergencyController.IEmergencyController
	MessagesController         messagesController.IMessagesController
	JWTService                 security.IJWTService
	CommonService              common.CommonService
	EmergencyRequestRepository emergencyrequest.EmergencyRequestRepositoryInterface
	BroadcastMessageRepository broadcast.BroadcastMessageRepositoryInterface
	AuthUseCase                authUseCase.IAuthUseCase
	EmergencyUseCase           emergencyUseCase.IEmergencyUseCase
	DispatchUseCase            dispatchUseCase.IDispatchUseCase
	DeliveryUseCase            deliveryUseCase.IDeliveryUseCase
	StatusUseCase              statusUseCase.IStatusUseCase
	BroadcastProcessor         *messaging.BroadcastProcessor
	ChannelRegistry            *channels.Registry
	RankingService             hospital.RankingService
	ConsentService             consent.Service
}

var (
	loggerInstance *logger.Logger
	loggerOnce     sync.Once
)

func GetLogger() *logger.Logger {
	loggerOnce.Do(func() {
		loggerInstance, _ = logger.NewLogger()
	})
	return loggerInstance
}

// SetupDependencies creates a new application context with all dependencies
func SetupDependencies(loggerInstance *logger.Logger) (*ApplicationContext, error) {
	database, err := db.InitDB(loggerInstance)
	if err != nil {
		return nil, err
	}

	// Channel providers come from a YAML file; invalid providers are dropped
	// there, so an emergency can still go out over the remaining channels.
	channelConfigPath := utils.GetEnv("CHANNEL_CONFIG_PATH", "channels.yml")
	channelConfig, dropped, err := channels.LoadConfig(channelConfigPath)
	if err != nil {
		return nil, err
	}
	for _, dropErr := range dropped {
		loggerInstance.Warn("Channel provider disabled", zap.Error(dropErr))
	}
	registry := channels.NewRegistry(channelConfig)
	loggerInstance.Info("Channel providers configured", zap.Any("enabled", registry.EnabledChannels()))

	jwtService := security.NewJWTService()
	validator := helper.NewValidator(loggerInstance)
	commonService := common.NewCommonService(validator)

	emergencyRequestRepo := emergencyrequest.NewEmergencyRequestRepository(database, loggerInstance)
	broadcastMessageRepo := broadcast.NewBroadcastMessageRepository(database, loggerInstance)

	// Collaborator services: ranked hospital candidates and consented medical
	// context. Both fall back to local defaults when no service URL is set.
	var rankingService hospital.RankingService
	if rankingURL := utils.GetEnv("RANKING_SERVICE_URL", ""); rankingURL != "" {
		rankingService = ranking.NewClient(rankingURL, loggerInstance)
	} else {
		hospitalsPath := utils.GetEnv("HOSPITALS_CONFIG_PATH", "hospitals.yml")
		rankingService, err = ranking.NewStaticRanking(hospitalsPath)
		if err != nil {
			return nil, err
		}
		loggerInstance.Info("Using static hospital list", zap.String("path", hospitalsPath))
	}

	var consentService consent.Service
	if consentURL := utils.GetEnv("CONSENT_SERVICE_URL", ""); consentURL != "" {
		consentService = consentclient.NewClient(consentURL, loggerInstance)
	} else {
		consentService = consentclient.NewDisabled()
		loggerInstance.Info("Consent service not configured, dispatching without medical context")
	}

	broadcastProcessor := messaging.NewBroadcastProcessor(
		registry,
		broadcastMessageRepo,
		loggerInstance,
		utils.GetEnvInt("BROADCAST_WORKERS", 5),
	)

	dispatchUC := dispatchUseCase.NewDispatchUseCase(
		rankingService,
		consentService,
		registry,
		broadcastMessageRepo,
		broadcastProcessor,
		loggerInstance,
	)
	emergencyUC := emergencyUseCase.NewEmergencyUseCase(emergencyRequestRepo, dispatchUC, loggerInstance)
	deliveryUC := deliveryUseCase.NewDeliveryUseCase(broadcastMessageRepo, broadcastProcessor, loggerInstance)
	statusUC := statusUseCase.NewStatusUseCase(emergencyRequestRepo, broadcastMessageRepo, loggerInstance)
	authUC := authUseCase.NewAuthUseCase(jwtService, loggerInstance)

	authCtrl := authController.NewAuthController(commonService, authUC, loggerInstance)
	emergencyCtrl := emergencyController.NewEmergencyController(commonService, emergencyUC, statusUC, loggerInstance)
	messagesCtrl := messagesController.NewMessagesController(commonService, statusUC, deliveryUC, loggerInstance)

	return &ApplicationContext{
		DB:                         database,
		Logger:                     loggerInstance,
		AuthController:             authCtrl,
		EmergencyController:        emergencyCtrl,
		MessagesController:         messagesCtrl,
		JWTService:                 jwtService,
		CommonService:              commonService,
		EmergencyRequestRepository: emergencyRequestRepo,
		BroadcastMessageRepository: broadcastMessageRepo,
		AuthUseCase:                authUC,
		EmergencyUseCase:           emergencyUC,
		DispatchUseCase:            dispatchUC,
		DeliveryUseCase:            deliveryUC,
		StatusUseCase:              statusUC,
		BroadcastProcessor:         broadcastProcessor,
		ChannelRegistry:            registry,
		RankingService:             rankingService,
		ConsentService:             consentService,
	}, nil
}

// NewTestApplicationContext creates an application context for testing with mocked dependencies
func NewTestApplicationContext(
	mockEmergencyRequestRepo emergencyrequest.EmergencyRequestRepositoryInterface,
	mockBroadcastMessageRepo broadcast.BroadcastMessageRepositoryInterface,
	mockJWTService security.IJWTService,
	loggerInstance *logger.Logger,
) *ApplicationContext {
	validator := helper.NewValidator(loggerInstance)
	commonService := common.NewCommonService(validator)

	statusUC := statusUseCase.NewStatusUseCase(mockEmergencyRequestRepo, mockBroadcastMessageRepo, loggerInstance)
	deliveryUC := deliveryUseCase.NewDeliveryUseCase(mockBroadcastMessageRepo, noopEnqueuer{}, loggerInstance)
	authUC := authUseCase.NewAuthUseCase(mockJWTService, loggerInstance)

	authCtrl := authController.NewAuthController(commonService, authUC, loggerInstance)
	messagesCtrl := messagesController.NewMessagesController(commonService, statusUC, deliveryUC, loggerInstance)

	return &ApplicationContext{
		Logger:                     loggerInstance,
		AuthController:             authCtrl,
		MessagesController:         messagesCtrl,
		JWTService:                 mockJWTService,
		CommonService:              commonService,
		EmergencyRequestRepository: mockEmergencyRequestRepo,
		BroadcastMessageRepository: mockBroadcastMessageRepo,
		AuthUseCase:                authUC,
		DeliveryUseCase:            deliveryUC,
		StatusUseCase:              statusUC,
	}
}

type noopEnqueuer struct{}

func (noopEnqueuer) EnqueueMessage(*domainEmergency.BroadcastMessage) {}
