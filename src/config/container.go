package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-vote-trader/src/client"
	"gitlab.com/open-soft/go-vote-trader/src/controller"
	"gitlab.com/open-soft/go-vote-trader/src/model"
	"gitlab.com/open-soft/go-vote-trader/src/repository"
	"gitlab.com/open-soft/go-vote-trader/src/service"
	"gitlab.com/open-soft/go-vote-trader/src/service/consensus"
	"gitlab.com/open-soft/go-vote-trader/src/service/exchange"
	"gitlab.com/open-soft/go-vote-trader/src/service/risk"
	"gitlab.com/open-soft/go-vote-trader/src/service/scheduler"
	"gitlab.com/open-soft/go-vote-trader/src/service/strategy"
	"gitlab.com/open-soft/go-vote-trader/src/utils"
)

type Container struct {
	Db                 *sql.DB
	CurrentBot         *model.Bot
	TimeService        *utils.TimeHelper
	Formatter          *utils.Formatter
	ExchangeApi        *client.Exchange
	BotRepository      *repository.BotRepository
	MarketRepository   *repository.MarketRepository
	TradeRepository    *repository.TradeRepository
	PositionRepository *repository.PositionRepository
	SettingsRepository *repository.SettingsRepository
	ConfigService      *service.ConfigService
	AuditService       *service.AuditService
	PerformanceTracker *service.PerformanceTracker
	MarketFeedService  *service.MarketFeedService
	StrategyRegistry   *strategy.Registry
	VoteCollector      *strategy.VoteCollector
	ConsensusEngine    *consensus.Engine
	PositionSizer      *risk.PositionSizer
	GuardrailChecker   *risk.GuardrailChecker
	ExecutionLock      *exchange.ExecutionLock
	BalanceService     *exchange.BalanceService
	Coordinator        *exchange.ExecutionCoordinator
	PositionMonitor    *exchange.PositionMonitor
	DecisionScheduler  *scheduler.DecisionScheduler
	BotController      *controller.BotController
}

func InitServiceContainer() Container {
	db, err := sql.Open("mysql", os.Getenv("DATABASE_DSN"))

	if err != nil {
		log.Fatal(fmt.Sprintf("MySQL can't connect: %s", err.Error()))
	}

	db.SetMaxIdleConns(64)
	db.SetMaxOpenConns(64)
	db.SetConnMaxLifetime(time.Minute)

	var ctx = context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_DSN"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	botRepository := repository.BotRepository{
		DB:  db,
		RDB: rdb,
		Ctx: &ctx,
	}

	botUuid := os.Getenv("BOT_UUID")
	if len(botUuid) == 0 {
		botUuid = uuid.New().String()
		log.Printf("BOT_UUID is not set, generated: %s", botUuid)
	}

	currentBot := botRepository.GetCurrentBot(botUuid)
	if currentBot == nil {
		err := botRepository.Create(model.Bot{
			BotUuid:  botUuid,
			Exchange: os.Getenv("EXCHANGE_NAME"),
		})
		if err != nil {
			panic(err)
		}

		currentBot = botRepository.GetCurrentBot(botUuid)
		if currentBot == nil {
			panic(fmt.Sprintf("Can't initialize bot: %s", botUuid))
		}
	}

	log.Printf("Bot [%s] is initialized successfully", currentBot.BotUuid)

	httpClient := http.Client{}
	exchangeApi := client.Exchange{
		ApiKey:         os.Getenv("EXCHANGE_API_KEY"),
		ApiSecret:      os.Getenv("EXCHANGE_API_SECRET"),
		DestinationURI: os.Getenv("EXCHANGE_API_DSN"),
		HttpClient:     &httpClient,
	}

	marketRepository := repository.MarketRepository{
		RDB:        rdb,
		Ctx:        &ctx,
		CurrentBot: currentBot,
	}
	tradeRepository := repository.TradeRepository{
		DB:         db,
		RDB:        rdb,
		Ctx:        &ctx,
		CurrentBot: currentBot,
	}
	positionRepository := repository.PositionRepository{
		DB:         db,
		RDB:        rdb,
		Ctx:        &ctx,
		CurrentBot: currentBot,
	}
	settingsRepository := repository.SettingsRepository{
		DB:         db,
		RDB:        rdb,
		Ctx:        &ctx,
		CurrentBot: currentBot,
	}

	if _, err := settingsRepository.GetSettings(); err != nil {
		log.Printf("No stored settings found, creating defaults: %s", err.Error())

		if err := settingsRepository.CreateSettings(model.DefaultTradingSettings()); err != nil {
			log.Printf("Default settings are not persisted: %s", err.Error())
		}
	}

	timeService := utils.TimeHelper{}
	formatter := utils.Formatter{}

	configService := service.ConfigService{
		SettingsRepository: &settingsRepository,
	}
	auditService := service.AuditService{
		TradeRepository: &tradeRepository,
	}
	performanceTracker := service.PerformanceTracker{
		StatsSource: &tradeRepository,
		TimeService: &timeService,
	}

	strategyRegistry := strategy.NewRegistry()
	strategyRegistry.Register(&strategy.RsiMomentumStrategy{})
	strategyRegistry.Register(&strategy.BandWidthStrategy{})

	voteCollector := strategy.VoteCollector{
		Registry: strategyRegistry,
	}

	consensusEngine := consensus.Engine{
		BaseWeights: map[string]float64{
			"rsi_momentum": 1.00,
			"band_width":   1.00,
		},
		ConditionSource:   &consensus.StaticConditionSource{},
		PerformanceSource: &performanceTracker,
	}

	positionSizer := risk.PositionSizer{}
	guardrailChecker := risk.GuardrailChecker{
		CloseHistory: &marketRepository,
	}

	executionLock := exchange.NewExecutionLock(rdb, &ctx, currentBot)

	balanceService := exchange.BalanceService{
		Exchange:   &exchangeApi,
		RDB:        rdb,
		Ctx:        &ctx,
		CurrentBot: currentBot,
	}

	coordinator := exchange.NewExecutionCoordinator(
		currentBot,
		&exchangeApi,
		&balanceService,
		&positionRepository,
		&auditService,
		&formatter,
		&timeService,
		executionLock,
	)

	positionMonitor := exchange.PositionMonitor{
		Coordinator:      coordinator,
		MarketRepository: &marketRepository,
		SettingsSource:   &configService,
	}

	marketFeedService := service.MarketFeedService{
		Exchange:         &exchangeApi,
		MarketRepository: &marketRepository,
		ConfigService:    &configService,
		StreamAddress:    os.Getenv("EXCHANGE_WS_DSN"),
	}

	decisionScheduler := scheduler.DecisionScheduler{
		ConfigService:    &configService,
		Registry:         strategyRegistry,
		VoteCollector:    &voteCollector,
		Consensus:        &consensusEngine,
		Sizer:            &positionSizer,
		Guardrails:       &guardrailChecker,
		Coordinator:      coordinator,
		MarketRepository: &marketRepository,
		BalanceService:   &balanceService,
		AuditService:     &auditService,
		TimeService:      &timeService,
	}

	botController := controller.BotController{
		CurrentBot:         currentBot,
		ConfigService:      &configService,
		Coordinator:        coordinator,
		Scheduler:          &decisionScheduler,
		TradeRepository:    &tradeRepository,
		SettingsRepository: &settingsRepository,
	}

	return Container{
		Db:                 db,
		CurrentBot:         currentBot,
		TimeService:        &timeService,
		Formatter:          &formatter,
		ExchangeApi:        &exchangeApi,
		BotRepository:      &botRepository,
		MarketRepository:   &marketRepository,
		TradeRepository:    &tradeRepository,
		PositionRepository: &positionRepository,
		SettingsRepository: &settingsRepository,
		ConfigService:      &configService,
		AuditService:       &auditService,
		PerformanceTracker: &performanceTracker,
		MarketFeedService:  &marketFeedService,
		StrategyRegistry:   strategyRegistry,
		VoteCollector:      &voteCollector,
		ConsensusEngine:    &consensusEngine,
		PositionSizer:      &positionSizer,
		GuardrailChecker:   &guardrailChecker,
		ExecutionLock:      executionLock,
		BalanceService:     &balanceService,
		Coordinator:        coordinator,
		PositionMonitor:    &positionMonitor,
		DecisionScheduler:  &decisionScheduler,
		BotController:      &botController,
	}
}

func (c *Container) StartHttpServer() {
	http.HandleFunc("/health/check", c.BotController.GetHealthCheckAction)
	http.HandleFunc("/bot/status", c.BotController.GetStatusAction)
	http.HandleFunc("/position/list", c.BotController.GetPositionListAction)
	http.HandleFunc("/cycle/trigger", c.BotController.PostTriggerCycleAction)
	http.HandleFunc("/position/close/all", c.BotController.PostCloseAllAction)
	http.HandleFunc("/settings/update", c.BotController.PutSettingsAction)

	go func() {
		_ = http.ListenAndServe(":8080", nil)
	}()
}
