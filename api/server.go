package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/WeSplit-io/WeSplit-Backend/db"
	"github.com/WeSplit-io/WeSplit-Backend/middleware"
	"github.com/WeSplit-io/WeSplit-Backend/models"
	"github.com/WeSplit-io/WeSplit-Backend/providers"
	"github.com/WeSplit-io/WeSplit-Backend/providers/ai"
	"github.com/WeSplit-io/WeSplit-Backend/providers/onramp"
	"github.com/WeSplit-io/WeSplit-Backend/providers/solana"
	activitylogs "github.com/WeSplit-io/WeSplit-Backend/services/activity_logs"
	"github.com/WeSplit-io/WeSplit-Backend/services/contact"
	"github.com/WeSplit-io/WeSplit-Backend/services/deeplink"
	"github.com/WeSplit-io/WeSplit-Backend/services/group"
	"github.com/WeSplit-io/WeSplit-Backend/services/guard"
	"github.com/WeSplit-io/WeSplit-Backend/services/ledger"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/tasks"
	service "github.com/WeSplit-io/WeSplit-Backend/services/notification"
	"github.com/WeSplit-io/WeSplit-Backend/services/notification/notification_channel"
	"github.com/WeSplit-io/WeSplit-Backend/services/paylink"
	"github.com/WeSplit-io/WeSplit-Backend/services/realtime"
	"github.com/WeSplit-io/WeSplit-Backend/services/receipt"
	"github.com/WeSplit-io/WeSplit-Backend/services/redis"
	"github.com/WeSplit-io/WeSplit-Backend/services/transaction"
	user_service "github.com/WeSplit-io/WeSplit-Backend/services/user"
	"github.com/WeSplit-io/WeSplit-Backend/services/wallet"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// / If there's a better place to access this
// / TODO, I feel the config should be the one accessible like this
var TokenController *utils.JWTToken

type Server struct {
	router   *gin.Engine
	store    *db.Store
	config   *utils.Config
	logger   *logging.Logger
	provider *providers.ProviderService
	cache    *redis.RedisService
	hub      *realtime.Hub

	users         *user_service.UserService
	ledger        *ledger.Service
	funding       *wallet.FundingService
	contacts      *contact.ContactService
	groups        *group.GroupService
	transactions  *transaction.TransactionService
	notifications *service.NotificationService
	receipts      *receipt.Service
	links         *deeplink.Router
	audit         *activitylogs.ActivityLog
}

func NewServer(envPath string) *Server {
	c, err := utils.LoadConfig(envPath)
	if err != nil {
		panic(fmt.Sprintf("Could not load config: %v", err))
	}

	conn, err := sqlx.Connect(c.DBDriver, utils.GetDBSource(c, c.DBName))
	if err != nil {
		panic(fmt.Sprintf("Could not load DB: %v", err))
	}

	m, err := migrate.New(
		"file://db/migrations",
		utils.GetDBSource(c, c.DBName),
	)
	if err != nil {
		log.Fatalf("Unable to instantiate the database schema migrator - %v", err)
	}

	if err := m.Up(); err != nil {
		if err != migrate.ErrNoChange {
			log.Fatalf("Unable to migrate up to the latest database schema - %v", err)
		}
	}

	store := db.NewStore(conn)
	g := gin.Default()
	l := logging.NewLogger()

	// External collaborators
	p := providers.NewProviderService()
	chain := solana.NewHeliusProvider()
	onrampProvider := onramp.NewCryptomusProvider()
	agent := ai.NewAiAgentProvider()
	p.AddProvider(chain)
	p.AddProvider(onrampProvider)
	p.AddProvider(agent)

	var cache *redis.RedisService
	if c.RedisHost != "" {
		cache, err = redis.NewRedisService(redis.ConfigFrom(c))
		if err != nil {
			l.Error(fmt.Sprintf("redis unavailable, running without cache: %v", err))
			cache = nil
		}
	}

	// The wallet feed authorizer runs after ledgerService is assigned
	// below; connections only arrive once the server is started.
	var ledgerService *ledger.Service
	hub := realtime.NewHub(l, func(userID int64, walletID string) bool {
		id, err := uuid.Parse(walletID)
		if err != nil {
			return false
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		w, err := ledgerService.GetWallet(ctx, id)
		if err != nil {
			return false
		}
		for _, m := range w.Members {
			if m.UserID == userID {
				return true
			}
		}
		return false
	})
	go hub.Run()

	guards := guard.NewActionGuard()

	users := user_service.NewUserService(user_service.NewRepository(store), l)

	classifier := transaction.NewClassifier(transaction.PolicyColored)
	transactions := transaction.NewTransactionService(transaction.NewRepository(store), classifier, cache, l)

	push := notification_channel.NewPushNotificationService(l)
	sms := notification_channel.NewSMSNotificationService(c, l)
	mailer := service.NewPlunk(c)
	notifications := service.NewNotificationService(service.NewRepository(store), users, push, sms, mailer, hub, guards, l)

	ledgerService = ledger.NewService(store, cache, hub, notifications, transactions, l)

	callbackURL := ""
	if c.PublicBaseURL != "" {
		callbackURL = c.PublicBaseURL + "/api/v1/onramp/callback"
	}
	funding := wallet.NewFundingService(wallet.NewRepository(store), ledgerService, chain, onrampProvider, callbackURL, l)

	contacts := contact.NewContactService(contact.NewRepository(store), guards, l)

	codec, err := group.NewInviteCodec(c.InviteSalt)
	if err != nil {
		panic(fmt.Sprintf("Could not build invite codec: %v", err))
	}
	groups := group.NewGroupService(group.NewRepository(store), codec, guards, l)

	// Link activations get their own guard: the contact and group services
	// already guard the same keys, and a shared instance would treat the
	// nested acquire as a duplicate.
	linkGuards := guard.NewActionGuard()
	links := deeplink.NewRouter(paylink.NewParser(c.AppScheme), contacts, groups, nil, linkGuards, l)

	var imageStore receipt.ObjectUploader
	if s3 := receipt.NewS3Store(c, l); s3 != nil {
		imageStore = s3
	}
	receipts := receipt.NewService(agent, imageStore, l)

	audit := activitylogs.NewActivityLog(store)

	// Housekeeping sweeps; each run logs its own failures and the next
	// interval retries, so the results are dropped here.
	scheduler := tasks.NewTaskScheduler(l)
	scheduler.AddTask("prune-invites", "prune expired group invites", func(ctx context.Context) error {
		_, err := groups.PruneExpiredInvites(ctx)
		return err
	}, time.Hour)
	scheduler.AddTask("prune-notifications", "prune read notifications", func(ctx context.Context) error {
		_, err := notifications.PruneRead(ctx, service.DefaultRetention)
		return err
	}, 24*time.Hour)
	scheduler.AddTask("prune-audit-entries", "prune aged audit entries", func(ctx context.Context) error {
		_, err := audit.DeleteOlderThan(ctx, time.Now().AddDate(-1, 0, 0))
		return err
	}, 24*time.Hour)
	scheduler.ScheduleTask("prune-invites", time.Hour)
	scheduler.ScheduleTask("prune-notifications", 24*time.Hour)
	scheduler.ScheduleTask("prune-audit-entries", 24*time.Hour)

	g.Use(CORSMiddleware())
	g.Use(l.LoggingMiddleWare())
	g.Use(MetricsMiddleware())
	g.Use(middleware.NewActivityLogMiddleware(audit).ActivityLogger())

	TokenController = utils.NewJWTToken(c)

	return &Server{
		router:        g,
		store:         store,
		config:        c,
		logger:        l,
		provider:      p,
		cache:         cache,
		hub:           hub,
		users:         users,
		ledger:        ledgerService,
		funding:       funding,
		contacts:      contacts,
		groups:        groups,
		transactions:  transactions,
		notifications: notifications,
		receipts:      receipts,
		links:         links,
		audit:         audit,
	}
}

func (s *Server) Start() {

	dr := models.SuccessResponse{
		Status:  "success",
		Message: "Welcome to WeSplit!",
		Version: utils.REVISION,
	}

	s.router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dr)
	})

	/// Register Object Routers Below
	Auth{}.router(s)
	Wallet{}.router(s)
	Onramp{}.router(s)
	Link{}.router(s)
	Transaction{}.router(s)
	Contact{}.router(s)
	Group{}.router(s)
	Notification{}.router(s)
	Receipt{}.router(s)
	Realtime{}.router(s)
	Analytics{}.router(s)

	s.router.Run(fmt.Sprintf(":%v", s.config.ServerPort))
}
