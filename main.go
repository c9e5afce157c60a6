package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BerniceZTT/carehome_end/config"
	"github.com/BerniceZTT/carehome_end/controllers"
	"github.com/BerniceZTT/carehome_end/metrics"
	"github.com/BerniceZTT/carehome_end/middleware"
	"github.com/BerniceZTT/carehome_end/pipeline"
	"github.com/BerniceZTT/carehome_end/repository"
	"github.com/BerniceZTT/carehome_end/routes"
	"github.com/BerniceZTT/carehome_end/service"
	"github.com/BerniceZTT/carehome_end/utils"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "加载配置失败:", err)
		os.Exit(1)
	}

	// 初始化日志
	utils.InitLogger(cfg.Debug)
	utils.SetJWTSecret(cfg.JWTKey)

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库
	if err := repository.InitMongoDB(cfg.MongoURI, cfg.MongoDB); err != nil {
		utils.Logger.Fatal().Err(err).Msg("连接MongoDB失败")
	}
	defer repository.CloseMongoDB()

	if err := repository.InitializeCollections(); err != nil {
		utils.Logger.Error().Err(err).Msg("初始化数据库集合失败")
	}

	store := repository.NewMongoStore(repository.Database())
	m := metrics.New(prometheus.DefaultRegisterer)
	hub := service.NewEventHub(utils.Component("events"), m)
	engine := pipeline.NewEngine(cfg.Urgency, utils.Component("pipeline"))
	inquiries := service.NewInquiryService(store, hub, m, utils.Component("inquiry"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := service.NewStaleSweeper(store, engine, hub, m, utils.Component("stale"), cfg.StaleAfterDays)
	sweeper.Start(ctx, cfg.StaleSweepHour)

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.Metrics(m))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.OperationLoggerMiddleware(store))

	routes.RegisterRoutes(router, routes.DefaultDeps(
		controllers.NewInquiryController(inquiries, engine, m, cfg.ExportPrefix),
		controllers.NewEventsController(hub),
	))

	// 事件流是长连接，不设置写超时
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		utils.Logger.Info().Msgf("服务器启动，监听端口: %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal().Err(err).Msg("启动服务器失败")
		}
	}()

	<-ctx.Done()
	utils.Logger.Info().Msg("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.Error().Err(err).Msg("服务器关闭异常")
	}

	utils.Logger.Info().Msg("服务器已优雅关闭")
}
