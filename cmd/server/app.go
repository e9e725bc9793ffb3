/*
 * @Description: 应用装配：按层初始化配置、存储、服务、路由与定时任务
 * @Author: 安知鱼
 * @Date: 2025-10-17 10:35:28
 * @LastEditTime: 2026-08-30 18:42:10
 * @LastEditors: 安知鱼
 */
package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-ini/ini"
	"github.com/redis/go-redis/v9"

	"github.com/anzhiyu-c/anheyu-cms/internal/app/middleware"
	"github.com/anzhiyu-c/anheyu-cms/internal/app/task"
	"github.com/anzhiyu-c/anheyu-cms/internal/infra/persistence/database"
	"github.com/anzhiyu-c/anheyu-cms/internal/infra/persistence/sqldb"
	"github.com/anzhiyu-c/anheyu-cms/internal/infra/router"
	"github.com/anzhiyu-c/anheyu-cms/internal/infra/storage"
	"github.com/anzhiyu-c/anheyu-cms/pkg/config"
	auth_handler "github.com/anzhiyu-c/anheyu-cms/pkg/handler/auth"
	category_handler "github.com/anzhiyu-c/anheyu-cms/pkg/handler/category"
	contact_handler "github.com/anzhiyu-c/anheyu-cms/pkg/handler/contact"
	post_handler "github.com/anzhiyu-c/anheyu-cms/pkg/handler/post"
	"github.com/anzhiyu-c/anheyu-cms/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-cms/pkg/service/auth"
	category_service "github.com/anzhiyu-c/anheyu-cms/pkg/service/category"
	contact_service "github.com/anzhiyu-c/anheyu-cms/pkg/service/contact"
	post_service "github.com/anzhiyu-c/anheyu-cms/pkg/service/post"
	"github.com/anzhiyu-c/anheyu-cms/pkg/service/query"
	"github.com/anzhiyu-c/anheyu-cms/pkg/service/search"
	"github.com/anzhiyu-c/anheyu-cms/pkg/service/utility"
)

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg         *config.Config
	engine      *gin.Engine
	scheduler   *task.Scheduler
	sqlDB       *sql.DB
	redisClient *redis.Client

	authSvc auth.AuthService
	postSvc post_service.Service
	mw      *middleware.Middleware
}

func (a *App) PrintBanner() {
	banner := `

       █████╗ ███╗   ██╗███████╗██╗  ██╗██╗██╗   ██╗██╗   ██╗
      ██╔══██╗████╗  ██║╚══███╔╝██║  ██║██║╚██╗ ██╔╝██║   ██║
      ███████║██╔██╗ ██║  ███╔╝ ███████║██║ ╚████╔╝ ██║   ██║
      ██╔══██║██║╚██╗██║ ███╔╝  ██╔══██║██║  ╚██╔╝  ██║   ██║
      ██║  ██║██║ ╚████║███████╗██║  ██║██║   ██║   ╚██████╔╝
      ╚═╝  ╚═╝╚═╝  ╚═══╝╚══════╝╚═╝  ╚═╝╚═╝   ╚═╝    ╚═════╝

`
	log.Println(banner)
	log.Println("--------------------------------------------------------")
	log.Println(" Anheyu CMS - 内容管理服务")
	log.Println("--------------------------------------------------------")
}

// NewApp 构建并装配整个应用，返回 App 实例和 cleanup 函数。
func NewApp() (*App, func(), error) {
	// --- Phase 1: 初始化配置 ---
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("初始化配置失败: %w", err)
	}

	// --- Phase 2: 初始化基础设施（数据库、Redis） ---
	sqlDB, err := database.NewSQLDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化数据库失败: %w", err)
	}
	tempCleanup := func() {
		sqlDB.Close()
	}

	dialect := database.Dialect(cfg)
	if err := sqldb.Migrate(context.Background(), sqlDB, dialect); err != nil {
		return nil, tempCleanup, fmt.Errorf("数据库迁移失败: %w", err)
	}

	// Redis 允许缺席：redisClient 为 nil 时搜索服务自动降级为数据库匹配
	redisClient, err := database.NewRedisClient(context.Background(), cfg)
	if err != nil {
		return nil, tempCleanup, fmt.Errorf("初始化 Redis 失败: %w", err)
	}

	// --- Phase 2.5: 初始化安全密钥与 ID 编码器 ---
	// JWTSecret / IDSeed 留空时生成随机值并回写 conf.ini，保证重启后保持一致
	jwtSecret, err := ensureSecret(cfg, config.KeyJWTSecret, 32)
	if err != nil {
		return nil, tempCleanup, fmt.Errorf("初始化 JWT 密钥失败: %w", err)
	}
	idSeed, err := ensureSecret(cfg, config.KeyIDSeed, 16)
	if err != nil {
		return nil, tempCleanup, fmt.Errorf("初始化 IDSeed 失败: %w", err)
	}
	if err := idgen.InitSqidsEncoderWithSeed(idSeed); err != nil {
		return nil, tempCleanup, fmt.Errorf("初始化 ID 编码器失败: %w", err)
	}
	log.Println("✅ ID 编码器初始化成功")

	// --- Phase 3: 初始化数据仓库层 ---
	userRepo := sqldb.NewUserStore(sqlDB, dialect)
	postRepo := sqldb.NewPostStore(sqlDB, dialect)
	categoryRepo := sqldb.NewCategoryStore(sqlDB, dialect)
	contactRepo := sqldb.NewContactStore(sqlDB, dialect)

	// --- Phase 4: 初始化业务逻辑层 ---
	resolver := query.NewCategoryResolver(categoryRepo)
	composer := query.NewComposer(resolver, nil)
	searchSvc := search.NewSearchService(redisClient)

	tokenSvc := auth.NewTokenService(userRepo, jwtSecret)
	authSvc := auth.NewAuthService(userRepo, tokenSvc)
	emailSvc := utility.NewEmailService(cfg)
	postSvc := post_service.NewService(postRepo, categoryRepo, userRepo, composer, searchSvc)
	categorySvc := category_service.NewService(categoryRepo, postRepo, composer)
	contactSvc := contact_service.NewService(contactRepo, userRepo, composer, emailSvc)

	uploadDir := cfg.GetString(config.KeyUploadDir)
	if uploadDir == "" {
		uploadDir = "data/uploads"
	}
	uploadBaseURL := cfg.GetString(config.KeyUploadBaseURL)
	if uploadBaseURL == "" {
		uploadBaseURL = "/uploads"
	}
	store, err := storage.NewLocalProvider(uploadDir, uploadBaseURL)
	if err != nil {
		return nil, tempCleanup, fmt.Errorf("初始化本地存储失败: %w", err)
	}

	// --- Phase 5: 初始化表现层 (Handlers) ---
	mw := middleware.NewMiddleware(tokenSvc)
	authHandler := auth_handler.NewHandler(authSvc)
	postHandler := post_handler.NewHandler(postSvc, store)
	categoryHandler := category_handler.NewHandler(categorySvc)
	contactHandler := contact_handler.NewHandler(contactSvc)

	// --- Phase 6: 配置 Gin 引擎与路由 ---
	if cfg.GetBool(config.KeyServerDebug) {
		gin.SetMode(gin.DebugMode)
		log.Println("运行模式: Debug (Gin 将打印详细路由日志)")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("运行模式: Release (Gin 启动日志已禁用)")
	}

	engine := gin.Default()
	if err := engine.SetTrustedProxies([]string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}); err != nil {
		return nil, tempCleanup, fmt.Errorf("设置信任代理失败: %w", err)
	}
	engine.ForwardedByClientIP = true

	appRouter := router.NewRouter(authHandler, postHandler, categoryHandler, contactHandler, mw)
	appRouter.Register(engine)

	// 上传文件走静态路由直出
	engine.Static(uploadBaseURL, uploadDir)

	// --- Phase 7: 初始化定时任务 ---
	scheduler := task.NewScheduler(
		task.NewScheduledPublishJob(postRepo, postSvc, nil),
		task.NewSearchReindexJob(postSvc, nil),
	)

	app := &App{
		cfg:         cfg,
		engine:      engine,
		scheduler:   scheduler,
		sqlDB:       sqlDB,
		redisClient: redisClient,
		authSvc:     authSvc,
		postSvc:     postSvc,
		mw:          mw,
	}

	cleanup := func() {
		log.Println("执行清理操作：关闭数据库连接...")
		sqlDB.Close()

		if redisClient != nil {
			log.Println("关闭 Redis 连接...")
			redisClient.Close()
		}
	}

	return app, cleanup, nil
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}

func (a *App) DB() *sql.DB {
	return a.sqlDB
}

func (a *App) Middleware() *middleware.Middleware {
	return a.mw
}

// Run 启动定时任务与 HTTP 服务，阻塞直到服务退出。
func (a *App) Run() error {
	// 首次启动时创建初始管理员（用户表为空才会生效）
	if err := a.authSvc.EnsureInitialAdmin(context.Background()); err != nil {
		return fmt.Errorf("初始化管理员账户失败: %w", err)
	}

	// 启动时重建一次搜索索引，保证 Redis 中的索引与数据库一致
	go func() {
		count, err := a.postSvc.RebuildSearchIndex(context.Background())
		if err != nil {
			log.Printf("重建搜索索引失败: %v", err)
			return
		}
		if count > 0 {
			log.Printf("✅ 搜索索引重建完成，共索引 %d 篇文章", count)
		}
	}()

	a.scheduler.RegisterJobs()
	a.scheduler.Start()

	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	fmt.Printf("应用程序启动成功，正在监听端口: %s\n", port)

	return a.engine.Run(":" + port)
}

// Stop 优雅停止后台任务。
func (a *App) Stop() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		log.Println("任务调度器已停止。")
	}
}

// ensureSecret 返回配置中的密钥；为空时生成随机值并尝试回写 conf.ini。
// 回写失败不致命（例如纯环境变量部署），但重启后密钥会变化，故打印警告。
func ensureSecret(cfg *config.Config, key string, byteLen int) (string, error) {
	if v := cfg.GetString(key); v != "" {
		return v, nil
	}

	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成随机密钥失败: %w", err)
	}
	secret := hex.EncodeToString(buf)

	if err := writeBackConfig(key, secret); err != nil {
		log.Printf("警告: 回写配置 '%s' 失败: %v。重启后该值将重新生成。", key, err)
	} else {
		log.Printf("✅ 已生成随机值并回写配置 '%s'。", key)
	}
	return secret, nil
}

// writeBackConfig 将单个键值持久化到 data/conf.ini。
func writeBackConfig(key, value string) error {
	const filePath = "data/conf.ini"

	iniCfg, err := ini.Load(filePath)
	if err != nil {
		return err
	}

	section, name, ok := splitConfigKey(key)
	if !ok {
		return fmt.Errorf("无效的配置键: %s", key)
	}
	iniCfg.Section(section).Key(name).SetValue(value)
	return iniCfg.SaveTo(filePath)
}

func splitConfigKey(key string) (section, name string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}
