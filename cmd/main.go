package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"showcase/config"
	"showcase/internal/pkg/cache"
	"showcase/internal/pkg/database"
	"showcase/internal/pkg/events"
	"showcase/internal/pkg/logger"
	"showcase/internal/pkg/token"

	"showcase/internal/api/auth"
	"showcase/internal/api/cart"
	"showcase/internal/api/order"
	"showcase/internal/api/product"
	"showcase/internal/api/router"
	"showcase/internal/api/saas"
	"showcase/internal/api/task"
	"showcase/internal/repository/cartrepo"
	"showcase/internal/repository/orderrepo"
	"showcase/internal/repository/productrepo"
	"showcase/internal/repository/saasrepo"
	"showcase/internal/repository/taskrepo"
	"showcase/internal/service/authservice"
	"showcase/internal/service/cartservice"
	"showcase/internal/service/orderservice"
	"showcase/internal/service/productservice"
	"showcase/internal/service/saasservice"
	"showcase/internal/service/seedservice"
	"showcase/internal/service/taskservice"
)

//	@title						Showcase API
//	@version					1.0
//	@description				Gerenciador de tarefas, loja (catálogo, carrinho e pedidos) e dashboard SaaS.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {
	log.Println("⚡ Inicializando serviço Showcase...")
	// O .env é opcional: em contêiner as variáveis vêm do ambiente.
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	appLog := logger.NewLogger(cfg.LogLevel)
	appLog.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment})

	// 1. Infraestrutura

	// A. Banco de Dados: o pool só é aberto na primeira requisição que precisar dele.
	db := database.NewLazy(database.PostgresOpener(cfg.DatabaseURL))
	defer func() {
		if err := db.Close(); err != nil {
			appLog.Error("Falha ao fechar o pool do PostgreSQL.", err)
		}
	}()

	// B. Cache (Redis). Sem Redis a API segue sem cache e com rate limit local.
	var cacheClient cache.Client = cache.NopClient{}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisClient(cfg.RedisAddr, cfg.CacheTimeout)
		if err != nil {
			appLog.Warn("Redis indisponível no boot; seguindo assim mesmo.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
		} else {
			appLog.Info("Conexão Redis estabelecida.", nil)
		}
		cacheClient = rc
		defer rc.Close()
	}

	// C. Eventos (Kafka)
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
		appLog.Info("Publicação de eventos habilitada.", map[string]interface{}{"brokers": cfg.KafkaBrokers})
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			appLog.Error("Falha ao fechar o publisher de eventos.", err)
		}
	}()

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// 2. Injeção de dependências: Repository -> Service -> Handler
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, appLog)
	cartRepo := cartrepo.NewCartRepository(db, cfg.DBTimeout, appLog)
	orderRepo := orderrepo.NewOrderRepository(db, cfg.DBTimeout, appLog)
	taskRepo := taskrepo.NewTaskRepository(db, cfg.DBTimeout, appLog)
	saasRepo := saasrepo.NewSaaSRepository(db, cfg.DBTimeout, appLog)

	productSvc := productservice.NewService(productRepo, appLog)
	cartSvc := cartservice.NewService(cartRepo, productRepo, appLog)
	orderSvc := orderservice.NewService(orderRepo, productRepo, publisher, appLog)
	taskSvc := taskservice.NewService(taskRepo, appLog)
	saasSvc := saasservice.NewService(saasRepo, cacheClient, appLog)
	seedSvc := seedservice.NewService(productRepo, saasRepo, saasSvc, appLog)
	authSvc := authservice.NewService(cfg.AdminUsername, cfg.AdminPasswordHash, tokenSvc, appLog)
	appLog.Debug("Serviços inicializados.", nil)

	handler := router.NewRouter(router.Handlers{
		Auth:    auth.NewHandler(authSvc, appLog),
		Product: product.NewHandler(productSvc, seedSvc, appLog),
		Cart:    cart.NewHandler(cartSvc, appLog),
		Order:   order.NewHandler(orderSvc, appLog),
		Task:    task.NewHandler(taskSvc, appLog),
		SaaS:    saas.NewHandler(saasSvc, seedSvc, appLog),
	}, router.Options{
		TokenService:   tokenSvc,
		Cache:          cacheClient,
		DB:             db,
		RateLimit:      cfg.RateLimitMaxRequests,
		RateLimitEvery: cfg.RateLimitPeriod,
	}, appLog)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 3. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor Showcase ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
