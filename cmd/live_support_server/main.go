package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"live_support_server/internal/config"
	dao "live_support_server/internal/dao/mysql"
	myredis "live_support_server/internal/dao/redis"
	"live_support_server/internal/handler"
	"live_support_server/internal/https_server"
	"live_support_server/internal/infrastructure/logger"
	"live_support_server/internal/service"
	"live_support_server/internal/service/fanout"
	"live_support_server/pkg/util/jwt"
	"live_support_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	dao.Init()
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT 和雪花算法
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	snowflake.Init()
	zap.L().Info("JWT 和雪花算法初始化成功")

	// 6. 初始化请求参数翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("翻译器初始化失败", zap.Error(err))
	}
	zap.L().Info("翻译器初始化成功")

	// 7. 初始化消息代理（根据配置选择单机 Channel 或分布式 Kafka）
	if conf.KafkaConfig.MessageMode == "kafka" {
		fanout.GlobalKafkaClient = fanout.NewKafkaClient()
		fanout.GlobalKafkaClient.KafkaInit()
		fanout.GlobalBroker = fanout.NewKafkaFanout()
	} else {
		fanout.GlobalBroker = fanout.NewStandaloneFanout()
	}
	zap.L().Info("消息代理初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 8. 初始化 Service 层 (依赖注入)
	service.InitServices(dao.Repos, myredis.GetCacheService(), fanout.GlobalBroker)
	zap.L().Info("Service 层初始化成功")

	// 9. 初始化 Handler 层和 HTTP 服务器
	handlers := handler.NewHandlers(service.Svc)
	engine := https_server.Init(handlers)
	zap.L().Info("HTTP 服务器初始化成功")

	// 10. 启动消息代理消费循环
	go fanout.GlobalBroker.Start()

	// 11. 启动 HTTP 服务
	host := conf.MainConfig.Host
	port := conf.MainConfig.Port
	go func() {
		if err := engine.Run(fmt.Sprintf("%s:%d", host, port)); err != nil {
			zap.L().Fatal("server running fault")
			return
		}
	}()

	// 设置信号监听，等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	fanout.GlobalBroker.Close()
	zap.L().Info("服务器已关闭")
}
