package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// TlsHandler HTTPS 重定向中间件
// 将 HTTP 请求重定向到 HTTPS 地址
func TlsHandler(host string, port int) gin.HandlerFunc {
	// 在返回函数之前初始化，避免每次请求都重复创建对象
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect: true,
		SSLHost:     host + ":" + strconv.Itoa(port),
	})

	return func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			// 中间件内只记录 Error，不能 Fatal，否则服务会挂掉
			zap.L().Error("TLS redirection failed", zap.Error(err))
			c.Abort()
			return
		}

		c.Next()
	}
}
