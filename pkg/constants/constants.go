package constants

const (
	CHANNEL_SIZE  = 100 // 通道大小
	REDIS_TIMEOUT = 1   // redis timeout (分钟)
)
