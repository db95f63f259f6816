package config

import "time"

type Config struct {
	Env         string
	Printify    PrintifyConfig
	SureCart    SureCartConfig
	Redis       RedisConfig
	Mysql       MysqlConfig
	Sync        SyncConfig
	TelegramBot TelegramBotConfig
	Server      ServerConfig
}

type PrintifyConfig struct {
	BaseUrl string
	Token   string
	ShopID  string
	Timeout time.Duration
}

type SureCartConfig struct {
	BaseUrl string
	Token   string
	Timeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MysqlConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

// SyncConfig tunes the batched run: how many products one invocation
// handles, its soft wall-clock budget, the heartbeat stall threshold and how
// long finished state is kept around.
type SyncConfig struct {
	BatchSize      int
	StepBudget     time.Duration
	StallThreshold time.Duration
	Retention      time.Duration
}

type TelegramBotConfig struct {
	ChatId string
	Token  string
}

type ServerConfig struct {
	Addr string
}
