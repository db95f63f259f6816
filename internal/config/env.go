package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the full configuration from the environment. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	printifyToken, err := requiredString("PRINTIFY_API_TOKEN")
	if err != nil {
		return nil, err
	}
	printifyShop, err := requiredString("PRINTIFY_SHOP_ID")
	if err != nil {
		return nil, err
	}
	surecartToken, err := requiredString("SURECART_API_TOKEN")
	if err != nil {
		return nil, err
	}

	mysqlPort, err := intWithDefault("MYSQL_PORT", 3306)
	if err != nil {
		return nil, err
	}
	redisDB, err := intWithDefault("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	batchSize, err := intWithDefault("SYNC_BATCH_SIZE", 5)
	if err != nil {
		return nil, err
	}

	return &Config{
		Env: stringWithDefault("APP_ENV", "production"),
		Printify: PrintifyConfig{
			BaseUrl: stringWithDefault("PRINTIFY_BASE_URL", "https://api.printify.com/v1"),
			Token:   printifyToken,
			ShopID:  printifyShop,
			Timeout: durationWithDefault("PRINTIFY_TIMEOUT", 30*time.Second),
		},
		SureCart: SureCartConfig{
			BaseUrl: stringWithDefault("SURECART_BASE_URL", "https://api.surecart.com/v1"),
			Token:   surecartToken,
			Timeout: durationWithDefault("SURECART_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Addr:     stringWithDefault("REDIS_ADDR", "localhost:6379"),
			Password: stringWithDefault("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Mysql: MysqlConfig{
			Host:     stringWithDefault("MYSQL_HOST", ""),
			Port:     mysqlPort,
			Username: stringWithDefault("MYSQL_USER", ""),
			Password: stringWithDefault("MYSQL_PASSWORD", ""),
			Database: stringWithDefault("MYSQL_DATABASE", ""),
		},
		Sync: SyncConfig{
			BatchSize:      batchSize,
			StepBudget:     durationWithDefault("SYNC_STEP_BUDGET", 20*time.Second),
			StallThreshold: durationWithDefault("SYNC_STALL_THRESHOLD", 5*time.Minute),
			Retention:      durationWithDefault("SYNC_RETENTION", time.Hour),
		},
		TelegramBot: TelegramBotConfig{
			ChatId: stringWithDefault("TELEGRAM_CHAT_ID", ""),
			Token:  stringWithDefault("TELEGRAM_BOT_TOKEN", ""),
		},
		Server: ServerConfig{
			Addr: stringWithDefault("SERVER_ADDR", ":8080"),
		},
	}, nil
}

func requiredString(key string) (string, error) {
	variable, isOk := os.LookupEnv(key)
	if !isOk || variable == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return variable, nil
}

func stringWithDefault(key, def string) string {
	variable, isOk := os.LookupEnv(key)
	if !isOk || variable == "" {
		return def
	}
	return variable
}

func intWithDefault(key string, def int) (int, error) {
	variable, isOk := os.LookupEnv(key)
	if !isOk || variable == "" {
		return def, nil
	}
	number, err := strconv.Atoi(variable)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %w", key, err)
	}
	return number, nil
}

func durationWithDefault(key string, def time.Duration) time.Duration {
	variable, isOk := os.LookupEnv(key)
	if !isOk || variable == "" {
		return def
	}
	d, err := time.ParseDuration(variable)
	if err != nil {
		return def
	}
	return d
}
