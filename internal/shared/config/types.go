package config

import "fmt"

type ServerConfig struct {
	Mode     string `mapstructure:"mode"`
	Timezone string `mapstructure:"timezone"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	// AlertsTo receives billing notifications when no per-account address
	// source is configured.
	AlertsTo string `mapstructure:"alerts_to"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// BillingConfig holds tunables for the billing core. The sweep cron
// expressions are consumed by the scheduler manager; the alert thresholds by
// the alert feed.
type BillingConfig struct {
	DefaultGateway        string `mapstructure:"default_gateway"`
	ResetSweepCron        string `mapstructure:"reset_sweep_cron"`
	SuspendSweepCron      string `mapstructure:"suspend_sweep_cron"`
	SweepBatchSize        int    `mapstructure:"sweep_batch_size"`
	NearLimitThreshold    int    `mapstructure:"near_limit_threshold"`
	RenewalAlertDays      int    `mapstructure:"renewal_alert_days"`
	TrendDays             int    `mapstructure:"trend_days"`
	RecentTransactionsMax int    `mapstructure:"recent_transactions_max"`
}
