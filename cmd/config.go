package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers       []string
	KafkaSensorTopic   string
	KafkaConsumerGroup string
	KafkaEventsTopic   string

	GeometryBaseURL  string
	GeometryAPIKey   string
	GeometryProfile  string
	GeometryTimeout  time.Duration
	GeometryRPS      float64
	GeometryCacheTTL time.Duration
	FallbackSpeedKmh float64

	LockTTL  time.Duration
	LockWait time.Duration

	LargeOrderThreshold     decimal.Decimal
	OverageTolerancePct     decimal.Decimal
	RepeatFulfillmentPolicy string
	OnTimeBuffer            time.Duration
	EmergencyAbsolute       decimal.Decimal
	EmergencyPct            decimal.Decimal
	ForecastTargetWeekly    decimal.Decimal
	ForecastTargetMonthly   decimal.Decimal
	PlanningAccuracyTarget  decimal.Decimal
	TrendTolerancePct       decimal.Decimal

	ProductClasses        []string
	KPIRecomputeSpec      string
	KPIRecomputeWorkers   int
	ProactiveSpec         string
	ProactiveProductClass string
}

// LoadConfig reads .env when present and then the environment. Unset keys
// fall back to development defaults.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	p := &parser{}
	cfg := Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "replenishment"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       p.int("REDIS_DB", "0"),

		KafkaBrokers:       list(getEnv("KAFKA_BROKERS", "")),
		KafkaSensorTopic:   getEnv("KAFKA_SENSOR_TOPIC", "sensor.readings"),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "replenishment"),
		KafkaEventsTopic:   getEnv("KAFKA_EVENTS_TOPIC", "replenishment.events"),

		GeometryBaseURL:  getEnv("GEOMETRY_BASE_URL", ""),
		GeometryAPIKey:   getEnv("GEOMETRY_API_KEY", ""),
		GeometryProfile:  getEnv("GEOMETRY_PROFILE", ""),
		GeometryTimeout:  p.duration("GEOMETRY_TIMEOUT", "10s"),
		GeometryRPS:      p.float("GEOMETRY_RPS", "0.6"),
		GeometryCacheTTL: p.duration("GEOMETRY_CACHE_TTL", "24h"),
		FallbackSpeedKmh: p.float("FALLBACK_SPEED_KMH", "50"),

		LockTTL:  p.duration("LOCK_TTL", "30s"),
		LockWait: p.duration("LOCK_WAIT", "10s"),

		LargeOrderThreshold:     p.decimal("LARGE_ORDER_THRESHOLD", "25"),
		OverageTolerancePct:     p.decimal("OVERAGE_TOLERANCE_PCT", "5"),
		RepeatFulfillmentPolicy: getEnv("REPEAT_FULFILLMENT_POLICY", "reject"),
		OnTimeBuffer:            p.duration("ON_TIME_BUFFER", "15m"),
		EmergencyAbsolute:       p.decimal("EMERGENCY_ABSOLUTE", "0.5"),
		EmergencyPct:            p.decimal("EMERGENCY_PCT", "10"),
		ForecastTargetWeekly:    p.decimal("FORECAST_TARGET_WEEKLY", "95"),
		ForecastTargetMonthly:   p.decimal("FORECAST_TARGET_MONTHLY", "90"),
		PlanningAccuracyTarget:  p.decimal("PLANNING_ACCURACY_TARGET", "90"),
		TrendTolerancePct:       p.decimal("TREND_TOLERANCE_PCT", "5"),

		ProductClasses:        list(getEnv("PRODUCT_CLASSES", "")),
		KPIRecomputeSpec:      getEnv("KPI_RECOMPUTE_SPEC", "0 15 1 * * *"),
		KPIRecomputeWorkers:   p.int("KPI_RECOMPUTE_WORKERS", "4"),
		ProactiveSpec:         getEnv("PROACTIVE_REPLENISHMENT_SPEC", "0 */30 * * * *"),
		ProactiveProductClass: getEnv("PROACTIVE_PRODUCT_CLASS", ""),
	}

	return cfg, p.err()
}

// DSN is the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func list(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// parser collects conversion errors so that every bad key is reported at once.
type parser struct {
	errs []error
}

func (p *parser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (p *parser) int(key, fallback string) int {
	value := getEnv(key, fallback)
	n, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, err)
	}
	return n
}

func (p *parser) float(key, fallback string) float64 {
	value := getEnv(key, fallback)
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.fail(key, value, err)
	}
	return f
}

func (p *parser) duration(key, fallback string) time.Duration {
	value := getEnv(key, fallback)
	d, err := time.ParseDuration(value)
	if err != nil {
		p.fail(key, value, err)
	}
	return d
}

func (p *parser) decimal(key, fallback string) decimal.Decimal {
	value := getEnv(key, fallback)
	d, err := decimal.NewFromString(value)
	if err != nil {
		p.fail(key, value, err)
	}
	return d
}

func (p *parser) err() error {
	return errors.Join(p.errs...)
}
