package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port      string `mapstructure:"port"`
	AppEnv    string `mapstructure:"app_env"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Timezone  string `mapstructure:"timezone"`

	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`

	JWTSecret    string `mapstructure:"jwt_secret"`
	StorageDir   string `mapstructure:"storage_dir"`
	RecipePolicy string `mapstructure:"recipe_policy"`
	IncomeBasis  string `mapstructure:"income_basis"`
	SeedDemo     bool   `mapstructure:"seed_demo"`
	SeedTenantID string `mapstructure:"seed_tenant_id"`
}

type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Debug    bool   `mapstructure:"debug"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Load lee .env si existe y después el entorno. Las claves anidadas usan
// guion bajo: db.host <- DB_HOST.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("timezone", "America/Argentina/Buenos_Aires")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "bicitaller")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("minio.bucket", "bicitaller-reportes")
	v.SetDefault("storage_dir", "reportes")
	v.SetDefault("recipe_policy", "lenient")
	v.SetDefault("income_basis", "created")
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET es obligatorio en producción")

// Validate rechaza combinaciones que no deben llegar a levantar el servidor.
func (c *Config) Validate() error {
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("app_env", "APP_ENV")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("log_format", "LOG_FORMAT")
	_ = v.BindEnv("timezone", "TIMEZONE")

	_ = v.BindEnv("db.dsn", "DB_DSN")
	_ = v.BindEnv("db.host", "DB_HOST")
	_ = v.BindEnv("db.port", "DB_PORT")
	_ = v.BindEnv("db.user", "DB_USER", "POSTGRES_USER")
	_ = v.BindEnv("db.password", "DB_PASSWORD", "POSTGRES_PASSWORD")
	_ = v.BindEnv("db.name", "DB_NAME", "POSTGRES_DB")
	_ = v.BindEnv("db.sslmode", "DB_SSLMODE")
	_ = v.BindEnv("db.debug", "DB_DEBUG")

	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")

	_ = v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	_ = v.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	_ = v.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	_ = v.BindEnv("minio.bucket", "MINIO_BUCKET")
	_ = v.BindEnv("minio.use_ssl", "MINIO_USE_SSL")

	_ = v.BindEnv("jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("storage_dir", "STORAGE_DIR")
	_ = v.BindEnv("recipe_policy", "RECIPE_POLICY")
	_ = v.BindEnv("income_basis", "INCOME_BASIS")
	_ = v.BindEnv("seed_demo", "SEED_DEMO")
	_ = v.BindEnv("seed_tenant_id", "SEED_TENANT_ID")
}

// DSNString arma el DSN de postgres si no vino completo en DB_DSN.
func (d DatabaseConfig) DSNString() string {
	if strings.TrimSpace(d.DSN) != "" {
		return d.DSN
	}
	return "host=" + d.Host + " user=" + d.User + " password=" + d.Password + " dbname=" + d.Name + " port=" + d.Port + " sslmode=" + d.SSLMode
}

// LogJSON indica si los logs salen en JSON. En producción es el default.
func (c *Config) LogJSON() bool {
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "json":
		return true
	case "console", "text":
		return false
	}
	return c.IsProduction()
}

func (c *Config) IsProduction() bool {
	e := strings.ToLower(c.AppEnv)
	return e == "production" || e == "prod"
}

// Location devuelve la zona horaria del taller; si no existe, UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
