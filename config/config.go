package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	envPrefix = "CITYSTORE"

	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config is read from CITYSTORE_* variables, e.g. CITYSTORE_PORT.
type Config struct {
	Port           string        `envconfig:"PORT" default:"5000"`
	GinMode        string        `envconfig:"GIN_MODE" default:"release"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"*"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`

	Store         string `envconfig:"STORE" default:"memory"`
	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"citystore"`
	SeedFile      string `envconfig:"SEED_FILE"`

	RedisURL string `envconfig:"REDIS_URL"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	RateLimit       uint          `envconfig:"RATE_LIMIT" default:"100"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	CartDir     string        `envconfig:"CART_DIR"`
	CartTTL     time.Duration `envconfig:"CART_TTL" default:"720h"`
	StrictCards bool          `envconfig:"STRICT_CARDS" default:"false"`

	CloudinaryCloudName string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `envconfig:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `envconfig:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `envconfig:"CLOUDINARY_FOLDER" default:"citystore/products"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads the .env file when present and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrapf(err, "load %s", f)
		}
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if c.Store != StoreMemory && c.Store != StoreMongo {
		return errors.Errorf("%s_STORE must be %q or %q, got %q", envPrefix, StoreMemory, StoreMongo, c.Store)
	}
	if c.JWTSecret == "" {
		return errors.Errorf("%s_JWT_SECRET is required", envPrefix)
	}
	if c.RequestTimeout <= 0 {
		return errors.Errorf("%s_REQUEST_TIMEOUT must be positive", envPrefix)
	}
	if c.RateLimit == 0 || c.RateLimitWindow <= 0 {
		return errors.Errorf("%s_RATE_LIMIT and %s_RATE_LIMIT_WINDOW must be positive", envPrefix, envPrefix)
	}
	return nil
}

// MediaEnabled reports whether image uploads can reach Cloudinary.
func (c *Config) MediaEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
