package configloader

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"basebridge/internal/domain/entity"
	"basebridge/internal/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port" validate:"required"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
	EnablePprof  bool   `yaml:"enablePprof"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	File  string `yaml:"file"`
}

// SessionConfig holds the defaults of a freshly mounted session and the cookie settings.
type SessionConfig struct {
	CookieName              string `yaml:"cookieName" validate:"required"`
	SecureCookie            bool   `yaml:"secureCookie"`
	Secret                  string `yaml:"secret" validate:"required,min=32"`
	TTLMinutes              int    `yaml:"ttlMinutes" validate:"gt=0"`
	CleanupIntervalMinutes  int    `yaml:"cleanupIntervalMinutes" validate:"gt=0"`
	DefaultUserName         string `yaml:"defaultUserName" validate:"required,max=32"`
	AvatarURL               string `yaml:"avatarURL"`
	FiatBalance             string `yaml:"fiatBalance" validate:"required,numeric"`
	FiatCurrency            string `yaml:"fiatCurrency" validate:"required"`
	FiatTransferDelayMillis int64  `yaml:"fiatTransferDelayMillis" validate:"gte=0"`
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	APIKey               string `yaml:"apiKey"`
	BaseURL              string `yaml:"baseURL" validate:"required,url"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis" validate:"gt=0"`
	CoinID               string `yaml:"coinID" validate:"required"`
	VsCurrency           string `yaml:"vsCurrency" validate:"required"`
	RequestsPerMinute    int    `yaml:"requestsPerMinute" validate:"gt=0"`
}

// WalletConfig holds the wallet provider configuration: the network to talk to
// and the keystore holding the user's accounts.
type WalletConfig struct {
	Network                    entity.NetworkDefinition `yaml:"network"`
	KeystoreDir                string                   `yaml:"keystoreDir"`
	PassphraseEnv              string                   `yaml:"passphraseEnv"`
	ConnectionTimeoutSeconds   int                      `yaml:"connectionTimeoutSeconds" validate:"gt=0"`
	RPCCallTimeoutSeconds      int                      `yaml:"rpcCallTimeoutSeconds" validate:"gt=0"`
	ConfirmationTimeoutSeconds int                      `yaml:"confirmationTimeoutSeconds" validate:"gt=0"`
	ReceiptPollIntervalMillis  int64                    `yaml:"receiptPollIntervalMillis" validate:"gt=0"`
}

// SplashConfig holds the splash redirect settings.
type SplashConfig struct {
	DelayMillis int64  `yaml:"delayMillis" validate:"gte=0"`
	Target      string `yaml:"target" validate:"required,startswith=/"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	SpecFile string `yaml:"specFile"`
}

// CORSConfig holds the allowed origins of the JSON API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Session   SessionConfig   `yaml:"session"`
	CoinGecko CoinGeckoConfig `yaml:"coingecko"`
	Wallet    WalletConfig    `yaml:"wallet"`
	Splash    SplashConfig    `yaml:"splash"`
	Swagger   SwaggerConfig   `yaml:"swagger"`
	CORS      CORSConfig      `yaml:"cors"`
}

// Sepolia is the default network, matching the "Sepolia Testnet" label of the dashboard.
var Sepolia = entity.NetworkDefinition{ //nolint:gochecknoglobals // default definition
	ChainID:          11155111,
	Name:             "Sepolia Testnet",
	NativeSymbol:     "ETH",
	Decimals:         18,
	PrimaryRPCURL:    "https://ethereum-sepolia-rpc.publicnode.com",
	FallbackRPCURLs:  []string{"https://rpc.sepolia.org", "https://1rpc.io/sepolia"},
	BlockExplorerURL: "https://sepolia.etherscan.io",
}

// Load reads the YAML configuration file from the given path, applies defaults
// and environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := newConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	ApplyDefaults(cfg)
	applyEnv(cfg)
	ensureSecret(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logrus.Info("Configuration loaded successfully.")
	return cfg, nil
}

// Default returns a configuration with every default applied and a random session secret.
func Default() *Config {
	cfg := newConfig()
	ApplyDefaults(cfg)
	ensureSecret(cfg)
	return cfg
}

// newConfig presets the fields for which zero is a valid setting, so a file
// can still turn them off explicitly.
func newConfig() *Config {
	cfg := &Config{}
	cfg.Session.FiatTransferDelayMillis = 1000
	cfg.Splash.DelayMillis = 5000
	return cfg
}

// ApplyDefaults fills in every unset field except the session secret, which
// may still arrive from the environment.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 10
	}
	if cfg.Server.WriteTimeout <= 0 {
		// Long enough for a transfer to wait for its confirmation.
		cfg.Server.WriteTimeout = 180
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "basebridge_session"
	}
	if cfg.Session.TTLMinutes <= 0 {
		cfg.Session.TTLMinutes = 30
	}
	if cfg.Session.CleanupIntervalMinutes <= 0 {
		cfg.Session.CleanupIntervalMinutes = 5
	}
	if cfg.Session.DefaultUserName == "" {
		cfg.Session.DefaultUserName = "Anon"
	}
	if cfg.Session.AvatarURL == "" {
		cfg.Session.AvatarURL = "/static/placeholder.svg"
	}
	if cfg.Session.FiatBalance == "" {
		cfg.Session.FiatBalance = "10000.00"
	}
	if cfg.Session.FiatCurrency == "" {
		cfg.Session.FiatCurrency = "NGN"
	}

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.CoinGecko.RequestTimeoutMillis <= 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 10000
	}
	if cfg.CoinGecko.CoinID == "" {
		cfg.CoinGecko.CoinID = "ethereum"
	}
	if cfg.CoinGecko.VsCurrency == "" {
		cfg.CoinGecko.VsCurrency = "ngn"
	}
	if cfg.CoinGecko.RequestsPerMinute <= 0 {
		// Public API allowance.
		cfg.CoinGecko.RequestsPerMinute = 30
	}

	if cfg.Wallet.Network.ChainID == 0 && cfg.Wallet.Network.PrimaryRPCURL == "" {
		cfg.Wallet.Network = Sepolia
	}
	if cfg.Wallet.Network.NativeSymbol == "" {
		cfg.Wallet.Network.NativeSymbol = "ETH"
	}
	if cfg.Wallet.Network.Decimals == 0 {
		cfg.Wallet.Network.Decimals = 18
	}
	if cfg.Wallet.KeystoreDir == "" {
		cfg.Wallet.KeystoreDir = "data/keystore"
	}
	if cfg.Wallet.PassphraseEnv == "" {
		cfg.Wallet.PassphraseEnv = "BASEBRIDGE_KEYSTORE_PASSPHRASE"
	}
	if cfg.Wallet.ConnectionTimeoutSeconds <= 0 {
		cfg.Wallet.ConnectionTimeoutSeconds = 10
	}
	if cfg.Wallet.RPCCallTimeoutSeconds <= 0 {
		cfg.Wallet.RPCCallTimeoutSeconds = 10
	}
	if cfg.Wallet.ConfirmationTimeoutSeconds <= 0 {
		cfg.Wallet.ConfirmationTimeoutSeconds = 120
	}
	if cfg.Wallet.ReceiptPollIntervalMillis <= 0 {
		cfg.Wallet.ReceiptPollIntervalMillis = 2000
	}

	if cfg.Splash.Target == "" {
		cfg.Splash.Target = "/landing"
	}

	if cfg.Swagger.Path == "" {
		cfg.Swagger.Path = "/swagger"
	}
	if cfg.Swagger.SpecFile == "" {
		cfg.Swagger.SpecFile = "./docs/swagger.yaml"
	}
}

// applyEnv lets the deployment platform inject secrets and endpoints.
func applyEnv(cfg *Config) {
	cfg.Server.Port = utils.GetEnv("BASEBRIDGE_PORT", cfg.Server.Port)
	cfg.Session.Secret = utils.GetEnv("BASEBRIDGE_SESSION_SECRET", cfg.Session.Secret)
	cfg.CoinGecko.BaseURL = utils.GetEnv("BASEBRIDGE_COINGECKO_BASE_URL", cfg.CoinGecko.BaseURL)
	cfg.CoinGecko.APIKey = utils.GetEnv("BASEBRIDGE_COINGECKO_API_KEY", cfg.CoinGecko.APIKey)
	cfg.Wallet.Network.PrimaryRPCURL = utils.GetEnv("BASEBRIDGE_RPC_URL", cfg.Wallet.Network.PrimaryRPCURL)
}

func ensureSecret(cfg *Config) {
	if cfg.Session.Secret != "" {
		return
	}
	cfg.Session.Secret = randomSecret()
	logrus.Warn("Session secret not set, generated a random one. Sessions will not survive a restart.")
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
}

// Passphrase returns the keystore passphrase from the configured environment variable.
func (c WalletConfig) Passphrase() string {
	return os.Getenv(c.PassphraseEnv)
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to generate session secret: %v", err))
	}
	return hex.EncodeToString(b)
}
