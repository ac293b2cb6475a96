package core

import (
	"encoding/json"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	EdxappConfig struct {
		Backend      string // memory | lms
		ContentStore string // backend | redis
		LMSBaseURL   string
		CMSBaseURL   string
		AccessToken  string
		Timeout      time.Duration
	}

	RedisConfig struct {
		Address   string
		Password  string
		DB        int
		KeyPrefix string
	}

	CertificatesConfig struct {
		BaseURL      string
		User         string
		Password     string
		ExtraHeaders map[string]string
		GroupCodes   map[string]string // course id -> group code
		Timeout      time.Duration
	}

	FuturexConfig struct {
		Enabled     bool
		BaseURL     string
		AccessToken string
		Workers     int
		Timeout     time.Duration
	}

	RegistrationConfig struct {
		ExtendedProfileFields []string
		Translations          map[string]map[string]string // language -> field -> label
	}

	Config struct {
		AppName      string
		Version      string
		Build        string
		Env          string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string

		Server       ServerConfig
		Database     DatabaseConfig
		Edxapp       EdxappConfig
		Redis        RedisConfig
		Certificates CertificatesConfig
		Futurex      FuturexConfig
		Registration RegistrationConfig

		features map[string]bool
	}
)

// NewConfig loads the configuration from defaults, the optional config/.env.<env> file and the environment.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "eox-nelp")
	conf.SetDefault("version", "4.0.0")
	conf.SetDefault("build", "develop")
	conf.SetDefault("secretKey", "ek0f^9s=w1j8ndx@x3!p_+h2$i%5+6t7aw)8-y0g)u(#quy4lc")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("features", "ENABLE_OTHER_COURSE_SETTINGS")

	conf.SetDefault("server.host", "0.0.0.0:8000")
	conf.SetDefault("server.debugHost", "0.0.0.0:4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 24*time.Hour)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "eoxnelp")
	conf.SetDefault("database.user", "eoxnelp")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.adminUser", "postgres")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("edxapp.backend", "memory")
	conf.SetDefault("edxapp.contentStore", "backend")
	conf.SetDefault("edxapp.lmsBaseURL", "http://localhost:18000")
	conf.SetDefault("edxapp.cmsBaseURL", "http://localhost:18010")
	conf.SetDefault("edxapp.accessToken", "")
	conf.SetDefault("edxapp.timeout", 10*time.Second)

	conf.SetDefault("redis.address", "localhost:6379")
	conf.SetDefault("redis.password", "")
	conf.SetDefault("redis.db", 0)
	conf.SetDefault("redis.keyPrefix", "eoxnelp")

	conf.SetDefault("certificates.baseURL", "")
	conf.SetDefault("certificates.user", "")
	conf.SetDefault("certificates.password", "")
	conf.SetDefault("certificates.extraHeaders", "{}")
	conf.SetDefault("certificates.groupCodes", "{}")
	conf.SetDefault("certificates.timeout", 10*time.Second)

	conf.SetDefault("futurex.enabled", false)
	conf.SetDefault("futurex.baseURL", "")
	conf.SetDefault("futurex.accessToken", "")
	conf.SetDefault("futurex.workers", 4)
	conf.SetDefault("futurex.timeout", 10*time.Second)

	conf.SetDefault("registration.extendedProfileFields", "")
	conf.SetDefault("registration.translations", "{}")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.Set("env", env)
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:      conf.GetString("appName"),
		Version:      conf.GetString("version"),
		Build:        conf.GetString("build"),
		Env:          conf.GetString("env"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               conf.GetString("server.host"),
			DebugHost:          conf.GetString("server.debugHost"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Edxapp: EdxappConfig{
			Backend:      conf.GetString("edxapp.backend"),
			ContentStore: conf.GetString("edxapp.contentStore"),
			LMSBaseURL:   conf.GetString("edxapp.lmsBaseURL"),
			CMSBaseURL:   conf.GetString("edxapp.cmsBaseURL"),
			AccessToken:  conf.GetString("edxapp.accessToken"),
			Timeout:      conf.GetDuration("edxapp.timeout"),
		},
		Redis: RedisConfig{
			Address:   conf.GetString("redis.address"),
			Password:  conf.GetString("redis.password"),
			DB:        conf.GetInt("redis.db"),
			KeyPrefix: conf.GetString("redis.keyPrefix"),
		},
		Certificates: CertificatesConfig{
			BaseURL:      conf.GetString("certificates.baseURL"),
			User:         conf.GetString("certificates.user"),
			Password:     conf.GetString("certificates.password"),
			ExtraHeaders: jsonStringMap("certificates.extraHeaders", conf.GetString("certificates.extraHeaders")),
			GroupCodes:   jsonStringMap("certificates.groupCodes", conf.GetString("certificates.groupCodes")),
			Timeout:      conf.GetDuration("certificates.timeout"),
		},
		Futurex: FuturexConfig{
			Enabled:     conf.GetBool("futurex.enabled"),
			BaseURL:     conf.GetString("futurex.baseURL"),
			AccessToken: conf.GetString("futurex.accessToken"),
			Workers:     conf.GetInt("futurex.workers"),
			Timeout:     conf.GetDuration("futurex.timeout"),
		},
		Registration: RegistrationConfig{
			ExtendedProfileFields: splitList(conf.GetString("registration.extendedProfileFields")),
			Translations:          jsonTranslations(conf.GetString("registration.translations")),
		},
		features: parseFeatures(conf.GetString("features")),
	}
}

// Address returns the database host:port.
func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, dc.Port)
}

// FeatureEnabled reports whether the named feature flag is switched on. Names are case-insensitive.
func (c *Config) FeatureEnabled(name string) bool {
	return c.features[strings.ToUpper(name)]
}

// SetFeature switches a feature flag on or off.
func (c *Config) SetFeature(name string, enabled bool) {
	if c.features == nil {
		c.features = make(map[string]bool)
	}
	c.features[strings.ToUpper(name)] = enabled
}

func parseFeatures(s string) map[string]bool {
	features := make(map[string]bool)
	for _, name := range splitList(s) {
		features[strings.ToUpper(name)] = true
	}
	return features
}

func splitList(s string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		if item = CleanString(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// viper lower-cases map keys, course ids and header names need their case preserved.
func jsonStringMap(key, raw string) map[string]string {
	m := make(map[string]string)
	if raw == "" {
		return m
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		log.Fatalf("config.%s: %v", key, err)
	}
	return m
}

func jsonTranslations(raw string) map[string]map[string]string {
	m := make(map[string]map[string]string)
	if raw == "" {
		return m
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		log.Fatalf("config.registration.translations: %v", err)
	}
	return m
}
