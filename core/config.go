package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *Config

type (
	Config struct {
		AppName  string
		Env      string // DEV (local; default) | TEST | QA | PROD
		Build    string
		Debug    bool
		TestMode bool

		SecretKey        string
		FrontendBaseURL  string
		DefaultFromName  string
		DefaultFromAddr  string
		PhoneCountryCode string // prefixed to phone numbers lacking a leading "+"
		SuperAdminUID    string // bootstrap target for the grantsuperadmin command

		SendgridApiKey string
		RollbarToken   string

		Server      ServerConfig
		Database    DatabaseConfig
		Identity    IdentityConfig
		ObjectStore ObjectStoreConfig
	}

	ServerConfig struct {
		Host               string
		Addr               string
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	IdentityConfig struct {
		BaseURL string
		APIKey  string
		Timeout time.Duration
	}

	ObjectStoreConfig struct {
		Endpoint        string
		Bucket          string
		AccessKeyID     string
		AccessKeySecret string
		PublicBaseURL   string
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

func (c *DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func init() {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Shule")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "y0w*2b(4fq$+98=xk&tahz3(j!d)#*r7(#mp5n^$welq8azy")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromName", "Shule")
	conf.SetDefault("defaultFromAddr", "noreply@localhost")
	conf.SetDefault("phoneCountryCode", "+243")
	conf.SetDefault("superAdminUID", "")
	conf.SetDefault("serverHost", hostname())
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("dbEngine", "postgres")
	conf.SetDefault("dbName", "shule")
	conf.SetDefault("dbUser", "shule")
	conf.SetDefault("dbPassword", "shule")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", "5432")
	conf.SetDefault("dbDisableTLS", true)
	conf.SetDefault("identityBaseURL", "http://localhost:9099")
	conf.SetDefault("identityTimeout", 10*time.Second)
	conf.SetDefault("ossEndpoint", "")
	conf.SetDefault("ossBucket", "shule-media")
	conf.SetDefault("ossPublicBaseURL", "https://media.localhost")

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	Conf = &Config{
		AppName:          conf.GetString("appName"),
		Env:              env,
		Build:            conf.GetString("build"),
		Debug:            conf.GetBool("debug"),
		TestMode:         env == "TEST",
		SecretKey:        conf.GetString("secretKey"),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromName:  conf.GetString("defaultFromName"),
		DefaultFromAddr:  conf.GetString("defaultFromAddr"),
		PhoneCountryCode: conf.GetString("phoneCountryCode"),
		SuperAdminUID:    conf.GetString("superAdminUID"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               conf.GetString("serverHost"),
			Addr:               conf.GetString("serverAddr"),
			JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("dbEngine"),
			Name:          conf.GetString("dbName"),
			User:          conf.GetString("dbUser"),
			Password:      conf.GetString("dbPassword"),
			AdminUser:     conf.GetString("dbAdminUser"),
			AdminPassword: conf.GetString("dbAdminPassword"),
			Host:          conf.GetString("dbHost"),
			Port:          conf.GetString("dbPort"),
			DisableTLS:    conf.GetBool("dbDisableTLS"),
		},
		Identity: IdentityConfig{
			BaseURL: conf.GetString("identityBaseURL"),
			APIKey:  conf.GetString("identityAPIKey"),
			Timeout: conf.GetDuration("identityTimeout"),
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:        conf.GetString("ossEndpoint"),
			Bucket:          conf.GetString("ossBucket"),
			AccessKeyID:     conf.GetString("ossAccessKeyID"),
			AccessKeySecret: conf.GetString("ossAccessKeySecret"),
			PublicBaseURL:   conf.GetString("ossPublicBaseURL"),
		},
	}
}

func hostname() string {
	host, err := os.Hostname()
	if err != nil {
		return fmt.Sprintf("unknown-%d", os.Getpid())
	}
	return host
}
