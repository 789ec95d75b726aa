package config

import (
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	AllowOrigin string `mapstructure:"allowOrigin"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"apiKey"`
	Model  string `mapstructure:"model"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Admin  AdminConfig  `mapstructure:"admin"`
	S3     S3Config     `mapstructure:"s3"`
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// LoadConfig reads the YAML config file and overrides values from the
// environment. A missing file is fine; the environment alone can carry the
// whole configuration.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	viper.SetDefault("server.port", "5000")
	viper.SetDefault("server.allowOrigin", "http://localhost:3000")
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.dbName", "lab_inventory")
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("admin.email", "admin@lab.local")
	viper.SetDefault("admin.password", "adminpassword")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.allowOrigin", "ALLOW_ORIGIN")
	viper.BindEnv("mongo.uri", "MONGO_URI")
	viper.BindEnv("mongo.dbName", "MONGO_DBNAME")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	viper.BindEnv("admin.email", "ADMIN_EMAIL")
	viper.BindEnv("admin.password", "ADMIN_PASSWORD")
	viper.BindEnv("s3.bucket", "S3_BUCKET")
	viper.BindEnv("s3.region", "S3_REGION")
	viper.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	viper.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	viper.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	viper.BindEnv("gemini.apiKey", "GEMINI_API_KEY")
	viper.BindEnv("gemini.model", "GEMINI_MODEL")

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return
}
