package config

import "os"

type Config struct {
	HTTPAddr      string
	MySQLDSN      string
	JWTSecret     string
	AllowedOrigin string
}

func Load() Config {
	return Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		MySQLDSN:      getenv("DB_DSN", "bizlink:bizlink@tcp(127.0.0.1:3306)/bizlink?parseTime=true"),
		JWTSecret:     getenv("JWT_SECRET", "dev-only-secret-change-me"),
		AllowedOrigin: getenv("ALLOWED_ORIGIN", "http://localhost:8081"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
