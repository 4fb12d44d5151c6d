package db

import (
	"net"
	"net/url"

	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
)

// GetDBDSN builds a lib/pq connection URL. Credentials are escaped so
// passwords with reserved characters survive.
func GetDBDSN(config *config.DatabaseConfig) string {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(config.User, config.Password),
		Host:   net.JoinHostPort(config.Host, config.Port),
		Path:   "/" + config.DBName,
	}

	query := url.Values{}
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	query.Set("sslmode", sslMode)
	dsn.RawQuery = query.Encode()

	return dsn.String()
}
