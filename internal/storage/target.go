package storage

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	defaultPath    = "data/users.db"
	defaultCharset = "utf8mb4"
)

// Target describes where users are written.
type Target struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Charset  string `yaml:"charset"`
	// Path is the database file for the sqlite driver.
	Path string `yaml:"path"`
}

// DSN renders the driver-specific data source name.
func (t Target) DSN() (string, error) {
	switch strings.ToLower(t.Driver) {
	case DriverMySQL:
		cfg := mysql.NewConfig()
		cfg.User = t.User
		cfg.Passwd = t.Password
		cfg.Net = "tcp"
		host := t.Host
		if host == "" {
			host = "localhost"
		}
		port := t.Port
		if port <= 0 {
			port = 3306
		}
		cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
		cfg.DBName = t.Database
		charset := t.Charset
		if charset == "" {
			charset = defaultCharset
		}
		cfg.Params = map[string]string{"charset": charset}
		return cfg.FormatDSN(), nil
	case DriverSQLite:
		if t.Path == "" {
			return defaultPath, nil
		}
		return t.Path, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", t.Driver)
	}
}

// String is safe to log: it never includes the password.
func (t Target) String() string {
	if strings.ToLower(t.Driver) == DriverSQLite {
		path := t.Path
		if path == "" {
			path = defaultPath
		}
		return "sqlite:" + path
	}
	return fmt.Sprintf("%s://%s@%s:%d/%s", t.Driver, t.User, t.Host, t.Port, t.Database)
}
