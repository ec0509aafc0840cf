package config

import (
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	Addr      string
	DBPath    string
	PublicURL string
	Debug     bool
}

// ParseFlags builds the configuration from command-line flags, with a local
// .env file (when present) seeding the defaults. Explicit flags win.
func ParseFlags() (cfg Config, err error) {
	godotenv.Load()

	port, err := envUint("PORT", 8000)
	if err != nil {
		return
	}

	var host string
	flag.StringVar(&host, "host", envOr("HOST", "0.0.0.0"), "listen host name (default 0.0.0.0)")
	flag.UintVar(&port, "port", port, "listen port number (default 8000)")
	flag.StringVar(&cfg.DBPath, "db-path", envOr("DB_PATH", "surveyforge.sqlite"), "path to SQLite3 DB file (default surveyforge.sqlite)")
	flag.StringVar(&cfg.PublicURL, "public-url", envOr("PUBLIC_URL", ""), "base URL used when building share links (default derived from listen address)")
	flag.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	if cfg.PublicURL == "" {
		cfg.PublicURL = cfg.Url()
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint) (uint, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return uint(n), nil
}
