package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"

	"gonuclear/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	TNS      TNSConfig
	Catalog  CatalogConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// TNSConfig holds Transient Name Server credentials
type TNSConfig struct {
	APIKey   string
	TNSID    string
	Username string
	BaseURL  string
}

// CatalogConfig holds external catalog settings
type CatalogConfig struct {
	AlerceBaseURL    string
	PanstarrsBaseURL string
	ConeRadiusArcsec float64
}

// Load reads server configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	config.Server = loadServerConfig()
	config.Catalog = loadCatalogConfig()

	tnsConfig, err := LoadTNS()
	if err != nil {
		// TNS credentials are only needed for IAU name resolution; the
		// server can still classify ZTF names and raw coordinates.
		tnsConfig = &TNSConfig{BaseURL: defaultTNSBaseURL}
	}
	config.TNS = *tnsConfig

	return config, nil
}

// LoadCatalogOnly builds a configuration without a database, for CLI use.
func LoadCatalogOnly() *Config {
	config := &Config{
		Server:  loadServerConfig(),
		Catalog: loadCatalogConfig(),
	}
	if tnsConfig, err := LoadTNS(); err == nil {
		config.TNS = *tnsConfig
	} else {
		config.TNS = TNSConfig{BaseURL: defaultTNSBaseURL}
	}
	return config
}

const defaultTNSBaseURL = "https://www.wis-tns.org/api/get"

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	return &DatabaseConfig{
		URL:     url,
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadCatalogConfig() CatalogConfig {
	return CatalogConfig{
		AlerceBaseURL:    getEnvOrDefault("ALERCE_BASE_URL", "https://api.alerce.online/ztf/v1"),
		PanstarrsBaseURL: getEnvOrDefault("PS1_BASE_URL", "https://ps1images.stsci.edu/cgi-bin"),
		ConeRadiusArcsec: getEnvFloatOrDefault("CONE_RADIUS_ARCSEC", 3.0),
	}
}

// LoadTNS retrieves TNS credentials from environment variables if available,
// otherwise falls back to reading the tns_key.txt file in the user's home
// directory (API key, TNS ID and username on three lines).
func LoadTNS() (*TNSConfig, error) {
	apiKey := os.Getenv("TNS_API_KEY")
	tnsID := os.Getenv("TNS_ID")
	username := os.Getenv("TNS_USERNAME")

	if apiKey != "" && tnsID != "" && username != "" {
		return &TNSConfig{
			APIKey:   apiKey,
			TNSID:    tnsID,
			Username: username,
			BaseURL:  getEnvOrDefault("TNS_BASE_URL", defaultTNSBaseURL),
		}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.ConfigInvalid("TNS credentials not in environment and home directory unavailable")
	}
	return loadTNSKeyFile(filepath.Join(home, "tns_key.txt"))
}

func loadTNSKeyFile(path string) (*TNSConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read TNS key file %s", path)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read TNS key file %s", path)
	}
	if len(lines) < 3 {
		return nil, errors.ConfigInvalid("TNS key file is incomplete: needs API key, TNS ID and username")
	}

	return &TNSConfig{
		APIKey:   lines[0],
		TNSID:    lines[1],
		Username: lines[2],
		BaseURL:  getEnvOrDefault("TNS_BASE_URL", defaultTNSBaseURL),
	}, nil
}

// HasCredentials reports whether the TNS configuration is usable.
func (c TNSConfig) HasCredentials() bool {
	return c.APIKey != "" && c.TNSID != "" && c.Username != ""
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloatOrDefault(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
