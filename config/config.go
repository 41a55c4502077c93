package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"swasthsetu/version"
)

// Config holds Swasth Setu runtime configuration.
type Config struct {
	LogLevel    string
	LogFilePath string
	Host        string
	Port        int
	DatabaseURL string

	// JWT settings. An empty secret is generated on first start and
	// persisted to the settings table.
	JWTSecret             string
	AccessTokenTTLMinutes int
	RefreshTokenTTLHours  int

	SQLitePragmasEnabled bool
	SQLiteBusyTimeoutMS  int
	SQLiteJournalMode    string
	SQLiteSynchronous    string
	SQLiteForeignKeys    bool
	SQLiteMaxOpenConns   int
	SQLiteMaxIdleConns   int
	SQLiteConnMaxIdleSec int
	SQLiteConnMaxLifeSec int

	// Scheduling
	AppointmentSlotMinutes  int
	ReminderIntervalMinutes int

	// Startup behavior
	PortWaitSeconds int
	CheckMode       bool
	SeedDemo        bool

	// Symptom checker
	GroqAPIURL string
	GroqModel  string

	CLIMode   bool
	CLIServer string // Server URL for CLI mode

	GoroutineMonitorIntervalSeconds int
	GoroutineWarnThreshold          int
}

// Settings is the global configuration instance populated from environment variables and flags.
var Settings *Config

func init() {
	Settings = &Config{
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogFilePath: getEnv("LOG_FILE", "./swasthsetu.log"),
		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnvInt("PORT", 8000),
		DatabaseURL: getEnv("DATABASE_URL", "swasthsetu.db"),

		JWTSecret:             getEnv("JWT_SECRET", ""),
		AccessTokenTTLMinutes: getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 60),
		RefreshTokenTTLHours:  getEnvInt("REFRESH_TOKEN_TTL_HOURS", 168),

		SQLitePragmasEnabled: getEnvBool("SQLITE_PRAGMAS_ENABLED", true),
		SQLiteBusyTimeoutMS:  getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteJournalMode:    getEnv("SQLITE_JOURNAL_MODE", "WAL"),
		SQLiteSynchronous:    getEnv("SQLITE_SYNCHRONOUS", "NORMAL"),
		SQLiteForeignKeys:    getEnvBool("SQLITE_FOREIGN_KEYS", true),
		SQLiteMaxOpenConns:   getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:   getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),
		SQLiteConnMaxIdleSec: getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", 300),
		SQLiteConnMaxLifeSec: getEnvInt("SQLITE_CONN_MAX_LIFETIME_SECONDS", 0),

		AppointmentSlotMinutes:  getEnvInt("APPOINTMENT_SLOT_MINUTES", 30),
		ReminderIntervalMinutes: getEnvInt("REMINDER_INTERVAL_MINUTES", 60),

		PortWaitSeconds: getEnvInt("PORT_WAIT_SECONDS", 0),

		GroqAPIURL: getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1/chat/completions"),
		GroqModel:  getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),

		CLIMode: getEnvBool("CLI_MODE", false),

		GoroutineMonitorIntervalSeconds: getEnvInt("GOROUTINE_MONITOR_INTERVAL_SECONDS", 30),
		GoroutineWarnThreshold:          getEnvInt("GOROUTINE_WARN_THRESHOLD", 1000),
	}
}

// ParseFlags parses command-line flags, applies any overrides to the package-level Settings,
// and handles --help (prints usage and exits) and --version (prints build info and exits).
func ParseFlags() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Swasth Setu - rural telehealth backend\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables:")
		fmt.Fprintln(out, "  LOG_LEVEL                         Log level (DEBUG, INFO, WARN, ERROR)")
		fmt.Fprintln(out, "  LOG_FILE                          Log file path (default ./swasthsetu.log)")
		fmt.Fprintln(out, "  HOST                              HTTP bind address (default 0.0.0.0)")
		fmt.Fprintln(out, "  PORT                              HTTP server port (default 8000)")
		fmt.Fprintln(out, "  DATABASE_URL                      SQLite database path (default swasthsetu.db)")
		fmt.Fprintln(out, "  JWT_SECRET                        Token signing secret (generated and persisted when empty)")
		fmt.Fprintln(out, "  ACCESS_TOKEN_TTL_MINUTES          Access token lifetime in minutes (default 60)")
		fmt.Fprintln(out, "  REFRESH_TOKEN_TTL_HOURS           Refresh token lifetime in hours (default 168)")
		fmt.Fprintln(out, "  SQLITE_PRAGMAS_ENABLED            Enable SQLite PRAGMAs (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_BUSY_TIMEOUT_MS            SQLite busy_timeout in milliseconds (default 5000)")
		fmt.Fprintln(out, "  SQLITE_JOURNAL_MODE               SQLite journal_mode (default WAL)")
		fmt.Fprintln(out, "  SQLITE_SYNCHRONOUS                SQLite synchronous (default NORMAL)")
		fmt.Fprintln(out, "  SQLITE_FOREIGN_KEYS               Enable SQLite foreign_keys (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_MAX_OPEN_CONNS             SQLite MaxOpenConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_MAX_IDLE_CONNS             SQLite MaxIdleConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_CONN_MAX_IDLE_SECONDS      SQLite ConnMaxIdleTime in seconds (default 300)")
		fmt.Fprintln(out, "  SQLITE_CONN_MAX_LIFETIME_SECONDS  SQLite ConnMaxLifetime in seconds (default 0)")
		fmt.Fprintln(out, "  APPOINTMENT_SLOT_MINUTES          Appointment slot length in minutes (default 30)")
		fmt.Fprintln(out, "  REMINDER_INTERVAL_MINUTES         Appointment reminder sweep interval (default 60)")
		fmt.Fprintln(out, "  PORT_WAIT_SECONDS                 Seconds to wait for a busy port to free (default 0)")
		fmt.Fprintln(out, "  GROQ_API_URL                      Groq chat completions endpoint")
		fmt.Fprintln(out, "  GROQ_MODEL                        Groq model for the symptom checker")
		fmt.Fprintln(out, "  GOROUTINE_MONITOR_INTERVAL_SECONDS Interval seconds for goroutine monitor (default 30)")
		fmt.Fprintln(out, "  GOROUTINE_WARN_THRESHOLD          Goroutine count warning threshold (default 1000)")
	}

	host := flag.String("host", Settings.Host, "HTTP bind address (overrides HOST)")
	port := flag.Int("port", Settings.Port, "HTTP server port (overrides PORT)")
	db := flag.String("db", Settings.DatabaseURL, "SQLite database path (overrides DATABASE_URL)")
	logLevel := flag.String("log-level", Settings.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFile := flag.String("log-file", Settings.LogFilePath, "Log file path (overrides LOG_FILE)")
	jwtSecret := flag.String("jwt-secret", Settings.JWTSecret, "Token signing secret (overrides JWT_SECRET)")
	accessTTL := flag.Int("access-token-ttl-minutes", Settings.AccessTokenTTLMinutes, "Access token lifetime in minutes (overrides ACCESS_TOKEN_TTL_MINUTES)")
	refreshTTL := flag.Int("refresh-token-ttl-hours", Settings.RefreshTokenTTLHours, "Refresh token lifetime in hours (overrides REFRESH_TOKEN_TTL_HOURS)")
	sqlitePragmasEnabled := flag.Bool("sqlite-pragmas", Settings.SQLitePragmasEnabled, "Enable SQLite PRAGMAs (overrides SQLITE_PRAGMAS_ENABLED)")
	sqliteBusyTimeoutMS := flag.Int("sqlite-busy-timeout-ms", Settings.SQLiteBusyTimeoutMS, "SQLite busy_timeout in milliseconds (overrides SQLITE_BUSY_TIMEOUT_MS)")
	sqliteJournalMode := flag.String("sqlite-journal-mode", Settings.SQLiteJournalMode, "SQLite journal_mode (overrides SQLITE_JOURNAL_MODE)")
	sqliteSynchronous := flag.String("sqlite-synchronous", Settings.SQLiteSynchronous, "SQLite synchronous (overrides SQLITE_SYNCHRONOUS)")
	sqliteForeignKeys := flag.Bool("sqlite-foreign-keys", Settings.SQLiteForeignKeys, "Enable SQLite foreign_keys PRAGMA (overrides SQLITE_FOREIGN_KEYS)")
	slotMinutes := flag.Int("slot-minutes", Settings.AppointmentSlotMinutes, "Appointment slot length in minutes (overrides APPOINTMENT_SLOT_MINUTES)")
	reminderInterval := flag.Int("reminder-interval-minutes", Settings.ReminderIntervalMinutes, "Appointment reminder sweep interval (overrides REMINDER_INTERVAL_MINUTES)")
	portWait := flag.Int("port-wait-seconds", Settings.PortWaitSeconds, "Seconds to wait for a busy port to free before failing (overrides PORT_WAIT_SECONDS)")
	checkMode := flag.Bool("check", false, "Run preflight checks and exit")
	seedDemo := flag.Bool("seed", false, "Seed demo doctors, pharmacists and schedules on startup")
	cliMode := flag.Bool("cli", Settings.CLIMode, "Run in CLI mode (HTTP client only, no database)")
	cliServer := flag.String("server", "http://localhost:8000", "Server URL for CLI mode")

	showHelp := flag.Bool("help", false, "Show help and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo())
		os.Exit(0)
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	Settings.Host = *host
	Settings.Port = *port
	Settings.DatabaseURL = *db
	Settings.LogLevel = *logLevel
	Settings.LogFilePath = *logFile
	Settings.JWTSecret = *jwtSecret
	Settings.AccessTokenTTLMinutes = *accessTTL
	Settings.RefreshTokenTTLHours = *refreshTTL
	Settings.SQLitePragmasEnabled = *sqlitePragmasEnabled
	Settings.SQLiteBusyTimeoutMS = *sqliteBusyTimeoutMS
	Settings.SQLiteJournalMode = *sqliteJournalMode
	Settings.SQLiteSynchronous = *sqliteSynchronous
	Settings.SQLiteForeignKeys = *sqliteForeignKeys
	Settings.AppointmentSlotMinutes = *slotMinutes
	Settings.ReminderIntervalMinutes = *reminderInterval
	Settings.PortWaitSeconds = *portWait
	Settings.CheckMode = *checkMode
	Settings.SeedDemo = *seedDemo
	Settings.CLIMode = *cliMode
	Settings.CLIServer = *cliServer
}

// Validate reports configuration values that would prevent a clean start.
func (c *Config) Validate() []string {
	var problems []string
	if c.Port <= 0 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port: %d", c.Port))
	}
	if c.DatabaseURL == "" {
		problems = append(problems, "database path is empty")
	}
	if c.AccessTokenTTLMinutes <= 0 {
		problems = append(problems, "access token TTL must be positive")
	}
	if c.RefreshTokenTTLHours <= 0 {
		problems = append(problems, "refresh token TTL must be positive")
	}
	if c.AppointmentSlotMinutes <= 0 || c.AppointmentSlotMinutes > 240 {
		problems = append(problems, fmt.Sprintf("invalid appointment slot length: %d minutes", c.AppointmentSlotMinutes))
	}
	return problems
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
