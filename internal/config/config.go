package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for costs and
// counts, durations for timeouts.
type Config struct {
    Env             string        // application environment (e.g. "dev", "prod")
    Port            string        // HTTP port to listen on
    LogLevel        string        // slog level: debug, info, warn or error
    DBUser          string        // MySQL username
    DBPass          string        // MySQL password (optional)
    DBHost          string        // MySQL host address
    DBPort          string        // MySQL port number
    DBName          string        // MySQL database name
    DBMigrate       bool          // create the reservations and admin tables at startup
    MongoURI        string        // MongoDB URI; empty selects the seed-file catalog
    MongoDB         string        // MongoDB database holding the villas collection
    CatalogSeedPath string        // JSON villa catalog used when MongoURI is empty
    JWTSecret       string        // secret used to sign JWTs
    BcryptCost      int           // bcrypt cost for hashing ADMIN_PASSWORD at startup
    AdminSource     string        // "env" or "mysql"
    Admins          AdminEnv      // raw administrator settings
    IdempotencyTTL  time.Duration // how long Idempotency-Key results are kept
    RequestTimeout  time.Duration // per-request deadline used by handlers
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:             envStr("APP_ENV", "dev"),                      // environment (dev/test/prod)
        Port:            must("APP_PORT"),                              // port to bind the HTTP server
        LogLevel:        envStr("LOG_LEVEL", "info"),                   // minimum log level
        DBUser:          must("DB_USER"),                               // database user
        DBPass:          os.Getenv("DB_PASS"),                          // database password (empty allowed)
        DBHost:          must("DB_HOST"),                               // database host
        DBPort:          must("DB_PORT"),                               // database port
        DBName:          must("DB_NAME"),                               // database name
        DBMigrate:       envBool("DB_MIGRATE", true),                   // apply schema on start
        MongoURI:        os.Getenv("MONGO_URI"),                        // catalog document store
        MongoDB:         envStr("MONGO_DB", "allinclusive"),            // catalog database
        CatalogSeedPath: envStr("CATALOG_SEED_PATH", "data/villas.json"), // fallback catalog
        JWTSecret:       must("JWT_SECRET"),                            // secret used for signing JWTs
        BcryptCost:      envInt("BCRYPT_COST", 12),                     // bcrypt cost factor
        AdminSource:     envStr("ADMIN_SOURCE", "env"),                 // where administrators come from
        Admins:          loadAdminEnv(),                                // administrator credentials
        IdempotencyTTL:  envDur("IDEMPOTENCY_TTL", 24*time.Hour),       // idempotency result lifetime
        RequestTimeout:  envDur("REQUEST_TIMEOUT", 5*time.Second),      // handler deadline
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
