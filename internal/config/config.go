package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "strconv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and limits.
type Config struct {
    Env               string // application environment (e.g. "dev", "prod")
    Port              string // HTTP port to listen on
    DBUser            string // database username
    DBPass            string // database password (optional)
    DBHost            string // database host address
    DBPort            string // database port number
    DBName            string // database name
    DBMaxConns        int    // maximum open database connections
    JWTSecret         string // secret used to verify JWTs
    RazorpayKeyID     string // Razorpay public key id, sent to checkout clients
    RazorpayKeySecret string // Razorpay secret, used for orders and signature checks
    HoldTTLMin        int    // minutes a provisional booking holds its seat
    SweepIntervalSec  int    // seconds between expired-hold sweeps
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Tunables with safe
// defaults use intOr() instead so a minimal environment still boots.
func Load() Config {
    return Config{
        Env:               must("APP_ENV"),
        Port:              must("APP_PORT"),
        DBUser:            must("DB_USER"),
        DBPass:            os.Getenv("DB_PASS"), // empty allowed
        DBHost:            must("DB_HOST"),
        DBPort:            must("DB_PORT"),
        DBName:            must("DB_NAME"),
        DBMaxConns:        intOr("DB_MAX_CONNS", 25),
        JWTSecret:         must("JWT_SECRET"),
        RazorpayKeyID:     must("RAZORPAY_KEY_ID"),
        RazorpayKeySecret: must("RAZORPAY_KEY_SECRET"),
        HoldTTLMin:        intOr("BOOKING_HOLD_TTL_MIN", 10),
        SweepIntervalSec:  intOr("BOOKING_SWEEP_INTERVAL_SEC", 60),
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

// intOr retrieves an optional integer environment variable, falling back
// to def when unset.  A set-but-unparseable value is still fatal so typos
// fail loudly instead of silently running with the default.
func intOr(key string, def int) int {
    s, ok := os.LookupEnv(key)
    if !ok || s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
