package conn

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServiceType selects the coarse-grained login target (spec §6, glossary).
type ServiceType string

const (
	ServiceDatabase ServiceType = "Database"
	ServiceExport   ServiceType = "Export"
)

// Settings holds everything needed to open a Connection (spec §6 "Settings
// recognized"). Fields the core does not itself act on (StatisticsEnabled,
// TraceEnabled, MaxConnectionsInPool, UsePooling) are carried as inert data
// for the out-of-scope pooling/statistics collaborators (spec.md §1).
type Settings struct {
	Endpoints             []string
	ServiceType           ServiceType
	UserID                string
	Password              string
	ConnectTimeout        time.Duration
	DefaultCommandTimeout time.Duration

	StatisticsEnabled    bool
	TraceEnabled         bool
	MaxConnectionsInPool int
	UsePooling           bool

	// EndpointsFile, if set, is watched for changes so a pooling layer built
	// on top of this core can pick up a hot-reloaded node list (conn/topology.go).
	EndpointsFile string

	// MaxSubmitRate is carried as data only: Connection does not read it and
	// Submit is not rate limited by it. exec.Pool.SetRateLimit is a separate
	// limiter that a caller attaches to a pool explicitly.
	MaxSubmitRate float64
}

// DefaultSettings returns the baseline configuration: no endpoints (the
// caller must supply at least one), a 5s connect timeout, and a 2-minute
// default command timeout.
func DefaultSettings() Settings {
	return Settings{
		ServiceType:           ServiceDatabase,
		ConnectTimeout:        5 * time.Second,
		DefaultCommandTimeout: 2 * time.Minute,
		MaxConnectionsInPool:  1,
	}
}

// LoadSettingsFromEnv overlays environment variables prefixed with prefix_
// onto base, mirroring the teacher's layered-config precedence (explicit
// struct values still win; env only fills what the struct left at its zero
// value). Recognized suffixes: ENDPOINTS (comma-separated), USER_ID,
// PASSWORD, CONNECT_TIMEOUT_MS, DEFAULT_COMMAND_TIMEOUT_MS,
// STATISTICS_ENABLED, TRACE_ENABLED.
func LoadSettingsFromEnv(prefix string, base Settings) Settings {
	get := func(name string) (string, bool) {
		return os.LookupEnv(prefix + name)
	}

	if v, ok := get("ENDPOINTS"); ok && len(base.Endpoints) == 0 {
		base.Endpoints = strings.Split(v, ",")
	}
	if v, ok := get("USER_ID"); ok && base.UserID == "" {
		base.UserID = v
	}
	if v, ok := get("PASSWORD"); ok && base.Password == "" {
		base.Password = v
	}
	if v, ok := get("CONNECT_TIMEOUT_MS"); ok && base.ConnectTimeout == 0 {
		if ms, err := strconv.Atoi(v); err == nil {
			base.ConnectTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v, ok := get("DEFAULT_COMMAND_TIMEOUT_MS"); ok && base.DefaultCommandTimeout == 0 {
		if ms, err := strconv.Atoi(v); err == nil {
			base.DefaultCommandTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v, ok := get("STATISTICS_ENABLED"); ok && !base.StatisticsEnabled {
		base.StatisticsEnabled, _ = strconv.ParseBool(v)
	}
	if v, ok := get("TRACE_ENABLED"); ok && !base.TraceEnabled {
		base.TraceEnabled, _ = strconv.ParseBool(v)
	}
	return base
}
