package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strings" // strings splits list-valued variables
    "time"    // time parses duration-valued variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Provider keys are optional: a missing key turns
// the matching adapter into its fallback path instead of failing startup.
type Config struct {
    Env    string // application environment (e.g. "dev", "prod")
    Port   string // HTTP port to listen on
    DBUser string // database username
    DBPass string // database password (optional)
    DBHost string // database host address
    DBPort string // database port number
    DBName string // database name

    LLMKey     string // OpenRouter (OpenAI-compatible) API key
    LLMBaseURL string // chat completions base URL
    LLMModel   string // model id sent with every completion

    GoogleMapKey       string // Places + YouTube + Custom Search key
    GoogleSearchEngine string // Custom Search engine id (cx)

    GoogleClientID     string // OAuth client id; also the expected ID token audience
    GoogleClientSecret string // OAuth client secret
    GoogleRedirectURI  string // OAuth callback URL registered with Google
    FrontendURL        string // where the OAuth callback redirects to
    StateSecret        string // signs OAuth state values

    AmadeusClientID     string // flight search credentials
    AmadeusClientSecret string
    AmadeusBaseURL      string

    CORSOrigins    []string      // allowed browser origins
    MCPServers     []string      // tool server commands
    MCPTimeout     time.Duration // per tool call timeout
    ProgressPacing time.Duration // pause between progress steps
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:    must("APP_ENV"),
        Port:   getenv("APP_PORT", "8000"),
        DBUser: must("DB_USER"),
        DBPass: os.Getenv("DB_PASS"), // empty allowed
        DBHost: must("DB_HOST"),
        DBPort: getenv("DB_PORT", "3306"),
        DBName: must("DB_NAME"),

        LLMKey:     os.Getenv("OPENROUTER_API_KEY"),
        LLMBaseURL: getenv("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
        LLMModel:   getenv("LLM_MODEL", "openai/gpt-4o"),

        GoogleMapKey:       os.Getenv("GOOGLE_MAP_KEY"),
        GoogleSearchEngine: os.Getenv("GOOGLE_SEARCH_ENGINE_ID"),

        GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
        GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
        GoogleRedirectURI:  getenv("GOOGLE_REDIRECT_URI", "http://localhost:8000/api/auth/callback"),
        FrontendURL:        strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:3000"), "/"),
        StateSecret:        stateSecret(),

        AmadeusClientID:     os.Getenv("AMADEUS_CLIENT_ID"),
        AmadeusClientSecret: os.Getenv("AMADEUS_CLIENT_SECRET"),
        AmadeusBaseURL:      getenv("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),

        CORSOrigins:    splitList(getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ","),
        MCPServers:     splitList(os.Getenv("MCP_SERVERS"), ";"),
        MCPTimeout:     envDur("MCP_TIMEOUT", 100*time.Second),
        ProgressPacing: envDur("PROGRESS_PACING", time.Second),
    }
}

// stateSecret falls back to the OAuth client secret so a single-secret
// deployment still signs state values.
func stateSecret() string {
    if s := os.Getenv("STATE_SECRET"); s != "" {
        return s
    }
    if s := os.Getenv("GOOGLE_CLIENT_SECRET"); s != "" {
        return s
    }
    log.Printf("config: STATE_SECRET not set; OAuth state uses an insecure development secret")
    return "dev-state-secret"
}

func splitList(s, sep string) []string {
    var out []string
    for _, p := range strings.Split(s, sep) {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
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
