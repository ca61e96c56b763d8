package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	BaseURL  string // public base for operator verification links

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/campusgate.db"

	// Classification
	FaceTolerance float64

	// Captured stills
	UploadDir string

	// SMTP / security mailbox.  Empty sender or security address means
	// alerts go to the server log instead (dev fail-soft).
	SMTPHost       string
	SMTPPort       int
	SenderEmail    string
	SenderPassword string
	SecurityEmail  string

	// Notification dispatch
	NotifyQueueSize   int
	NotifyMaxAttempts int

	// Pending-attempt expiry
	AttemptRetentionHours int // 0 = pending attempts never expire
	PruneIntervalMinutes  int // how often the pruner runs (default 60)
}

func FromEnv() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	env := strings.ToLower(getenvDefault("CAMPUSGATE_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	return Config{
		HTTPAddr: getenvDefault("CAMPUSGATE_HTTP_ADDR", ":8080"),
		BaseURL:  getenvDefault("CAMPUSGATE_BASE_URL", "http://localhost:8080"),

		Env:    env,
		DBPath: getenvDefault("CAMPUSGATE_DB_PATH", "./data/campusgate.db"),

		FaceTolerance: getenvFloat("CAMPUSGATE_FACE_TOLERANCE", 0.6),

		UploadDir: getenvDefault("CAMPUSGATE_UPLOAD_DIR", "./data/uploads"),

		SMTPHost:       getenvDefault("CAMPUSGATE_SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getenvInt("CAMPUSGATE_SMTP_PORT", 587),
		SenderEmail:    os.Getenv("CAMPUSGATE_SENDER_EMAIL"),
		SenderPassword: os.Getenv("CAMPUSGATE_SENDER_PASSWORD"),
		SecurityEmail:  os.Getenv("CAMPUSGATE_SECURITY_EMAIL"),

		NotifyQueueSize:   getenvInt("CAMPUSGATE_NOTIFY_QUEUE_SIZE", 256),
		NotifyMaxAttempts: getenvInt("CAMPUSGATE_NOTIFY_MAX_ATTEMPTS", 3),

		AttemptRetentionHours: getenvInt("CAMPUSGATE_ATTEMPT_RETENTION_HOURS", 0),
		PruneIntervalMinutes:  getenvInt("CAMPUSGATE_PRUNE_INTERVAL_MINUTES", 60),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}
