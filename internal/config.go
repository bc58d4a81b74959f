package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host           string `env:"HOST,default=0.0.0.0"`
	Port           int    `env:"PORT,default=8080"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`

	MaxConnections       int           `env:"MAX_CONNECTIONS,default=100"`
	MaxMessagesPerMinute int           `env:"MAX_MESSAGES_PER_MINUTE,default=25"`
	SendBufferSize       int           `env:"SEND_BUFFER_SIZE,default=256"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=5s"`
	ReplayGraceDelay     time.Duration `env:"REPLAY_GRACE_DELAY,default=100ms"`

	ResetPollInterval time.Duration `env:"RESET_POLL_INTERVAL,default=60s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=5m"`
	SweepInterval     time.Duration `env:"SWEEP_INTERVAL,default=10m"`
	SweepMaxIdle      time.Duration `env:"SWEEP_MAX_IDLE,default=10m"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	AdminEmail        string        `env:"ADMIN_EMAIL"`
	AdminUsername     string        `env:"ADMIN_USERNAME,default=admin"`
	AdminPassword     string        `env:"ADMIN_PASSWORD"`

	DailyTopic        string `env:"DAILY_TOPIC,default=No topic set"`
	DailyRules        string `env:"DAILY_RULES"`
	CensorReplacement string `env:"CENSOR_REPLACEMENT,default=*"`
}

// CharacterRune validates that the censor replacement is a single character.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CENSOR_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
