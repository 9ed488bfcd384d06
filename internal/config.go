package internal

import (
	"fmt"
	"strings"
	"time"
)

// Config is loaded from the environment at startup. Required values fail
// fast with a config exit code instead of limping along.
type Config struct {
	Port            int           `env:"PORT,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,required=true"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath   string        `env:"BLUGE_FILEPATH,required=true"`
	JWTSecret       string        `env:"JWT_SECRET,required=true"`
	CensoredWords   string        `env:"CENSORED_WORDS"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,required=true"`
	NameCacheSize   int64         `env:"NAME_CACHE_SIZE,required=true"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT,required=true"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,required=true"`
	PingInterval    time.Duration `env:"PING_INTERVAL,required=true"`
	MaxMessageSize  int64         `env:"MAX_MESSAGE_SIZE,required=true"`
}

// CensoredWordList splits the configured comma-separated word list.
func (c Config) CensoredWordList() []string {
	if c.CensoredWords == "" {
		return nil
	}
	var words []string
	for _, word := range strings.Split(c.CensoredWords, ",") {
		if trimmed := strings.TrimSpace(word); trimmed != "" {
			words = append(words, trimmed)
		}
	}
	return words
}

// CharacterRune enforces a single-rune replacement character.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
