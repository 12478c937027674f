package session

import (
	"log"
	"time"
)

// LineEnding selects what SendLine appends after the given text.
type LineEnding int

const (
	LF LineEnding = iota
	CRLF
	CR
)

// String returns the literal bytes LineEnding appends, as a string.
func (l LineEnding) String() string {
	switch l {
	case CRLF:
		return "\r\n"
	case CR:
		return "\r"
	default:
		return "\n"
	}
}

// ErrorHandling selects how Screen/encoding layers react to invalid bytes.
type ErrorHandling int

const (
	Replace ErrorHandling = iota
	Skip
	Strict
	EscapeInvalid
)

// TimeoutConfig groups the three timeouts a session cares about (spec.md §6).
type TimeoutConfig struct {
	Default time.Duration
	Spawn   time.Duration
	Close   time.Duration
}

// DefaultTimeoutConfig matches spec.md §6's stated defaults.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{Default: 30 * time.Second, Spawn: 10 * time.Second, Close: 5 * time.Second}
}

// BufferConfig controls the matcher's RingBuffer sizing (spec.md §6).
type BufferConfig struct {
	MaxSize      int
	SearchWindow int // 0 means unset: search the whole buffer
	RingBuffer   bool
}

// DefaultBufferConfig matches spec.md §6's 100 MiB default.
func DefaultBufferConfig() BufferConfig {
	return BufferConfig{MaxSize: 100 * 1024 * 1024, RingBuffer: true}
}

// EncodingConfig controls how raw bytes become the buffer's text view.
type EncodingConfig struct {
	Encoding             string // "utf-8" is the only encoding actually decoded today
	ErrorHandling        ErrorHandling
	NormalizeLineEndings bool
}

// DefaultEncodingConfig matches the distilled source's Default impl.
func DefaultEncodingConfig() EncodingConfig {
	return EncodingConfig{Encoding: "utf-8", ErrorHandling: Replace}
}

// Config is the full set of options spec.md §6 recognizes for spawning and
// running a session, built via direct field assignment (h2's Config/
// UserConfig idiom, not a functional-options builder).
type Config struct {
	Command    string
	Args       []string
	Env        map[string]string
	InheritEnv bool
	WorkingDir string

	Dimensions Dimensions
	Timeout    TimeoutConfig
	Buffer     BufferConfig
	LineEnding LineEnding
	Encoding   EncodingConfig

	DelayBeforeSend time.Duration

	// Logger receives diagnostic lines when non-nil; nil discards them,
	// matching SPEC_FULL.md's ambient-stack logging note.
	Logger *log.Logger
}

// DefaultConfig returns a Config with spec.md §6's documented defaults:
// 30s timeout, 100 MiB buffer, 80x24, TERM=xterm-256color, LF line endings.
func DefaultConfig(command string, args []string) Config {
	return Config{
		Command:    command,
		Args:       args,
		Env:        map[string]string{"TERM": "xterm-256color"},
		InheritEnv: true,
		Dimensions: StandardDimensions,
		Timeout:    DefaultTimeoutConfig(),
		Buffer:     DefaultBufferConfig(),
		LineEnding: LF,
		Encoding:   DefaultEncodingConfig(),
	}
}

func (c Config) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}
