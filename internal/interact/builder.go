package interact

import (
	"io"
	"time"

	"github.com/dcosson/goexpect/internal/pattern"
	"github.com/dcosson/goexpect/internal/transport"
)

const defaultBufferSize = 8192

// defaultEscape is Ctrl+] (0x1d), matching common terminal multiplexer
// convention and the distilled source's default.
var defaultEscape = []byte{0x1d}

// Builder configures an interactive passthrough session before Start.
type Builder struct {
	transport     transport.Transport
	stdin         io.Reader
	stdout        io.Writer
	outputHooks   []outputPatternHook
	inputHooks    []inputPatternHook
	resizeHook    ResizeHook
	hooks         *hookManager
	mode          Mode
	bufferSize    int
	escape        []byte
	hasEscape     bool
	timeout       time.Duration
	hasTimeout    bool
}

// NewBuilder starts a builder over t, reading from stdin and writing to
// stdout by default.
func NewBuilder(t transport.Transport, stdin io.Reader, stdout io.Writer) *Builder {
	return &Builder{
		transport:  t,
		stdin:      stdin,
		stdout:     stdout,
		hooks:      newHookManager(),
		mode:       DefaultMode,
		bufferSize: defaultBufferSize,
		escape:     defaultEscape,
		hasEscape:  true,
	}
}

// OnOutput registers a callback fired when p matches accumulated output.
func (b *Builder) OnOutput(p pattern.Pattern, callback PatternHook) *Builder {
	b.outputHooks = append(b.outputHooks, outputPatternHook{pattern: p, callback: callback})
	return b
}

// OnInput registers a callback fired when p matches a chunk of user input.
func (b *Builder) OnInput(p pattern.Pattern, callback PatternHook) *Builder {
	b.inputHooks = append(b.inputHooks, inputPatternHook{pattern: p, callback: callback})
	return b
}

// OnResize registers a callback fired whenever the controlling terminal
// resizes (SIGWINCH on Unix; not currently supported on Windows).
func (b *Builder) OnResize(callback ResizeHook) *Builder {
	b.resizeHook = callback
	return b
}

// WithMode overrides polling behavior.
func (b *Builder) WithMode(m Mode) *Builder {
	b.mode = m
	return b
}

// WithEscape sets the byte sequence that ends interaction when typed.
func (b *Builder) WithEscape(seq []byte) *Builder {
	b.escape = seq
	b.hasEscape = true
	return b
}

// NoEscape disables the escape sequence; interaction ends only via a
// pattern hook, EOF, or timeout.
func (b *Builder) NoEscape() *Builder {
	b.hasEscape = false
	return b
}

// WithTimeout bounds the total duration of the interaction.
func (b *Builder) WithTimeout(d time.Duration) *Builder {
	b.timeout = d
	b.hasTimeout = true
	return b
}

// WithBufferSize sets the matched-against output buffer's target size.
func (b *Builder) WithBufferSize(n int) *Builder {
	b.bufferSize = n
	return b
}

// WithInputHook adds a byte-level transform applied to data read from stdin
// before it is matched and forwarded.
func (b *Builder) WithInputHook(hook ByteHook) *Builder {
	b.hooks.addInputHook(hook)
	return b
}

// WithOutputHook adds a byte-level transform applied to data read from the
// transport before it is written to stdout and matched.
func (b *Builder) WithOutputHook(hook ByteHook) *Builder {
	b.hooks.addOutputHook(hook)
	return b
}

// WithListener registers a lifecycle event observer.
func (b *Builder) WithListener(l EventListener) *Builder {
	b.hooks.addListener(l)
	return b
}

// Start runs the interaction loop until a hook stops it, the escape
// sequence fires, a timeout elapses, or the transport hits EOF.
func (b *Builder) Start() (Result, error) {
	r := newRunner(b)
	return r.run()
}
