package assistant

// Action tells the caller what a pushed byte means for the line.
type Action int

const (
	// Ignore means the byte is neither printable nor a line terminator.
	Ignore Action = iota
	// Echo means the byte was buffered and should be echoed.
	Echo
	// LineEnd means a terminator completed the line, possibly empty.
	LineEnd
	// Overflow means the line was full: the full line is returned and the
	// byte starts the next line. It should be echoed after processing.
	Overflow
)

// Assembler collects printable ASCII bytes into a subject of at most Max
// bytes. There is no erase: a line is either completed or overflows.
type Assembler struct {
	Max int

	buf []byte
}

// NewAssembler creates an Assembler.
func NewAssembler(max int) *Assembler {
	return &Assembler{Max: max, buf: make([]byte, 0, max)}
}

// Len returns the number of buffered bytes.
func (a *Assembler) Len() int {
	return len(a.buf)
}

// Push consumes one byte. For LineEnd and Overflow the completed line is
// returned and ownership moves to the caller.
func (a *Assembler) Push(b byte) (Action, []byte) {
	switch {
	case b == '\n' || b == '\r':
		return LineEnd, a.take()
	case b < 0x20 || b >= 0x7f:
		return Ignore, nil
	case len(a.buf) >= a.Max:
		line := a.take()
		a.buf = append(a.buf, b)
		return Overflow, line
	default:
		a.buf = append(a.buf, b)
		return Echo, nil
	}
}

func (a *Assembler) take() []byte {
	line := a.buf
	a.buf = make([]byte, 0, a.Max)
	return line
}
