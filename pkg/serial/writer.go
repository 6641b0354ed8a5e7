package serial

// Writer adapts a Driver to io.Writer for formatted output.
type Writer struct {
	Driver Driver
}

// NewWriter creates a Writer.
func NewWriter(d Driver) *Writer {
	return &Writer{Driver: d}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	for n, b := range p {
		if err := w.Driver.Write(b); err != nil {
			return n, err
		}
	}
	return len(p), nil
}
