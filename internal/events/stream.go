package events

// UpdateKind identifies the variant of a streaming update.
type UpdateKind int

const (
	// UpdateToolStatus reports the outcome of one tool call.
	UpdateToolStatus UpdateKind = iota
	// UpdateTextChunk carries an incremental piece of assistant text.
	UpdateTextChunk
	// UpdateComplete terminates a turn successfully.
	UpdateComplete
	// UpdateError terminates a turn with a fatal error.
	UpdateError
)

// Update is one element of the per-turn streaming sequence delivered to the
// attached frontend. Within a turn, updates arrive in emission order and the
// terminal Complete/Error comes last.
type Update struct {
	Kind UpdateKind

	// Status is set for UpdateToolStatus.
	Status string

	// Text is set for UpdateTextChunk.
	Text string

	// TotalTokens and ToolStatusMessages are set for UpdateComplete.
	TotalTokens        int
	ToolStatusMessages []string

	// Err is set for UpdateError.
	Err string
}

// Stream is a single-consumer ordered channel of updates for one conversation.
type Stream struct {
	ch chan Update
}

// DefaultStreamBuffer sizes the update channel so a turn's worth of updates
// never stalls the controller while the frontend catches up.
const DefaultStreamBuffer = 256

// NewStream creates a stream with the given buffer size (0 uses the default).
func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = DefaultStreamBuffer
	}
	return &Stream{ch: make(chan Update, buffer)}
}

// Updates returns the consumer side of the stream.
func (s *Stream) Updates() <-chan Update {
	return s.ch
}

// ToolStatus emits a tool outcome line.
func (s *Stream) ToolStatus(status string) {
	s.ch <- Update{Kind: UpdateToolStatus, Status: status}
}

// TextChunk emits an incremental piece of assistant text.
func (s *Stream) TextChunk(text string) {
	s.ch <- Update{Kind: UpdateTextChunk, Text: text}
}

// Complete emits the terminal success update for a turn.
func (s *Stream) Complete(totalTokens int, toolStatusMessages []string) {
	msgs := make([]string, len(toolStatusMessages))
	copy(msgs, toolStatusMessages)
	s.ch <- Update{Kind: UpdateComplete, TotalTokens: totalTokens, ToolStatusMessages: msgs}
}

// Error emits the terminal failure update for a turn.
func (s *Stream) Error(err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	s.ch <- Update{Kind: UpdateError, Err: msg}
}
