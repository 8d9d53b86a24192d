package call

type EventName string

const (
	EventCallStart   EventName = "call-start"
	EventCallEnd     EventName = "call-end"
	EventMessage     EventName = "message"
	EventSpeechStart EventName = "speech-start"
	EventSpeechEnd   EventName = "speech-end"
	EventError       EventName = "error"
)

// SessionEvents is every event a mounted session listens to.
var SessionEvents = []EventName{
	EventCallStart,
	EventCallEnd,
	EventMessage,
	EventSpeechStart,
	EventSpeechEnd,
	EventError,
}

const (
	MessageTypeTranscript = "transcript"
	TranscriptTypeFinal   = "final"
)

// Message is the payload of a message event. Only the transcript fields are
// decoded, other message types pass through untouched.
type Message struct {
	Type           string `json:"type"`
	TranscriptType string `json:"transcriptType,omitempty"`
	Role           string `json:"role,omitempty"`
	Transcript     string `json:"transcript,omitempty"`
}

func (m *Message) isFinalTranscript() bool {
	return m != nil && m.Type == MessageTypeTranscript && m.TranscriptType == TranscriptTypeFinal
}

type TranscriptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Event struct {
	Name    EventName
	Message *Message
	Err     error
}

type Listener func(Event)

// EventSource is the provider's client-side event stream.
type EventSource interface {
	// Subscribe registers a listener and returns the function that removes it.
	Subscribe(name EventName, listener Listener) (unsubscribe func())
	// Stop asks the provider to end the call.
	Stop() error
}
