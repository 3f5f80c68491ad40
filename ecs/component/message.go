package component

// Message is one line of narrative text on screen. Message entities carry a
// TTL and are removed when it runs out.
type Message struct {
	Text    string
	Speaker string
	Frame   int
	// Seq orders messages shown in the same frame.
	Seq int
}

var MessageComponent = NewComponent[Message]()
