// Package setting stores small pieces of mutable bot configuration: the topic
// mode, the greeting text, and the help text. Values are read fresh from the
// store on every use so a mode switch takes effect immediately.
package setting

// Well-known setting keys.
const (
	KeyTopicMode = "topic_mode"
	KeyGreeting  = "greeting"
	KeyHelp      = "help"
)

// TopicMode is the runtime-switchable routing topology.
type TopicMode string

const (
	// TopicModePerUser creates a dedicated forum topic per ticket.
	TopicModePerUser TopicMode = "per_user"
	// TopicModeSingleTopic multiplexes all tickets into one shared topic.
	TopicModeSingleTopic TopicMode = "single_topic"
)

func (m TopicMode) String() string {
	return string(m)
}

func (m TopicMode) IsValid() bool {
	return m == TopicModePerUser || m == TopicModeSingleTopic
}

// Toggled returns the other topic mode.
func (m TopicMode) Toggled() TopicMode {
	if m == TopicModePerUser {
		return TopicModeSingleTopic
	}
	return TopicModePerUser
}
