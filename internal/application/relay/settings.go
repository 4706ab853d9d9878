package relay

import (
	"context"

	"github.com/relaydesk/relaydesk/internal/domain/setting"
)

// Default texts sent to users when no custom value is stored.
const (
	DefaultGreeting = "Hello!\n\n" +
		"Describe your question and a support operator will get back to you shortly."

	DefaultHelp = "📝 Write your question in a single message, as briefly and completely " +
		"as you can. This is not a real-time chat: tickets are answered in order of arrival.\n\n" +
		"⌛️ It may take a while before you receive a reply."
)

// Settings resolves bot configuration from the settings store. Every read
// goes to the store so a topic-mode switch takes effect on the next message
// without a restart.
type Settings struct {
	repo setting.Repository
}

func NewSettings(repo setting.Repository) *Settings {
	return &Settings{repo: repo}
}

// TopicMode returns the current routing topology, defaulting to per-user.
// An unrecognized stored value also resolves to per-user.
func (s *Settings) TopicMode(ctx context.Context) setting.TopicMode {
	mode := setting.TopicMode(s.repo.Get(ctx, setting.KeyTopicMode, setting.TopicModePerUser.String()))
	if !mode.IsValid() {
		return setting.TopicModePerUser
	}
	return mode
}

func (s *Settings) SetTopicMode(ctx context.Context, mode setting.TopicMode) error {
	return s.repo.Set(ctx, setting.KeyTopicMode, mode.String())
}

func (s *Settings) Greeting(ctx context.Context) string {
	return s.repo.Get(ctx, setting.KeyGreeting, DefaultGreeting)
}

func (s *Settings) SetGreeting(ctx context.Context, text string) error {
	return s.repo.Set(ctx, setting.KeyGreeting, text)
}

func (s *Settings) Help(ctx context.Context) string {
	return s.repo.Get(ctx, setting.KeyHelp, DefaultHelp)
}

func (s *Settings) SetHelp(ctx context.Context, text string) error {
	return s.repo.Set(ctx, setting.KeyHelp, text)
}
