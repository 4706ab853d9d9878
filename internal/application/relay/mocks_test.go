package relay_test

import (
	"context"
	"log/slog"
	"sync"

	"github.com/relaydesk/relaydesk/internal/application/relay"
	"github.com/relaydesk/relaydesk/internal/domain/blocklist"
	"github.com/relaydesk/relaydesk/internal/domain/correlation"
	"github.com/relaydesk/relaydesk/internal/domain/ticket"
	"github.com/relaydesk/relaydesk/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.DiscardHandler))
}

type mockTicketRepo struct {
	saveFunc             func(ctx context.Context, t *ticket.Ticket) error
	updateFunc           func(ctx context.Context, t *ticket.Ticket) error
	findByIDFunc         func(ctx context.Context, id uint) (*ticket.Ticket, error)
	findOpenByUserFunc   func(ctx context.Context, userChatID int64) (*ticket.Ticket, error)
	findLatestByUserFunc func(ctx context.Context, userChatID int64) (*ticket.Ticket, error)
	listOpenFunc         func(ctx context.Context, limit int) ([]*ticket.Ticket, error)
}

func (m *mockTicketRepo) Save(ctx context.Context, t *ticket.Ticket) error {
	return m.saveFunc(ctx, t)
}

func (m *mockTicketRepo) Update(ctx context.Context, t *ticket.Ticket) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTicketRepo) FindByID(ctx context.Context, id uint) (*ticket.Ticket, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockTicketRepo) FindOpenByUser(ctx context.Context, userChatID int64) (*ticket.Ticket, error) {
	return m.findOpenByUserFunc(ctx, userChatID)
}

func (m *mockTicketRepo) FindLatestByUser(ctx context.Context, userChatID int64) (*ticket.Ticket, error) {
	return m.findLatestByUserFunc(ctx, userChatID)
}

func (m *mockTicketRepo) ListOpen(ctx context.Context, limit int) ([]*ticket.Ticket, error) {
	return m.listOpenFunc(ctx, limit)
}

type mockLinkRepo struct {
	recordFunc              func(ctx context.Context, link *correlation.MessageLink) error
	findByRelayedIDFunc     func(ctx context.Context, relayedMessageID int64) (*correlation.MessageLink, error)
	ticketIDByRelayedIDFunc func(ctx context.Context, relayedMessageID int64) (uint, error)
}

func (m *mockLinkRepo) Record(ctx context.Context, link *correlation.MessageLink) error {
	return m.recordFunc(ctx, link)
}

func (m *mockLinkRepo) FindByRelayedID(ctx context.Context, relayedMessageID int64) (*correlation.MessageLink, error) {
	return m.findByRelayedIDFunc(ctx, relayedMessageID)
}

func (m *mockLinkRepo) TicketIDByRelayedID(ctx context.Context, relayedMessageID int64) (uint, error) {
	return m.ticketIDByRelayedIDFunc(ctx, relayedMessageID)
}

type mockBlockRepo struct {
	isBlockedFunc func(ctx context.Context, userChatID int64) (bool, error)
	toggleFunc    func(ctx context.Context, userChatID, operatorID int64) (bool, error)
}

func (m *mockBlockRepo) IsBlocked(ctx context.Context, userChatID int64) (bool, error) {
	if m.isBlockedFunc == nil {
		return false, nil
	}
	return m.isBlockedFunc(ctx, userChatID)
}

func (m *mockBlockRepo) Toggle(ctx context.Context, userChatID, operatorID int64) (bool, error) {
	return m.toggleFunc(ctx, userChatID, operatorID)
}

var (
	_ ticket.Repository      = (*mockTicketRepo)(nil)
	_ correlation.Repository = (*mockLinkRepo)(nil)
	_ blocklist.Repository   = (*mockBlockRepo)(nil)
)

// memTicketRepo is an in-memory ticket store for flow tests.
type memTicketRepo struct {
	mu      sync.Mutex
	nextID  uint
	tickets map[uint]*ticket.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: make(map[uint]*ticket.Ticket)}
}

func (m *memTicketRepo) Save(ctx context.Context, t *ticket.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tickets {
		if existing.UserChatID() == t.UserChatID() && existing.Status().IsOpen() {
			return ticket.ErrDuplicateOpenTicket
		}
	}
	m.nextID++
	if err := t.SetID(m.nextID); err != nil {
		return err
	}
	m.tickets[t.ID()] = t
	return nil
}

func (m *memTicketRepo) Update(ctx context.Context, t *ticket.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[t.ID()]; !ok {
		return ticket.ErrTicketNotFound
	}
	m.tickets[t.ID()] = t
	return nil
}

func (m *memTicketRepo) FindByID(ctx context.Context, id uint) (*ticket.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, ticket.ErrTicketNotFound
	}
	return t, nil
}

func (m *memTicketRepo) FindOpenByUser(ctx context.Context, userChatID int64) (*ticket.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *ticket.Ticket
	for _, t := range m.tickets {
		if t.UserChatID() == userChatID && t.Status().IsOpen() {
			if found == nil || t.ID() > found.ID() {
				found = t
			}
		}
	}
	if found == nil {
		return nil, ticket.ErrTicketNotFound
	}
	return found, nil
}

func (m *memTicketRepo) FindLatestByUser(ctx context.Context, userChatID int64) (*ticket.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *ticket.Ticket
	for _, t := range m.tickets {
		if t.UserChatID() == userChatID {
			if found == nil || t.ID() > found.ID() {
				found = t
			}
		}
	}
	if found == nil {
		return nil, ticket.ErrTicketNotFound
	}
	return found, nil
}

func (m *memTicketRepo) ListOpen(ctx context.Context, limit int) ([]*ticket.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ticket.Ticket
	for _, t := range m.tickets {
		if t.Status().IsOpen() {
			out = append(out, t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memLinkRepo is an in-memory correlation index for flow tests.
type memLinkRepo struct {
	mu        sync.Mutex
	byRelayed map[int64]*correlation.MessageLink
}

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{byRelayed: make(map[int64]*correlation.MessageLink)}
}

func (m *memLinkRepo) Record(ctx context.Context, link *correlation.MessageLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byRelayed[link.RelayedMessageID()] = link
	return nil
}

func (m *memLinkRepo) FindByRelayedID(ctx context.Context, relayedMessageID int64) (*correlation.MessageLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.byRelayed[relayedMessageID]
	if !ok {
		return nil, correlation.ErrLinkNotFound
	}
	return link, nil
}

func (m *memLinkRepo) TicketIDByRelayedID(ctx context.Context, relayedMessageID int64) (uint, error) {
	link, err := m.FindByRelayedID(ctx, relayedMessageID)
	if err != nil {
		return 0, err
	}
	return link.TicketID(), nil
}

// memSettingRepo is a map-backed setting store for tests.
type memSettingRepo struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemSettingRepo() *memSettingRepo {
	return &memSettingRepo{values: make(map[string]string)}
}

func (m *memSettingRepo) Get(ctx context.Context, key, def string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key]; ok {
		return v
	}
	return def
}

func (m *memSettingRepo) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// sentMessage records one Transport.Send call.
type sentMessage struct {
	Dest    relay.Destination
	Content relay.Content
	ID      int64
}

// fakeTransport records every call and assigns sequential message and
// sub-channel IDs. Error hooks let tests inject failures per call.
type fakeTransport struct {
	mu sync.Mutex

	sent     []sentMessage
	created  []string
	renamed  map[int64]string
	deleted  []int64
	nextID   int64
	topicSeq int64

	sendErr   error
	createErr error
	renameErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{renamed: make(map[int64]string), nextID: 1000, topicSeq: 500}
}

func (f *fakeTransport) Send(ctx context.Context, dest relay.Destination, content relay.Content) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{Dest: dest, Content: content, ID: f.nextID})
	return f.nextID, nil
}

func (f *fakeTransport) CreateSubChannel(ctx context.Context, chatID int64, label string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.topicSeq++
	f.created = append(f.created, label)
	return f.topicSeq, nil
}

func (f *fakeTransport) RenameSubChannel(ctx context.Context, chatID, subChannelID int64, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.renameErr != nil {
		return f.renameErr
	}
	f.renamed[subChannelID] = label
	return nil
}

func (f *fakeTransport) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

// lastSent returns the most recent send, or nil.
func (f *fakeTransport) lastSent() *sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return &f.sent[len(f.sent)-1]
}

// sentTo returns every send addressed at the given chat.
func (f *fakeTransport) sentTo(chatID int64) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, s := range f.sent {
		if s.Dest.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}
