package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/event-ticketing/internal/mailer"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/store"
	"github.com/iliyamo/event-ticketing/internal/ticket"
)

const testEvent = "Gala Test"

var errBoom = errors.New("boom")

type recordingSender struct {
	mu   sync.Mutex
	msgs []mailer.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.TicketingEvent
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, ev queue.TicketingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

// faultyStore fails writes of keys that contain failOn.
type faultyStore struct {
	store.Store
	failOn string
}

func (f *faultyStore) Set(ctx context.Context, key string, v []byte) error {
	if f.failOn != "" && strings.Contains(key, f.failOn) {
		return errBoom
	}
	return f.Store.Set(ctx, key, v)
}

func (f *faultyStore) SetNX(ctx context.Context, key string, v []byte) (bool, error) {
	if f.failOn != "" && strings.Contains(key, f.failOn) {
		return false, errBoom
	}
	return f.Store.SetNX(ctx, key, v)
}

type fixture struct {
	store     store.Store
	repo      *repository.RegistrationRepo
	sender    *recordingSender
	publisher *recordingPublisher
	issuance  *IssuanceService
	tables    *TableService
	validator *ValidationService
}

func testLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func newFixture(s store.Store) *fixture {
	if s == nil {
		s = store.NewMemoryStore()
	}
	logger := testLogger()
	repo := repository.NewRegistrationRepo(s)
	codec := ticket.NewCodec("")
	sender := &recordingSender{}
	pub := &recordingPublisher{}
	return &fixture{
		store:     s,
		repo:      repo,
		sender:    sender,
		publisher: pub,
		issuance:  NewIssuanceService(repo, codec, mailer.NewNotifier(sender, testEvent, "ops@example.com"), pub, logger, testEvent),
		tables:    NewTableService(repo, pub, logger),
		validator: NewValidationService(repo, codec, testEvent),
	}
}
