package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/timmy/modguard/internal/config"
	"github.com/timmy/modguard/internal/domain"
	"github.com/timmy/modguard/internal/prompts"
	"github.com/timmy/modguard/internal/repository"
	"gorm.io/gorm"
)

// fakeModel answers profanity and sentiment prompts with canned output and
// counts how often each kind was requested.
type fakeModel struct {
	mu             sync.Mutex
	profanity      string
	profanityErr   error
	sentiment      string
	sentimentErr   error
	profanityCalls int
	sentimentCalls int
	block          bool
}

func (m *fakeModel) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch opts.System {
	case prompts.ProfanitySystemPrompt:
		m.profanityCalls++
		return m.profanity, m.profanityErr
	case prompts.SentimentSystemPrompt:
		m.sentimentCalls++
		return m.sentiment, m.sentimentErr
	default:
		return "", fmt.Errorf("unexpected prompt: %q", prompt)
	}
}

func (m *fakeModel) calls() (profanity, sentiment int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profanityCalls, m.sentimentCalls
}

type memObjects struct {
	objects map[string][]byte
}

func newMemObjects() *memObjects {
	return &memObjects{objects: make(map[string][]byte)}
}

func (m *memObjects) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = b
	return nil
}

func (m *memObjects) Download(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key %q", key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memObjects) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memObjects) EnsureBucket(context.Context) error { return nil }

var dbSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("svc_%d", dbSeq.Add(1))
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:       "sqlite-pure",
		Path:         "file:" + name + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type testEnv struct {
	model       *fakeModel
	lexicon     *repository.LexiconRepository
	submissions *repository.SubmissionRepository
	profanity   *ProfanityService
	moderation  *ModerationService
}

// newTestEnv wires the real repositories on an in-memory database around a
// fake model, seeded with words.
func newTestEnv(t *testing.T, model *fakeModel, words ...string) *testEnv {
	t.Helper()
	db := newTestDB(t)
	lex := repository.NewLexiconRepository(db)
	subs := repository.NewSubmissionRepository(db)

	if _, err := lex.InsertMany(context.Background(), words); err != nil {
		t.Fatalf("seed: %v", err)
	}

	classifier := NewClassifier(model, 0)
	profanity := NewProfanityService(lex, classifier)
	sentiment := NewSentimentService(classifier)

	return &testEnv{
		model:       model,
		lexicon:     lex,
		submissions: subs,
		profanity:   profanity,
		moderation:  NewModerationService(profanity, sentiment, subs),
	}
}

var errStoreDown = errors.New("database is locked")

// failingSubmissions rejects every write.
type failingSubmissions struct{}

func (failingSubmissions) Create(context.Context, *domain.Submission) error { return errStoreDown }

func (failingSubmissions) ListRecent(context.Context, int) ([]domain.Submission, error) {
	return nil, errStoreDown
}

// failingLexicon cannot be read.
type failingLexicon struct{}

func (failingLexicon) Snapshot(context.Context) (*domain.Lexicon, error) { return nil, errStoreDown }

func (failingLexicon) Exists(context.Context, string) (bool, error) { return false, errStoreDown }

func (failingLexicon) InsertIfAbsent(context.Context, string) (*domain.SwearWord, bool, error) {
	return nil, false, errStoreDown
}
