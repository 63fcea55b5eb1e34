package reaper

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ammar0144/catalog4go/pkg/models"
)

type fakeSession struct {
	identity  string
	role      string
	roleReads int
}

func (s *fakeSession) Identity(context.Context) (string, bool) {
	return s.identity, s.identity != ""
}

func (s *fakeSession) Role(context.Context) string {
	s.roleReads++
	return s.role
}

var adminOnly = AuthorizerFunc(func(role string) bool { return role == "admin" })

type fakeFS struct {
	files     map[string]bool
	removeErr error
	exists    []string
	removed   []string
}

func newFakeFS(paths ...string) *fakeFS {
	f := &fakeFS{files: make(map[string]bool)}
	for _, p := range paths {
		f.files[p] = true
	}
	return f
}

func (f *fakeFS) Exists(path string) bool {
	f.exists = append(f.exists, path)
	return f.files[path]
}

func (f *fakeFS) Remove(path string) error {
	f.removed = append(f.removed, path)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.files, path)
	return nil
}

// fakeStore is an in-memory Datastore that records every call in order
type fakeStore struct {
	titles map[string]models.Title
	actors map[string]bool
	links  []models.TitleActor

	calls []string

	findErr   error
	deleteErr error
	countErr  map[string]error
	panicOn   string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		titles:   make(map[string]models.Title),
		actors:   make(map[string]bool),
		countErr: make(map[string]error),
	}
}

func (s *fakeStore) addTitle(id string, kind models.TitleKind, ref string, actors ...string) {
	s.titles[id] = models.Title{ID: id, Kind: kind, Name: "Title " + id, ArtifactRef: ref}
	for _, a := range actors {
		s.actors[a] = true
		s.links = append(s.links, models.TitleActor{TitleID: id, ActorID: a})
	}
}

func (s *fakeStore) record(format string, args ...any) {
	call := fmt.Sprintf(format, args...)
	s.calls = append(s.calls, call)
	if s.panicOn != "" && s.panicOn == call {
		panic("boom: " + call)
	}
}

func (s *fakeStore) FindTitleByID(_ context.Context, id string) (*models.Title, error) {
	s.record("find:%s", id)
	if s.findErr != nil {
		return nil, s.findErr
	}
	t, ok := s.titles[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *fakeStore) DeleteTitleByID(_ context.Context, id string) error {
	s.record("delete-title:%s", id)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.titles, id)
	kept := s.links[:0]
	for _, l := range s.links {
		if l.TitleID != id {
			kept = append(kept, l)
		}
	}
	s.links = kept
	return nil
}

func (s *fakeStore) FindAssociationsByTitle(_ context.Context, id string) ([]models.TitleActor, error) {
	s.record("associations:%s", id)
	var out []models.TitleActor
	for _, l := range s.links {
		if l.TitleID == id {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeStore) CountAssociations(_ context.Context, actorID string, kind models.TitleKind) (int64, error) {
	s.record("count:%s:%s", actorID, kind)
	if err := s.countErr[actorID]; err != nil {
		return 0, err
	}
	var n int64
	for _, l := range s.links {
		if l.ActorID == actorID && s.titles[l.TitleID].Kind == kind {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) DeleteActorByID(_ context.Context, id string) error {
	s.record("delete-actor:%s", id)
	delete(s.actors, id)
	return nil
}

func (s *fakeStore) ListUnreferencedActorIDs(context.Context) ([]string, error) {
	s.record("list-unreferenced")
	referenced := make(map[string]bool)
	for _, l := range s.links {
		referenced[l.ActorID] = true
	}
	var out []string
	for id := range s.actors {
		if !referenced[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *fakeStore) countCalls(prefix string) int {
	n := 0
	for _, c := range s.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (s *fakeStore) indexOf(call string) int {
	for i, c := range s.calls {
		if c == call {
			return i
		}
	}
	return -1
}

type loggedEvent struct {
	name     string
	payload  map[string]any
	severity Severity
}

type recordingEvents struct {
	mu     sync.Mutex
	events []loggedEvent
}

func (r *recordingEvents) Log(_ context.Context, event string, payload map[string]any, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, loggedEvent{name: event, payload: payload, severity: severity})
}

func (r *recordingEvents) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.name)
	}
	return out
}

func (r *recordingEvents) last() loggedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

var errStore = errors.New("store exploded")
