package session

import (
	"testing"
	"time"

	"github.com/joeblew999/zurich-quartiere/internal/workflow"
)

func TestGetOrCreate(t *testing.T) {
	s := NewStore(8, time.Minute)
	a, created := s.GetOrCreate("")
	if !created || a.ID == "" {
		t.Fatalf("created=%v id=%q", created, a.ID)
	}
	b, created := s.GetOrCreate(a.ID)
	if created || b != a {
		t.Fatal("expected the existing session")
	}
	if _, created := s.GetOrCreate("unknown"); !created {
		t.Fatal("unknown id must create a new session")
	}
	if s.Len() != 2 {
		t.Fatalf("len=%d", s.Len())
	}
}

func TestUpdateKeepsInput(t *testing.T) {
	s := NewStore(8, time.Minute)
	sess := s.Create()
	sess.Update(func(in *workflow.Input) {
		in.Path = "quartiere.geojson"
		in.Upload = &workflow.Upload{Name: "a.geojson", Data: []byte("{}")}
	})
	got, _ := s.Get(sess.ID)
	if in := got.Input(); in.Path != "quartiere.geojson" || in.Upload.Name != "a.geojson" {
		t.Fatalf("input=%+v", in)
	}
}

func TestSessionsExpire(t *testing.T) {
	s := NewStore(8, 20*time.Millisecond)
	sess := s.Create()
	time.Sleep(60 * time.Millisecond)
	if _, ok := s.Get(sess.ID); ok {
		t.Fatal("session should have expired")
	}
}

func TestStoreEvictsOldest(t *testing.T) {
	s := NewStore(2, time.Minute)
	first := s.Create()
	s.Create()
	s.Create()
	if _, ok := s.Get(first.ID); ok {
		t.Fatal("oldest session should have been evicted")
	}
}
