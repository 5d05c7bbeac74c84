package fs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"flowcore/internal/infra/attach"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("construct store: %v", err)
	}
	return s
}

func TestPutGetDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	info, err := s.Put(ctx, "polynomials/cp-air.csv", strings.NewReader("T,cp\n300,1006\n"),
		attach.PutOptions{ContentType: "text/csv", Metadata: map[string]string{"material": "air"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "polynomials/cp-air.csv" || info.Size == 0 {
		t.Fatalf("unexpected info %+v", info)
	}

	got, rc, err := s.Get(ctx, "polynomials/cp-air.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	payload, err := io.ReadAll(rc)
	if err != nil || !strings.HasPrefix(string(payload), "T,cp") {
		t.Fatalf("unexpected payload %q (%v)", payload, err)
	}
	if got.ContentType != "text/csv" || got.Metadata["material"] != "air" {
		t.Fatalf("sidecar metadata lost: %+v", got)
	}

	if err := s.Delete(ctx, "polynomials/cp-air.csv"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "polynomials/cp-air.csv"); !errors.Is(err, attach.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if _, _, err := s.Get(ctx, "polynomials/cp-air.csv"); !errors.Is(err, attach.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestListFiltersByPrefixAndHidesSidecars(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"polynomials/a.csv", "polynomials/b.csv", "profiles/inlet.dat"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), attach.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := s.List(ctx, "polynomials/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "polynomials/a.csv" || infos[1].Key != "polynomials/b.csv" {
		t.Fatalf("unexpected listing %+v", infos)
	}
	all, err := s.List(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("unexpected full listing %+v (%v)", all, err)
	}
}

func TestKeySanitization(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "../escape", "/absolute", "a/../../b"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), attach.PutOptions{}); err == nil {
			t.Fatalf("key %q accepted", key)
		}
	}
	if s.Driver() != attach.DriverFilesystem {
		t.Fatalf("unexpected driver %q", s.Driver())
	}
}
