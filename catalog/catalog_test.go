package catalog

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/chazu/udrefl/snapshot"
)

func openTemp(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "nested", "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func sample(source string, n int) *snapshot.Snapshot {
	s := &snapshot.Snapshot{ID: uuid.New(), Source: source, Arch: "amd64"}
	for i := range n {
		s.Types = append(s.Types, snapshot.TypeRecord{
			ID:   uint64(i + 1),
			Name: source + ".T",
			Size: 8,
			Fields: []snapshot.FieldRecord{
				{Name: "X", Shape: "var", Type: "int", Offset: 0},
			},
		})
	}
	return s
}

func TestPutGet(t *testing.T) {
	c := openTemp(t)
	s := sample("image", 2)
	if err := c.Put(s); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := c.Get(s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("Get = %+v, want %+v", got, s)
	}
}

func TestGetMissing(t *testing.T) {
	c := openTemp(t)
	if _, err := c.Get(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	c := openTemp(t)
	first, second := sample("a", 1), sample("b", 3)
	for _, s := range []*snapshot.Snapshot{first, second} {
		if err := c.Put(s); err != nil {
			t.Fatal(err)
		}
	}

	list, err := c.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("order = %s, %s; want newest first", list[0].ID, list[1].ID)
	}
	if list[0].Source != "b" || list[0].Types != 3 || list[0].Arch != "amd64" {
		t.Errorf("summary = %+v", list[0])
	}
	if list[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not recorded")
	}
}

func TestPutReplaces(t *testing.T) {
	c := openTemp(t)
	s := sample("a", 1)
	if err := c.Put(s); err != nil {
		t.Fatal(err)
	}
	s.Source = "renamed"
	if err := c.Put(s); err != nil {
		t.Fatal(err)
	}
	list, err := c.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Source != "renamed" {
		t.Errorf("List = %+v", list)
	}
}

func TestDelete(t *testing.T) {
	c := openTemp(t)
	s := sample("a", 1)
	if err := c.Put(s); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete: %v", err)
	}
	if err := c.Delete(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: %v", err)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s := sample("a", 1)
	if err := c.Put(s); err != nil {
		t.Fatal(err)
	}
	c.Close()

	c, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, err := c.Get(s.ID); err != nil {
		t.Errorf("snapshot lost across reopen: %v", err)
	}
}
