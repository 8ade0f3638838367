package safemap

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGet(t *testing.T) {
	m, err := New(E("email", "Email"), E("password", "Password"))
	if err != nil {
		t.Fatal(err)
	}

	v, err := m.Get("email")
	if err != nil {
		t.Errorf("unexpected error: %s", err)
	}
	if v != "Email" {
		t.Errorf("expected \"Email\", got \"%s\"", v)
	}

	_, err = m.Get("firstName")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestMustGetPanics(t *testing.T) {
	m := Must[string, int]()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound panic, got %v", r)
		}
	}()
	m.MustGet("missing")
}

func TestAbsentValues(t *testing.T) {
	var nilFunc func() string
	var nilPtr *int
	cases := []struct {
		name string
		set  func() error
	}{
		{"nil func", func() error {
			_, err := New(E("f", nilFunc))
			return err
		}},
		{"nil pointer", func() error {
			m := Must[string, *int]()
			return m.Set("p", nilPtr)
		}},
		{"nil interface", func() error {
			m := Must[string, any]()
			return m.Set("i", nil)
		}},
		{"nil slice", func() error {
			m := Must[string, []string]()
			return m.Set("s", nil)
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.set(); !errors.Is(err, ErrValueRequired) {
				t.Errorf("expected ErrValueRequired, got %v", err)
			}
		})
	}
}

func TestZeroValuesAreNotAbsent(t *testing.T) {
	m, err := New(E("n", 0), E("s", 0))
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", m.Len())
	}
	if err = Must[string, string]().Set("empty", ""); err != nil {
		t.Errorf("empty string must be accepted: %s", err)
	}
}

func TestFilterAbsent(t *testing.T) {
	one := 1
	m := FilterAbsent(E("a", &one), E[string, *int]("b", nil), E("c", &one))
	if diff := cmp.Diff([]string{"a", "c"}, m.Keys()); diff != "" {
		t.Error(diff)
	}
}

func TestKeysKeepInsertionOrder(t *testing.T) {
	m := Must(E("z", 1), E("a", 2), E("m", 3))
	if err := m.Set("a", 4); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"z", "a", "m"}, m.Keys()); diff != "" {
		t.Error(diff)
	}

	var visited []int
	m.Range(func(_ string, v int) bool {
		visited = append(visited, v)
		return true
	})
	if diff := cmp.Diff([]int{1, 4, 3}, visited); diff != "" {
		t.Error(diff)
	}
}
