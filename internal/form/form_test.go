package form

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/fairsonority/internal/safemap"
	"github.com/sidereusnuntius/fairsonority/internal/validate"
)

type seed struct {
	ArtistID string    `json:"artistId"`
	BPM      int       `json:"bpm"`
	Comment  string    `json:"comment"`
	Genre    []string  `json:"genre"`
	Date     time.Time `json:"date"`
}

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func testConfig() *Config {
	return safemap.Must(
		safemap.E("bpm", Field[int](func(v int) string { return validate.Message(validate.BPM(v)) }, Zero[int], Int)),
		safemap.E("comment", Field[string](func(v string) string { return validate.Message(validate.Required(v, "Comment")) }, EmptyString)),
		safemap.E("genre", Field[[]string](func(v []string) string { return validate.Message(validate.Genres(v)) }, EmptyStrings, List)),
		safemap.E("date", Field[time.Time](func(v time.Time) string { return validate.Message(validate.Deadline(v, now)) }, Zero[time.Time], Time(time.RFC3339))),
	)
}

func TestNewStateSeedsDefaults(t *testing.T) {
	s, err := NewStateFromConfig(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"bpm", "comment", "genre", "date"}, s.Keys()); diff != "" {
		t.Error(diff)
	}
	expected := map[string]any{"bpm": 0, "comment": "", "genre": []string{}, "date": time.Time{}}
	if diff := cmp.Diff(expected, s.Values()); diff != "" {
		t.Error(diff)
	}
	for _, k := range s.Keys() {
		if s.Validated(k) {
			t.Errorf("field %s should not be validated yet", k)
		}
	}
}

func TestNewStateMissingConfig(t *testing.T) {
	_, err := NewState([]string{"bpm", "rating"}, testConfig())
	if !errors.Is(err, safemap.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestUpdateValueTransforms(t *testing.T) {
	s, _ := NewStateFromConfig(testConfig())

	cases := []struct {
		key      string
		raw      any
		expected any
		fails    bool
	}{
		{"bpm", "120", 120, false},
		{"bpm", 90, 90, false},
		{"bpm", "fast", 0, true},
		{"comment", "a song", "a song", false},
		{"genre", "jazz, funk", []string{"jazz", "funk"}, false},
		{"date", "2025-04-01T00:00:00Z", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), false},
		{"comment", 12, "a song", true},
	}

	for _, c := range cases {
		t.Run(c.key, func(t *testing.T) {
			err := s.UpdateValue(c.key, c.raw)
			if c.fails != (err != nil) {
				t.Fatalf("unexpected error state: %v", err)
			}
			if diff := cmp.Diff(c.expected, s.Value(c.key)); diff != "" && !c.fails {
				t.Error(diff)
			}
		})
	}
}

func TestFailedTransformRecordsError(t *testing.T) {
	s, _ := NewStateFromConfig(testConfig())
	if err := s.UpdateValue("bpm", "fast"); err == nil {
		t.Fatal("expected an error")
	}
	if s.Error("bpm") == "" {
		t.Error("expected the transform failure to be stored as the field error")
	}
	if v, _ := Get[int](s, "bpm"); v != 0 {
		t.Errorf("expected default value, got %d", v)
	}
}

func TestUpdateErrorsKeepsTransformFailure(t *testing.T) {
	s, _ := NewStateFromConfig(testConfig())
	_ = s.UpdateValue("comment", "a song")
	_ = s.UpdateValue("genre", "jazz")
	_ = s.UpdateValue("date", "2025-04-01T00:00:00Z")
	if err := s.UpdateValue("bpm", "fast"); err == nil {
		t.Fatal("expected an error")
	}

	for i := 0; i < 2; i++ {
		errs := s.UpdateErrors()
		if diff := cmp.Diff([]string{"Value must be a whole number", "", "", ""}, errs); diff != "" {
			t.Error(diff)
		}
	}
	if msg, _ := s.Validate("bpm"); msg != "Value must be a whole number" {
		t.Errorf("unexpected message %q", msg)
	}

	if err := s.UpdateValue("bpm", "120"); err != nil {
		t.Fatal(err)
	}
	if HasErrors(s.UpdateErrors()) {
		t.Errorf("expected the failure to be cleared, got %q", s.Error("bpm"))
	}
}

func TestResetClearsTransformFailure(t *testing.T) {
	s, _ := NewStateFromConfig(testConfig())
	_ = s.UpdateValue("bpm", "fast")
	s.Reset()
	if msg, _ := s.Validate("bpm"); msg != "BPM is required" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestValidateValueIsIdempotent(t *testing.T) {
	s, _ := NewStateFromConfig(testConfig())
	for _, v := range []string{"", "hello"} {
		first, err := s.ValidateValue("comment", v)
		if err != nil {
			t.Fatal(err)
		}
		second, _ := s.ValidateValue("comment", v)
		if first != second {
			t.Errorf("validation of %q differs: %q then %q", v, first, second)
		}
		if s.Error("comment") != second {
			t.Errorf("stored error %q does not match returned %q", s.Error("comment"), second)
		}
	}
}

func TestValidateValueTypeMismatch(t *testing.T) {
	s, _ := NewStateFromConfig(testConfig())
	if _, err := s.ValidateValue("bpm", "120"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestUpdateErrorsValidatesUntouchedFields(t *testing.T) {
	s, _ := NewStateFromConfig(testConfig())
	_ = s.UpdateValue("comment", "a song")

	errs := s.UpdateErrors()
	expected := []string{"BPM is required", "", validate.ErrNoGenres.Error(), "Deadline is required"}
	if diff := cmp.Diff(expected, errs); diff != "" {
		t.Error(diff)
	}
	if !HasErrors(errs) {
		t.Error("expected HasErrors to be true")
	}
	for _, k := range s.Keys() {
		if !s.Validated(k) {
			t.Errorf("field %s should be validated", k)
		}
	}
}

func TestHasErrors(t *testing.T) {
	if HasErrors([]string{"", ""}) {
		t.Error("expected no errors")
	}
	if HasErrors(nil) {
		t.Error("expected no errors for empty slice")
	}
	if !HasErrors([]string{"", "x"}) {
		t.Error("expected errors")
	}
}

func TestModelRoundTrip(t *testing.T) {
	s, _ := NewStateFromConfig(testConfig())
	deadline := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	_ = s.UpdateValue("bpm", "128")
	_ = s.UpdateValue("comment", "four on the floor")
	_ = s.UpdateValue("genre", []string{"house"})
	_ = s.UpdateValue("date", deadline)

	m, err := UpdateModel(seed{ArtistID: "artist-1"}, s)
	if err != nil {
		t.Fatal(err)
	}
	expected := seed{
		ArtistID: "artist-1",
		BPM:      128,
		Comment:  "four on the floor",
		Genre:    []string{"house"},
		Date:     deadline,
	}
	if diff := cmp.Diff(expected, m); diff != "" {
		t.Error(diff)
	}

	extracted := []any{m.BPM, m.Comment, m.Genre, m.Date}
	for i, k := range s.Keys() {
		if diff := cmp.Diff(s.Value(k), extracted[i]); diff != "" {
			t.Errorf("field %s: %s", k, diff)
		}
	}

	created, err := CreateModel[seed](s)
	if err != nil {
		t.Fatal(err)
	}
	if created.ArtistID != "" {
		t.Errorf("expected empty artist id, got %q", created.ArtistID)
	}
}

func TestReset(t *testing.T) {
	s, _ := NewStateFromConfig(testConfig())
	_ = s.UpdateValue("comment", "x")
	s.UpdateErrors()
	s.Reset()
	if s.Value("comment") != "" || s.Error("bpm") != "" || s.Validated("bpm") {
		t.Error("expected state to be back to defaults")
	}
}
