package cache

import (
	"errors"
	"testing"
)

func TestJSONSerializer(t *testing.T) {
	s := NewJSONSerializer()

	t.Run("Name", func(t *testing.T) {
		if s.Name() != "json" {
			t.Errorf("Name() = %q, want json", s.Name())
		}
	})

	t.Run("Round trip", func(t *testing.T) {
		type record struct {
			ID    int      `json:"id"`
			Tags  []string `json:"tags"`
			Title string   `json:"title"`
		}
		in := record{ID: 7, Tags: []string{"a", "b"}, Title: "report"}

		data, err := s.Serialize(in)
		if err != nil {
			t.Fatalf("Serialize() error = %v", err)
		}
		var out record
		if err := s.Deserialize(data, &out); err != nil {
			t.Fatalf("Deserialize() error = %v", err)
		}
		if out.ID != in.ID || out.Title != in.Title || len(out.Tags) != 2 {
			t.Errorf("round trip = %+v, want %+v", out, in)
		}
	})

	t.Run("Unserializable value", func(t *testing.T) {
		_, err := s.Serialize(make(chan int))
		if !errors.Is(err, ErrSerialize) {
			t.Errorf("Serialize(chan) error = %v, want ErrSerialize", err)
		}
	})

	t.Run("Corrupt input", func(t *testing.T) {
		var v map[string]int
		if err := s.Deserialize([]byte("{nope"), &v); !errors.Is(err, ErrDeserialize) {
			t.Errorf("Deserialize() error = %v, want ErrDeserialize", err)
		}
	})
}
