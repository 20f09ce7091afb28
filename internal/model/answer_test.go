package model

import (
	"encoding/json"
	"testing"
)

func TestAnswerUnmarshalKinds(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ValueKind
	}{
		{"null", `null`, KindEmpty},
		{"string", `"paris"`, KindText},
		{"number", `42.5`, KindNumber},
		{"bool", `true`, KindBool},
		{"array", `["a","b"]`, KindList},
		{"object", `{"left":"a","right":"b"}`, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Answer
			if err := json.Unmarshal([]byte(tt.in), &a); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.in, err)
			}
			if a.Kind != tt.want {
				t.Errorf("kind = %s, want %s", a.Kind, tt.want)
			}
		})
	}
}

func TestAnswerRoundTrip(t *testing.T) {
	inputs := []string{`null`, `"hello"`, `42`, `true`, `["a","b"]`}

	for _, in := range inputs {
		var a Answer
		if err := json.Unmarshal([]byte(in), &a); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		out, err := json.Marshal(a)
		if err != nil {
			t.Fatalf("marshal %s: %v", in, err)
		}
		if string(out) != in {
			t.Errorf("round trip: %s -> %s", in, out)
		}
	}
}

func TestAnswerObjectKeyOrderCanonicalized(t *testing.T) {
	var a, b Answer
	if err := json.Unmarshal([]byte(`{"x":1,"y":2}`), &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(`{"y":2,"x":1}`), &b); err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Errorf("objects differing only in key order should be equal: %s vs %s", a.Canonical(), b.Canonical())
	}
}

func TestAnswerNormalized(t *testing.T) {
	a := TextAnswer("  Paris  ").Normalized()
	if a.Text != "paris" {
		t.Errorf("normalized text = %q, want %q", a.Text, "paris")
	}

	// Non-text kinds pass through unchanged.
	n := NumberAnswer(4).Normalized()
	if n.Kind != KindNumber || n.Number != 4 {
		t.Errorf("normalized number changed: %+v", n)
	}
}

func TestAnswerEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Answer
		want bool
	}{
		{"case folded text", TextAnswer("Paris"), TextAnswer("paris"), true},
		{"trimmed text", TextAnswer(" paris "), TextAnswer("paris"), true},
		{"different text", TextAnswer("paris"), TextAnswer("lyon"), false},
		{"equal numbers", NumberAnswer(4), NumberAnswer(4), true},
		{"different numbers", NumberAnswer(4), NumberAnswer(5), false},
		{"number vs text", NumberAnswer(4), TextAnswer("4"), false},
		{"equal bools", BoolAnswer(true), BoolAnswer(true), true},
		{"equal lists", ListAnswer("a", "b"), ListAnswer("a", "b"), true},
		{"reordered lists", ListAnswer("a", "b"), ListAnswer("b", "a"), false},
	}

	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%s: Equal = %t, want %t", tt.name, got, tt.want)
		}
	}
}

func TestAnswerPresent(t *testing.T) {
	if EmptyAnswer().Present() {
		t.Error("empty answer reported present")
	}
	if (Answer{}).Present() {
		t.Error("zero-value answer reported present")
	}
	if !TextAnswer("").Present() {
		t.Error("empty string is still a present text answer")
	}
}
