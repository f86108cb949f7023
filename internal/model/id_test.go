package model

import (
	"encoding/json"
	"testing"
)

func TestIDJSON_NumericRoundsAsNumber(t *testing.T) {
	b, err := json.Marshal(Task{ID: "1", Text: "buy milk"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":1,"text":"buy milk","done":false}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
}

func TestIDJSON_OpaqueIsString(t *testing.T) {
	b, err := json.Marshal(ID("MTIzNDU2"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"MTIzNDU2"` {
		t.Fatalf("got %s", b)
	}
}

func TestIDJSON_DecodeNumberOrString(t *testing.T) {
	cases := map[string]ID{
		`{"id":42}`:    "42",
		`{"id":"42"}`:  "42",
		`{"id":"all"}`: "all",
		`{"id":null}`:  "",
		`{}`:           "",
	}
	for in, want := range cases {
		var v struct {
			ID ID `json:"id"`
		}
		if err := json.Unmarshal([]byte(in), &v); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if v.ID != want {
			t.Fatalf("%s: got %q want %q", in, v.ID, want)
		}
	}
}

func TestIDJSON_RejectsFraction(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`1.5`), &id); err == nil {
		t.Fatalf("expected error for fractional id")
	}
}

func TestIDScanAndValue(t *testing.T) {
	var id ID
	if err := id.Scan(int64(7)); err != nil {
		t.Fatal(err)
	}
	if id != "7" {
		t.Fatalf("scan int64: %q", id)
	}
	v, err := id.Value()
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := v.(int64); !ok || n != 7 {
		t.Fatalf("value: %#v", v)
	}

	if err := id.Scan([]byte("abc")); err != nil {
		t.Fatal(err)
	}
	v, _ = id.Value()
	if s, ok := v.(string); !ok || s != "abc" {
		t.Fatalf("value: %#v", v)
	}
}

func TestIDJSON_LeadingZerosStayString(t *testing.T) {
	for _, id := range []ID{"007", "+7", "-0"} {
		b, err := json.Marshal(id)
		if err != nil {
			t.Fatal(err)
		}
		var back ID
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatal(err)
		}
		if back != id {
			t.Fatalf("%q: marshaled %s, decoded %q", id, b, back)
		}
		if _, ok := id.Int64(); ok {
			t.Fatalf("%q must not count as an integer id", id)
		}
	}
}
