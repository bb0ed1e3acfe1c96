package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func TestProfile_RoundTripPreservesUnknownFields(t *testing.T) {
	t.Parallel()
	in := []byte(`{
		"username": "alice",
		"password": "pw1",
		"progress": {"world": 3, "deaths": 42},
		"settings": {"music": false},
		"publishedLevels": [
			{"id": "L1", "name": "Test", "sentToServer": false, "geometry": [1, 2, 3]}
		]
	}`)

	var p Profile
	if err := json.Unmarshal(in, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Username != "alice" || p.Password != "pw1" {
		t.Fatalf("lifted fields: %+v", p)
	}
	if len(p.PublishedLevels) != 1 || p.PublishedLevels[0].ID != "L1" || p.PublishedLevels[0].SentToServer {
		t.Fatalf("levels: %+v", p.PublishedLevels)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !reflect.DeepEqual(decode(t, in), decode(t, out)) {
		t.Fatalf("round trip changed the blob:\n in=%s\nout=%s", in, out)
	}
}

func TestProfile_MutatedFlagSurvivesMarshal(t *testing.T) {
	t.Parallel()
	var p Profile
	if err := json.Unmarshal([]byte(`{"username":"a","publishedLevels":[{"id":"L1","name":"N","sentToServer":false,"tiles":"aaa"}]}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p.PublishedLevels[0].SentToServer = true

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	m := decode(t, out)
	levels := m["publishedLevels"].([]any)
	lvl := levels[0].(map[string]any)
	if lvl["sentToServer"] != true {
		t.Fatalf("sentToServer not flipped: %v", lvl)
	}
	if lvl["tiles"] != "aaa" {
		t.Fatalf("unknown level field lost: %v", lvl)
	}
}

func TestLevel_MarshalAlwaysEmitsSentToServer(t *testing.T) {
	t.Parallel()
	var l Level
	if err := json.Unmarshal([]byte(`{"id":"L2","name":"Cave"}`), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	m := decode(t, out)
	if v, ok := m["sentToServer"]; !ok || v != false {
		t.Fatalf("sentToServer missing or wrong: %s", out)
	}
}

func TestProfile_EmptyMarshalsToEmptyObject(t *testing.T) {
	t.Parallel()
	out, err := json.Marshal(Profile{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "{}" {
		t.Fatalf("got %s", out)
	}
}

func TestProfile_HasPassword(t *testing.T) {
	t.Parallel()
	if (Profile{}).HasPassword() {
		t.Fatalf("empty profile should not have a password")
	}
	if !(Profile{Password: "x"}).HasPassword() {
		t.Fatalf("password not detected")
	}
}
