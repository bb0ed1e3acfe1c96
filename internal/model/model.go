// Package model defines domain entities used by services and repositories.
package model

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Account represents a stored player identity plus its opaque save profile.
type Account struct {
	ID        uuid.UUID // PK
	Username  string    // unique, immutable after creation
	Profile   Profile   // replaced wholesale on every sync
	CreatedAt time.Time
}

// Profile is the save blob submitted by the game client. The fields the
// server acts on (username, password, published levels) are lifted out;
// every other key is opaque game state and round-trips untouched.
type Profile struct {
	Username        string
	Password        string
	PublishedLevels []Level

	extra map[string]json.RawMessage
}

// Level is a single user-made level inside a profile. SentToServer is the
// client-maintained idempotency marker for catalog publishing.
type Level struct {
	ID           string
	Name         string
	SentToServer bool

	extra map[string]json.RawMessage
}

// UnmarshalJSON decodes the known fields and keeps all remaining keys raw.
func (p *Profile) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*p = Profile{}
	if raw, ok := m["username"]; ok {
		if err := json.Unmarshal(raw, &p.Username); err != nil {
			return err
		}
		delete(m, "username")
	}
	if raw, ok := m["password"]; ok {
		if err := json.Unmarshal(raw, &p.Password); err != nil {
			return err
		}
		delete(m, "password")
	}
	if raw, ok := m["publishedLevels"]; ok {
		if err := json.Unmarshal(raw, &p.PublishedLevels); err != nil {
			return err
		}
		delete(m, "publishedLevels")
	}
	if len(m) > 0 {
		p.extra = m
	}
	return nil
}

// MarshalJSON re-assembles the blob, merging lifted fields back over the
// preserved raw keys. Empty username/password are treated as absent.
func (p Profile) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(p.extra)+3)
	for k, v := range p.extra {
		m[k] = v
	}
	if p.Username != "" {
		m["username"] = mustRaw(p.Username)
	}
	if p.Password != "" {
		m["password"] = mustRaw(p.Password)
	}
	if p.PublishedLevels != nil {
		raw, err := json.Marshal(p.PublishedLevels)
		if err != nil {
			return nil, err
		}
		m["publishedLevels"] = raw
	}
	return json.Marshal(m)
}

// HasPassword reports whether the blob carried a password value. The
// authorization check is skipped when either side lacks one.
func (p Profile) HasPassword() bool { return p.Password != "" }

func (l *Level) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*l = Level{}
	if raw, ok := m["id"]; ok {
		if err := json.Unmarshal(raw, &l.ID); err != nil {
			return err
		}
		delete(m, "id")
	}
	if raw, ok := m["name"]; ok {
		if err := json.Unmarshal(raw, &l.Name); err != nil {
			return err
		}
		delete(m, "name")
	}
	if raw, ok := m["sentToServer"]; ok {
		if err := json.Unmarshal(raw, &l.SentToServer); err != nil {
			return err
		}
		delete(m, "sentToServer")
	}
	if len(m) > 0 {
		l.extra = m
	}
	return nil
}

// MarshalJSON always emits sentToServer so a published level carries the
// flag even when the client omitted it.
func (l Level) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(l.extra)+3)
	for k, v := range l.extra {
		m[k] = v
	}
	if l.ID != "" {
		m["id"] = mustRaw(l.ID)
	}
	if l.Name != "" {
		m["name"] = mustRaw(l.Name)
	}
	m["sentToServer"] = mustRaw(l.SentToServer)
	return json.Marshal(m)
}

func mustRaw(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
