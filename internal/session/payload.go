package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	cookieKey = "cookie"
	userKey   = "user"
)

// UserRef binds a payload to an account
type UserRef struct {
	ID int64 `json:"id"`
}

// Cookie mirrors the attributes of the issued session cookie
type Cookie struct {
	// OriginalMaxAge is in milliseconds.
	OriginalMaxAge *int64     `json:"originalMaxAge"`
	Expires        *time.Time `json:"expires"`
	Secure         bool       `json:"secure"`
	HTTPOnly       bool       `json:"httpOnly"`
	Domain         string     `json:"domain,omitempty"`
	Path           string     `json:"path"`
	SameSite       string     `json:"sameSite,omitempty"`
}

// Touch moves the expiry to now plus the original max age
func (c *Cookie) Touch(now time.Time) {
	if c.OriginalMaxAge == nil {
		return
	}
	expires := now.Add(time.Duration(*c.OriginalMaxAge) * time.Millisecond).UTC()
	c.Expires = &expires
}

// Payload is the session object carried between requests. Keys other than
// cookie and user are kept in Values and round-trip untouched.
type Payload struct {
	Cookie Cookie
	User   *UserRef
	Values map[string]any
}

// NewPayload builds the payload of a fresh, anonymous session
func NewPayload(opts CookieOptions, now time.Time) *Payload {
	opts = opts.normalize()

	maxAge := opts.MaxAge.Milliseconds()
	p := &Payload{
		Cookie: Cookie{
			OriginalMaxAge: &maxAge,
			Secure:         opts.Secure,
			HTTPOnly:       true,
			Domain:         opts.Domain,
			Path:           opts.Path,
			SameSite:       sameSiteName(opts.SameSite),
		},
	}
	p.Cookie.Touch(now)
	return p
}

func (p Payload) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Values)+2)
	for k, v := range p.Values {
		m[k] = v
	}
	m[cookieKey] = p.Cookie
	if p.User != nil {
		m[userKey] = p.User
	}
	return json.Marshal(m)
}

func (p *Payload) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := Payload{}
	if c, ok := raw[cookieKey]; ok {
		if err := json.Unmarshal(c, &out.Cookie); err != nil {
			return fmt.Errorf("invalid cookie: %w", err)
		}
		delete(raw, cookieKey)
	}
	if u, ok := raw[userKey]; ok {
		if string(u) != "null" {
			out.User = &UserRef{}
			if err := json.Unmarshal(u, out.User); err != nil {
				return fmt.Errorf("invalid user: %w", err)
			}
		}
		delete(raw, userKey)
	}

	if len(raw) > 0 {
		out.Values = make(map[string]any, len(raw))
		for k, v := range raw {
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return fmt.Errorf("invalid value for %q: %w", k, err)
			}
			out.Values[k] = val
		}
	}

	*p = out
	return nil
}

// Merge shallow-copies fields into the payload. The cookie and user keys are
// reserved and ignored: the transport owns the cookie and only a login binds
// a user.
func (p *Payload) Merge(fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}

	for k, v := range fields {
		if k == cookieKey || k == userKey {
			continue
		}
		m[k] = v
	}

	if b, err = json.Marshal(m); err != nil {
		return err
	}
	return p.UnmarshalJSON(b)
}

// Decode parses the serialized form stored in Session.Data
func Decode(data string) (*Payload, error) {
	p := &Payload{}
	if err := json.Unmarshal([]byte(data), p); err != nil {
		return nil, fmt.Errorf("failed to decode session payload: %w", err)
	}
	return p, nil
}

// fingerprint identifies the payload content apart from the cookie, which
// changes on every request.
func (p *Payload) fingerprint() string {
	clone := *p
	clone.Cookie = Cookie{}
	b, err := json.Marshal(clone)
	if err != nil {
		return ""
	}
	return string(b)
}

func sameSiteName(s http.SameSite) string {
	switch s {
	case http.SameSiteStrictMode:
		return "strict"
	case http.SameSiteNoneMode:
		return "none"
	case http.SameSiteLaxMode:
		return "lax"
	default:
		return ""
	}
}
