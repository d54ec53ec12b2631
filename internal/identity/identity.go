package identity

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUser    Kind = "user"
	KindSession Kind = "session"
)

// ErrUnauthenticated means a request carried neither a user token nor a
// guest session id.
var ErrUnauthenticated = errors.New("no user or session identity present")

// Owner is the identity that exclusively controls a cart or wishlist:
// an authenticated user, or an anonymous session identified by a
// client-generated opaque id.
type Owner struct {
	Kind      Kind
	UserID    int64
	SessionID string
}

func User(id int64) Owner { return Owner{Kind: KindUser, UserID: id} }

func Session(id string) Owner { return Owner{Kind: KindSession, SessionID: id} }

func (o Owner) IsUser() bool { return o.Kind == KindUser }

func (o Owner) IsSession() bool { return o.Kind == KindSession }

func (o Owner) Validate() error {
	switch o.Kind {
	case KindUser:
		if o.UserID > 0 {
			return nil
		}
	case KindSession:
		if o.SessionID != "" {
			return nil
		}
	}
	return ErrUnauthenticated
}

// String renders a stable key like "user:42" or "session:a81f...", used
// for cache keys and log fields.
func (o Owner) String() string {
	if o.Kind == KindUser {
		return fmt.Sprintf("user:%d", o.UserID)
	}
	return "session:" + o.SessionID
}
