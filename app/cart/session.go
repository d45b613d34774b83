package cart

import (
	"context"
	"net/http"

	"github.com/kenyaconnect/storefront/app/session"
	"github.com/kenyaconnect/storefront/notify"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "session_id"
)

// resolveSession finds or creates the caller's session and echoes its id
// back in both the header and the cookie.
func resolveSession(w http.ResponseWriter, r *http.Request, sessions *session.Registry) *session.Session {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}
	}

	s, _ := sessions.GetOrCreate(id)
	w.Header().Set(SessionHeader, s.ID)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// withRecorder attaches a per-request notice recorder in front of base.
func withRecorder(ctx context.Context, base notify.Notifier) (context.Context, *notify.Recorder) {
	rec := &notify.Recorder{}
	return notify.WithNotifier(ctx, notify.Multi(rec, base)), rec
}
