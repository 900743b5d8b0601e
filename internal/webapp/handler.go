package webapp

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/commune-hq/commune/internal/domain"
	"github.com/commune-hq/commune/internal/service"
	"github.com/commune-hq/commune/internal/session"
)

// SessionChecker resolves a session token to a session, nil when invalid or
// expired. *session.Manager satisfies it.
type SessionChecker interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
}

// UserFinder loads a user by id, nil when the user does not exist.
// *service.ProfileService satisfies it.
type UserFinder interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// InstanceFinder loads an instance by id. *service.InstanceService satisfies it.
type InstanceFinder interface {
	Get(ctx context.Context, id int64) (*domain.Instance, error)
}

// Handler serves the web client's pages and enforces route guards.
type Handler struct {
	sessions  SessionChecker
	users     UserFinder
	instances InstanceFinder
	tmpl      *template.Template
}

func NewHandler(sessions SessionChecker, users UserFinder, instances InstanceFinder) *Handler {
	return &Handler{
		sessions:  sessions,
		users:     users,
		instances: instances,
		tmpl:      template.Must(template.New("shell").Parse(shellTemplate)),
	}
}

// pageData is what the shell template renders.
type pageData struct {
	Page      Page
	Tab       Tab
	User      *domain.User
	ProfileID *int64
	Instance  *domain.Instance
}

// ServeHTTP resolves the path against the route table, evaluates guards, and
// renders the page shell. A guard decision is made only after both the
// session check and any resource fetch have settled, so a slow fetch never
// causes a spurious redirect.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	match := MatchPath(r.URL.Path)
	ctx := r.Context()

	user, err := h.currentUser(ctx, r)
	if err != nil {
		h.internalError(w, err)
		return
	}

	data := pageData{Page: match.Page, User: user}
	if tab, ok := TabFor(r.URL.Path); ok {
		data.Tab = tab
	}

	switch match.Page {
	case PageProfile, PageProfileEdit:
		// Resolve the target profile before deciding anything: the guard
		// needs both the session and the fetch result.
		targetID := match.Params.ProfileID
		if targetID == nil && user != nil {
			targetID = &user.ID
		}

		var target *domain.User
		if targetID != nil {
			target, err = h.users.GetUser(ctx, *targetID)
			if err != nil {
				h.internalError(w, err)
				return
			}
		}

		if match.Page == PageProfileEdit && user == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		if target == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		data.ProfileID = &target.ID

	case PageAdmin, PageInstanceSetup:
		if user == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

	case PageInstanceSettings, PageInstanceAnalytics:
		var inst *domain.Instance
		if match.Params.InstanceID != nil {
			inst, err = h.instances.Get(ctx, *match.Params.InstanceID)
			if err != nil && !errors.Is(err, service.ErrInstanceNotFound) {
				h.internalError(w, err)
				return
			}
		}

		if user == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		if inst == nil || inst.AdminUserID != user.ID {
			http.Redirect(w, r, "/admin", http.StatusFound)
			return
		}
		data.Instance = inst

	case PageNotFound:
		w.WriteHeader(http.StatusNotFound)
	}

	if err := h.tmpl.Execute(w, data); err != nil {
		logrus.WithError(err).Error("page render failed")
	}
}

// currentUser resolves the session cookie to a user, nil when the request is
// unauthenticated. A stale session pointing at a deleted user counts as
// unauthenticated rather than an error.
func (h *Handler) currentUser(ctx context.Context, r *http.Request) (*domain.User, error) {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	sess, err := h.sessions.Get(ctx, cookie.Value)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	return h.users.GetUser(ctx, sess.UserID)
}

func (h *Handler) internalError(w http.ResponseWriter, err error) {
	logrus.WithError(err).Error("page guard failed")
	http.Error(w, "something went wrong", http.StatusInternalServerError)
}

const shellTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Commune</title>
</head>
<body data-page="{{.Page}}"{{with .Tab}} data-tab="{{.}}"{{end}}{{with .ProfileID}} data-profile-id="{{.}}"{{end}}{{with .Instance}} data-instance-id="{{.ID}}"{{end}}>
  <div id="app">Loading…</div>
  <script type="module" src="/assets/app.js"></script>
</body>
</html>
`
