package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type recordedDecision struct {
	permission string
	allowed    bool
}

type decisionLog struct {
	entries []recordedDecision
}

func (d *decisionLog) ObserveDecision(permission string, allowed bool) {
	d.entries = append(d.entries, recordedDecision{permission, allowed})
}

func newGuardedRouter(principal *Principal, lookup MembershipLookup, log *decisionLog) http.Handler {
	mw := Middleware{Authorizer: NewAuthorizer(lookup), Recorder: log}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if principal != nil {
				req = req.WithContext(ContextWithPrincipal(req.Context(), *principal))
			}
			next.ServeHTTP(w, req)
		})
	})
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
	r.With(mw.Require(PermProjectMemberUpdate)).Put("/projects/{projectId}/members/{memberId}", ok)
	r.With(mw.Require(PermProjectUpdate)).Post("/unscoped", ok)
	r.With(mw.Require("")).Get("/open", ok)
	r.With(mw.RequireSuper).Post("/projects", ok)
	r.With(mw.RequireMember).Get("/projects/{projectId}", ok)
	return r
}

func serve(h http.Handler, method, target string) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec.Code
}

func TestRequireUnauthenticated(t *testing.T) {
	h := newGuardedRouter(nil, &stubMemberships{}, &decisionLog{})
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodPut, "/projects/1/members/7"))
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodPost, "/projects"))
}

func TestRequireMembership(t *testing.T) {
	user := UserPrincipal(5, "u@test.local", UserTypeGeneral)
	lookup := &stubMemberships{perms: map[membershipKey][]Permission{
		{userID: 5, projectID: 1}: {PermProjectMemberUpdate},
		{userID: 5, projectID: 2}: {PermProjectMemberRead},
	}}
	log := &decisionLog{}
	h := newGuardedRouter(&user, lookup, log)

	assert.Equal(t, http.StatusOK, serve(h, http.MethodPut, "/projects/1/members/7"))
	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodPut, "/projects/2/members/7"))
	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodPut, "/projects/3/members/7"))
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPut, "/projects/abc/members/7"))
	assert.Equal(t, []recordedDecision{
		{string(PermProjectMemberUpdate), true},
		{string(PermProjectMemberUpdate), false},
		{string(PermProjectMemberUpdate), false},
	}, log.entries)
}

func TestRequireWithoutProjectParam(t *testing.T) {
	user := UserPrincipal(5, "u@test.local", UserTypeGeneral)
	h := newGuardedRouter(&user, &stubMemberships{}, &decisionLog{})
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPost, "/unscoped"))
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/open"))

	super := UserPrincipal(1, "root@test.local", UserTypeSuper)
	h = newGuardedRouter(&super, &stubMemberships{}, &decisionLog{})
	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/unscoped"))
}

func TestRequireSuper(t *testing.T) {
	user := UserPrincipal(5, "u@test.local", UserTypeGeneral)
	assert.Equal(t, http.StatusForbidden, serve(newGuardedRouter(&user, &stubMemberships{}, &decisionLog{}), http.MethodPost, "/projects"))

	super := UserPrincipal(1, "root@test.local", UserTypeSuper)
	assert.Equal(t, http.StatusOK, serve(newGuardedRouter(&super, &stubMemberships{}, &decisionLog{}), http.MethodPost, "/projects"))

	key := APIKeyPrincipal(1, true)
	assert.Equal(t, http.StatusForbidden, serve(newGuardedRouter(&key, &stubMemberships{}, &decisionLog{}), http.MethodPost, "/projects"))
}

func TestRequireMember(t *testing.T) {
	user := UserPrincipal(5, "u@test.local", UserTypeGeneral)
	lookup := &stubMemberships{perms: map[membershipKey][]Permission{
		{userID: 5, projectID: 1}: {},
	}}
	log := &decisionLog{}
	h := newGuardedRouter(&user, lookup, log)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/projects/1"))
	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodGet, "/projects/2"))
	assert.Equal(t, []recordedDecision{{"membership", true}, {"membership", false}}, log.entries)

	key := APIKeyPrincipal(2, false)
	h = newGuardedRouter(&key, &stubMemberships{}, &decisionLog{})
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/projects/2"))
	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodGet, "/projects/1"))
}
