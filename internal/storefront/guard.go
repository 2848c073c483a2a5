package storefront

import "strings"

var publicPrefixes = []string{
	"/products",
	"/categories",
	"/brands",
	"/auth/",
	"/order-result",
}

var publicRoutes = map[string]bool{
	"/":         true,
	"/login":    true,
	"/register": true,
}

// GuardDecision is what the router should do with a navigation.
type GuardDecision struct {
	// Wait is set while the session is still being restored.
	Wait     bool
	Redirect string
}

func (d GuardDecision) Allowed() bool { return !d.Wait && d.Redirect == "" }

// IsPublic reports whether path can be viewed signed out.
func IsPublic(path string) bool {
	if publicRoutes[path] {
		return true
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Guard decides a navigation. It only shapes what is rendered; the API checks
// authentication and the admin role on its own.
func Guard(path string, loading, authenticated, admin bool) GuardDecision {
	if IsPublic(path) {
		return GuardDecision{}
	}
	if loading {
		return GuardDecision{Wait: true}
	}
	if !authenticated {
		return GuardDecision{Redirect: RouteLogin}
	}
	if (path == "/admin" || strings.HasPrefix(path, "/admin/")) && !admin {
		return GuardDecision{Redirect: RouteHome}
	}
	return GuardDecision{}
}

// GuardSession applies Guard to the current session state.
func GuardSession(s *Session, path string) GuardDecision {
	return Guard(path, s.Loading(), s.Authenticated(), s.IsAdmin())
}
