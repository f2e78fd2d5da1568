package utils

import (
	"net/http"
	"strconv"

	"agromandi/globals"
)

// ParseInt returns 0 for anything that is not a plain integer.
func ParseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// UserIDFromRequest pulls the authenticated caller's id out of the
// request context. ok is false when Authenticate did not run.
func UserIDFromRequest(r *http.Request) (int, bool) {
	id, ok := r.Context().Value(globals.UserIDKey).(int)
	return id, ok
}

// RoleFromRequest pulls the authenticated caller's role out of the
// request context.
func RoleFromRequest(r *http.Request) (string, bool) {
	role, ok := r.Context().Value(globals.RoleKey).(string)
	return role, ok
}
