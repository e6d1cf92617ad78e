package utils

// Core scopes granted by access tokens.
const (
	ScopeNodesRead     = "nodes.read"
	ScopeNodesWrite    = "nodes.write"
	ScopeCommentsRead  = "comments.read"
	ScopeCommentsWrite = "comments.write"
	ScopeUsersRead     = "users.read"
	ScopeUsersWrite    = "users.write"
	ScopeModerate      = "comments.moderate"
)

var (
	fullRead  = []string{ScopeNodesRead, ScopeCommentsRead, ScopeUsersRead}
	fullWrite = append(append([]string{}, fullRead...), ScopeNodesWrite, ScopeCommentsWrite, ScopeUsersWrite)
	// AdminLevel is the composed scope set that counts as administrative.
	AdminLevel = append(append([]string{}, fullWrite...), ScopeModerate)

	publicScopes = map[string][]string{
		"osf.full_read":  fullRead,
		"osf.full_write": fullWrite,
		"osf.admin":      AdminLevel,
	}
)

// NormalizeScopes expands public scope names into the core scopes they grant.
// Unknown names are dropped.
func NormalizeScopes(scopes []string) map[string]bool {
	out := make(map[string]bool)
	for _, s := range scopes {
		for _, core := range publicScopes[s] {
			out[core] = true
		}
	}
	return out
}

// ScopesInclude reports whether granted covers every scope in required.
func ScopesInclude(granted map[string]bool, required []string) bool {
	for _, r := range required {
		if !granted[r] {
			return false
		}
	}
	return true
}
