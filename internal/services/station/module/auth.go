package module

import (
	"crypto/subtle"
	"strings"

	"scandesk/internal/modkit/httpkit"
	perr "scandesk/internal/platform/errors"
	"scandesk/internal/platform/net/middleware"
)

// parseOperatorTokens reads "operator:token" pairs; malformed pairs are skipped
func parseOperatorTokens(pairs []string) map[string]string {
	out := map[string]string{}
	for _, p := range pairs {
		name, tok, ok := strings.Cut(strings.TrimSpace(p), ":")
		name, tok = strings.TrimSpace(name), strings.TrimSpace(tok)
		if !ok || name == "" || tok == "" {
			continue
		}
		out[tok] = name
	}
	return out
}

// operatorPort authenticates station callers by bearer token
// nil means station routes are open
func operatorPort(tokens map[string]string) middleware.AuthPort {
	if len(tokens) == 0 {
		return nil
	}
	return httpkit.NewPortFunc(func(raw string) (string, error) {
		var operator string
		for tok, name := range tokens {
			if subtle.ConstantTimeCompare([]byte(raw), []byte(tok)) == 1 {
				operator = name
			}
		}
		if operator == "" {
			return "", perr.Unauthorizedf("unknown operator token")
		}
		return operator, nil
	})
}

// bearerDocs marks station operations in the served API docs as needing an operator token
func bearerDocs(spec map[string]any) {
	comps, ok := spec["components"].(map[string]any)
	if !ok {
		comps = map[string]any{}
		spec["components"] = comps
	}
	schemes, ok := comps["securitySchemes"].(map[string]any)
	if !ok {
		schemes = map[string]any{}
		comps["securitySchemes"] = schemes
	}
	schemes["operatorToken"] = map[string]any{"type": "http", "scheme": "bearer"}

	paths, _ := spec["paths"].(map[string]any)
	for p, node := range paths {
		if p != "/stations" && !strings.HasPrefix(p, "/stations/") {
			continue
		}
		ops, _ := node.(map[string]any)
		for _, op := range ops {
			if o, ok := op.(map[string]any); ok {
				o["security"] = []any{map[string]any{"operatorToken": []any{}}}
			}
		}
	}
}
