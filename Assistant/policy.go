package Assistant

import (
	"fmt"
	"strings"

	"Mason/middleware"
)

// ContextPolicy is the fixed per-role envelope applied to every prompt
// before it reaches an external provider. One table per role, no dynamic
// state.
type ContextPolicy struct {
	AllowedDataTypes    []string `json:"allowed_data_types"`
	MaxComplexity       string   `json:"max_complexity"`
	CanAccessFinancials bool     `json:"can_access_financials"`
	AllowedPromptTypes  []string `json:"allowed_prompt_types"`
	RestrictedWords     []string `json:"restricted_words"`
}

// RestrictAll is the denylist sentinel: every prompt is rejected.
const RestrictAll = "all"

var policies = map[middleware.Role]ContextPolicy{
	middleware.RoleAdmin: {
		AllowedDataTypes:    []string{"workers", "projects", "clients", "attendance", "payments", "expenses", "reports", "analytics"},
		MaxComplexity:       "high",
		CanAccessFinancials: true,
		AllowedPromptTypes:  []string{"query", "report", "analysis", "chat"},
		RestrictedWords:     []string{},
	},
	middleware.RoleForeman: {
		AllowedDataTypes:    []string{"workers", "projects", "attendance", "assignments"},
		MaxComplexity:       "medium",
		CanAccessFinancials: false,
		AllowedPromptTypes:  []string{"query", "chat"},
		RestrictedWords:     []string{"salary", "payment", "budget", "cost", "payroll"},
	},
	middleware.RoleWorker: {
		AllowedDataTypes:    []string{"own_attendance", "own_payments"},
		MaxComplexity:       "low",
		AllowedPromptTypes:  []string{"query"},
		RestrictedWords:     []string{"salary", "payment", "budget", "cost", "payroll", "rate", "client", "expense", "admin"},
	},
	middleware.RoleGuest: {
		AllowedDataTypes:   []string{},
		MaxComplexity:      "none",
		AllowedPromptTypes: []string{},
		RestrictedWords:    []string{RestrictAll},
	},
}

// PolicyFor returns the prompt policy for a role. Unknown roles get the
// guest policy.
func PolicyFor(role middleware.Role) ContextPolicy {
	if p, ok := policies[role]; ok {
		return p
	}
	return policies[middleware.RoleGuest]
}

// FilterPrompt applies the role's denylist and, when the prompt passes,
// appends the machine-readable role context suffix that constrains the
// upstream model. Matching is a case-insensitive substring check, so it can
// over-block ("cost" inside "costume") on purpose.
func FilterPrompt(role middleware.Role, prompt string) (string, bool) {
	policy := PolicyFor(role)
	lowered := strings.ToLower(prompt)

	for _, word := range policy.RestrictedWords {
		if word == RestrictAll {
			return "", false
		}
		if strings.Contains(lowered, strings.ToLower(word)) {
			return "", false
		}
	}

	suffix := fmt.Sprintf("\n\n[role=%s allowed_data=%s complexity=%s]",
		role, strings.Join(policy.AllowedDataTypes, ","), policy.MaxComplexity)
	return prompt + suffix, true
}
