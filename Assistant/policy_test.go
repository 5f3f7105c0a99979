package Assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"Mason/middleware"
)

func TestFilterPromptAdminPasses(t *testing.T) {
	prompt, ok := FilterPrompt(middleware.RoleAdmin, "Summarize last month's payroll and budget")
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(prompt, "Summarize last month's payroll and budget"))
	assert.Contains(t, prompt, "[role=admin")
	assert.Contains(t, prompt, "complexity=high")
}

func TestFilterPromptForemanBlocksFinancialTerms(t *testing.T) {
	for _, blocked := range []string{
		"what is Ahmed's salary",
		"show me the project BUDGET",
		"how much did the payment cost",
	} {
		_, ok := FilterPrompt(middleware.RoleForeman, blocked)
		assert.False(t, ok, "prompt should be rejected: %q", blocked)
	}

	prompt, ok := FilterPrompt(middleware.RoleForeman, "who is assigned to the villa project")
	assert.True(t, ok)
	assert.Contains(t, prompt, "[role=foreman")
}

func TestFilterPromptSubstringOverBlocks(t *testing.T) {
	// "cost" inside "costume" still trips the denylist
	_, ok := FilterPrompt(middleware.RoleForeman, "order costumes for the site party")
	assert.False(t, ok)
}

func TestFilterPromptGuestRejectsEverything(t *testing.T) {
	for _, prompt := range []string{"hello", "what time is it", ""} {
		_, ok := FilterPrompt(middleware.RoleGuest, prompt)
		assert.False(t, ok)
	}
}

func TestFilterPromptUnknownRoleGetsGuestPolicy(t *testing.T) {
	_, ok := FilterPrompt(middleware.Role("superuser"), "hello")
	assert.False(t, ok)
}

func TestPolicyForRoles(t *testing.T) {
	admin := PolicyFor(middleware.RoleAdmin)
	assert.True(t, admin.CanAccessFinancials)
	assert.Empty(t, admin.RestrictedWords)

	worker := PolicyFor(middleware.RoleWorker)
	assert.False(t, worker.CanAccessFinancials)
	assert.Contains(t, worker.AllowedDataTypes, "own_attendance")

	guest := PolicyFor(middleware.RoleGuest)
	assert.Equal(t, []string{RestrictAll}, guest.RestrictedWords)
}
