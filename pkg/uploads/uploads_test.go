package uploads

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoredNameKeepsExtensionOnly(t *testing.T) {
	name := storedName("пояснительная записка.pdf")
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.NotContains(t, name, "пояснительная")
}

func TestStoredNameUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		name := storedName("отчет.docx")
		assert.False(t, seen[name], "collision: %s", name)
		seen[name] = true
	}
}

func TestStoredNameNoExtension(t *testing.T) {
	name := storedName("README")
	assert.NotContains(t, name, ".")
}
