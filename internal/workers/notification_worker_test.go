package workers

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePair(t *testing.T) {
	recipient := uuid.New()
	sender := uuid.New()

	gotRecipient, gotSender, err := parsePair(recipient.String(), sender.String())
	require.NoError(t, err)
	assert.Equal(t, recipient, gotRecipient)
	assert.Equal(t, sender, gotSender)

	_, _, err = parsePair("not-a-uuid", sender.String())
	assert.Error(t, err)

	_, _, err = parsePair(recipient.String(), "not-a-uuid")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 80))
	assert.Equal(t, strings.Repeat("a", 80)+"...", truncate(strings.Repeat("a", 81), 80))

	// Truncation runs on runes so multibyte text is never split.
	assert.Equal(t, "नमस्ते...", truncate("नमस्ते दुनिया", 6))
}
