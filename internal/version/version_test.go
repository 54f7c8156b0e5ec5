package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, Version+" (commit: "+GitCommit+", built: "+BuildDate+")", String())

	oldVersion := Version
	t.Cleanup(func() { Version = oldVersion })
	Version = "v1.2.3"
	assert.Contains(t, String(), "v1.2.3 (commit: ")
}
