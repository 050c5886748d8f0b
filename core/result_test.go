package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, StatusCompleted, Classify(4, 0))
	assert.Equal(t, StatusPartial, Classify(3, 1))
	assert.Equal(t, StatusFailed, Classify(0, 4))
	// No subtasks at all counts as completed: nothing failed.
	assert.Equal(t, StatusCompleted, Classify(0, 0))
}
