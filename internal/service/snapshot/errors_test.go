package snapshot

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(KindNetwork, nil))

	base := errors.New("disk full")
	err := Classify(KindFilesystem, base)
	assert.Equal(t, KindFilesystem, KindOf(err))
	assert.Equal(t, "filesystem error: disk full", err.Error())
	assert.True(t, errors.Is(err, base))
	assert.Equal(t, base, errors.Cause(err))

	// already classified errors keep their kind when wrapped further
	wrapped := Classify(KindNetwork, errors.Wrap(err, "run failed"))
	assert.Equal(t, KindFilesystem, KindOf(wrapped))

	assert.Equal(t, ErrorKind(""), KindOf(base))
}
