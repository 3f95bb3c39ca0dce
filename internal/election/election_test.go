package election

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElect(t *testing.T) {
	id, ok := Elect([]string{"c-9", "c-10", "c-2"})
	require.True(t, ok)
	assert.Equal(t, "c-10", id, "ids compare as strings")

	_, ok = Elect(nil)
	assert.False(t, ok)
	_, ok = Elect([]string{""})
	assert.False(t, ok)

	a, _ := Elect([]string{"b", "a", "c"})
	b, _ := Elect([]string{"c", "b", "a"})
	assert.Equal(t, a, b, "order of the membership set must not matter")
}

func TestTracker_ReelectsOnEveryChange(t *testing.T) {
	tr := NewTracker()

	c, changed := tr.Join("m")
	assert.Equal(t, "m", c)
	assert.True(t, changed)

	c, changed = tr.Join("z")
	assert.Equal(t, "m", c)
	assert.False(t, changed)

	c, changed = tr.Join("a")
	assert.Equal(t, "a", c)
	assert.True(t, changed, "a lower id takes over")
	assert.True(t, tr.IsController("a"))
	assert.False(t, tr.IsController("m"))

	c, changed = tr.Leave("a")
	assert.Equal(t, "m", c)
	assert.True(t, changed)
	assert.Equal(t, []string{"m", "z"}, tr.Members())

	tr.Leave("m")
	tr.Leave("z")
	_, ok := tr.Controller()
	assert.False(t, ok)
	assert.Equal(t, 0, tr.Len())
}

func TestTracker_RepeatedJoinsNeedMatchingLeaves(t *testing.T) {
	tr := NewTracker()
	tr.Join("a")
	tr.Join("a")
	tr.Leave("a")
	assert.True(t, tr.IsController("a"))
	tr.Leave("a")
	assert.False(t, tr.IsController("a"))

	_, changed := tr.Leave("ghost")
	assert.False(t, changed)
}

func TestExpired(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, Expired(start, start.Add(59*time.Second), time.Minute))
	assert.True(t, Expired(start, start.Add(time.Minute), time.Minute))
	assert.False(t, Expired(start, start.Add(time.Hour), 0))
	assert.False(t, Expired(time.Time{}, start, time.Minute))
}
