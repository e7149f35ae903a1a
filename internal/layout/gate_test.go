package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soup_web/internal/layout"
)

func TestGate_NotifiesOnlyOnFlip(t *testing.T) {
	bps := layout.DefaultBreakpoints()
	var changes []bool
	g := layout.NewGate("mobile", bps, layout.At("sm"), layout.GateOptions{
		OnChange: func(v bool) { changes = append(changes, v) },
	})

	for w := 300; w <= 760; w += 20 {
		g.Update(w)
	}
	for w := 800; w <= 1400; w += 50 {
		g.Update(w)
	}
	g.Update(500)

	assert.Equal(t, []bool{true, false, true}, changes)
}

func TestGate_FirstUpdateReportsChange(t *testing.T) {
	g := layout.NewGate("desktop", layout.DefaultBreakpoints(), layout.GreaterThan("sm"), layout.GateOptions{})

	visible, changed := g.Update(400)
	assert.False(t, visible)
	assert.True(t, changed)

	visible, changed = g.Update(500)
	assert.False(t, visible)
	assert.False(t, changed)
}

func TestGate_DynamicReleasesOnHide(t *testing.T) {
	listeners := layout.NewListeners()
	mounts := 0
	g := layout.NewGate("mobile", layout.DefaultBreakpoints(), layout.At("sm"), layout.GateOptions{
		Mode: layout.GateDynamic,
		Mount: func(s *layout.Scope) {
			mounts++
			s.Acquire("resize", listeners.Add(layout.EventResize, func(layout.Event) {}))
		},
	})

	g.Update(400)
	require.True(t, g.Mounted())
	assert.Equal(t, 1, listeners.Len(layout.EventResize))

	g.Update(900)
	assert.False(t, g.Mounted())
	assert.Equal(t, 0, listeners.Len(layout.EventResize))

	g.Update(300)
	assert.True(t, g.Mounted())
	assert.Equal(t, 2, mounts)

	require.NoError(t, g.Close())
	assert.Equal(t, 0, listeners.Len(layout.EventResize))
}

func TestGate_KeepMounted(t *testing.T) {
	mounts := 0
	g := layout.NewGate("sidebar", layout.DefaultBreakpoints(), layout.GreaterThan("sm"), layout.GateOptions{
		Mode:  layout.GateKeepMounted,
		Mount: func(*layout.Scope) { mounts++ },
	})

	g.Update(400)
	assert.True(t, g.Mounted())
	assert.False(t, g.Visible())

	g.Update(1000)
	g.Update(400)
	assert.True(t, g.Mounted())
	assert.Equal(t, 1, mounts)
}

func TestScope_ReleasesLIFOOnce(t *testing.T) {
	var order []string
	s := layout.NewScope("test")
	s.Acquire("a", func() { order = append(order, "a") })
	s.Acquire("b", func() { order = append(order, "b") })
	s.Acquire("c", func() { order = append(order, "c") })
	assert.Equal(t, 3, s.Len())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, []string{"c", "b", "a"}, order)
	assert.True(t, s.Closed())

	s.Acquire("late", func() { order = append(order, "late") })
	assert.Equal(t, []string{"c", "b", "a", "late"}, order)
}

func TestScope_PanicDoesNotSkipOthers(t *testing.T) {
	released := false
	s := layout.NewScope("test")
	s.Acquire("ok", func() { released = true })
	s.Acquire("bad", func() { panic("boom") })

	err := s.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "release bad: boom")
	assert.True(t, released)
}
