package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type object struct {
	value int
}

func TestPool(t *testing.T) {
	p := New(
		func() *object { return &object{} },
		func(o *object) { o.value = 0 },
		func(o *object) {},
	)

	a := p.Get()
	b := p.Get()
	require.Equal(t, int64(2), p.InUse())

	a.value = 42
	p.Put(a, nil)
	require.Equal(t, int64(1), p.InUse())
	require.Zero(t, a.value)

	p.Put(b)
	require.Zero(t, p.InUse())
}
