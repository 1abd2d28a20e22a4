package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLossyLoopbackDeliversReliablyAtZeroProbabilities(t *testing.T) {
	a := NewLossyLoopback(1, 0, 0, 0)
	b := NewLossyLoopback(2, 0, 0, 0)
	LinkLossyLoopback(a, b)

	var got [][]byte
	b.OutDataEvent().Subscribe(func(args ...interface{}) {
		data, _ := args[0].([]byte)
		got = append(got, data)
	})

	a.Write([]byte("one"))
	a.Write([]byte("two"))

	require.Equal(t, [][]byte{[]byte("one"), []byte("two")}, got)
}

func TestLossyLoopbackDropsEverythingAtProbabilityOne(t *testing.T) {
	a := NewLossyLoopback(1, 1, 0, 0)
	b := NewLossyLoopback(2, 1, 0, 0)
	LinkLossyLoopback(a, b)

	var got int
	b.OutDataEvent().Subscribe(func(...interface{}) { got++ })

	a.Write([]byte("one"))
	require.Equal(t, 0, got)
}

func TestLossyLoopbackDuplicatesAtProbabilityOne(t *testing.T) {
	a := NewLossyLoopback(1, 0, 0, 1)
	b := NewLossyLoopback(2, 0, 0, 1)
	LinkLossyLoopback(a, b)

	var got [][]byte
	b.OutDataEvent().Subscribe(func(args ...interface{}) {
		data, _ := args[0].([]byte)
		got = append(got, data)
	})

	a.Write([]byte("one"))
	require.Equal(t, [][]byte{[]byte("one"), []byte("one")}, got)
}

func TestLossyLoopbackInfoReportsUnreliable(t *testing.T) {
	a := NewLossyLoopback(1, 0, 0, 0)
	require.False(t, a.Info().IsReliable)
}
