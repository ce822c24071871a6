package wire_test

import (
	"net"
	"sync"
	"testing"

	"github.com/katalvlaran/stakesearch/matrix"
	"github.com/katalvlaran/stakesearch/tsp"
	"github.com/katalvlaran/stakesearch/wire"
	"github.com/stretchr/testify/require"
)

func table(t *testing.T, v float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom([][]float64{{0, v}, {v, 0}})
	require.NoError(t, err)

	return m
}

func TestMarshal_Frames(t *testing.T) {
	b, err := wire.Marshal(wire.Continue{Round: 3, Seeds: []tsp.Solution{{0, 2, 1}}})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"continue","body":{"round":3,"seeds":[[0,2,1]]}}`, string(b))

	b, err = wire.Marshal(wire.Stop{})
	require.NoError(t, err)
	msg, err := wire.Unmarshal(b)
	require.NoError(t, err)
	require.Equal(t, wire.Stop{}, msg)

	_, err = wire.Marshal(nil)
	require.ErrorIs(t, err, wire.ErrProtocolViolation)
}

func TestUnmarshal_Init(t *testing.T) {
	in := wire.Init{
		NormDistance: table(t, 1), NormTime: table(t, 1),
		Distance: table(t, 5), Time: table(t, 7), Coordinator: table(t, 1),
	}
	b, err := wire.Marshal(in)
	require.NoError(t, err)
	msg, err := wire.Unmarshal(b)
	require.NoError(t, err)
	got, ok := msg.(wire.Init)
	require.True(t, ok)
	require.Equal(t, [][]float64{{0, 7}, {7, 0}}, got.Time.ToRows())

	in.Coordinator = nil
	b, err = wire.Marshal(in)
	require.NoError(t, err)
	_, err = wire.Unmarshal(b)
	require.ErrorIs(t, err, wire.ErrProtocolViolation)
}

func TestUnmarshal_Violations(t *testing.T) {
	for name, frame := range map[string]string{
		"not json":     `hello`,
		"unknown type": `{"type":"gossip","body":{}}`,
		"missing body": `{"type":"result"}`,
		"bad body":     `{"type":"result","body":{"round":"x"}}`,
		"ragged init":  `{"type":"init","body":{"norm_distance":[[0,1],[1]]}}`,
	} {
		_, err := wire.Unmarshal([]byte(frame))
		require.ErrorIs(t, err, wire.ErrProtocolViolation, name)
	}
}

func TestDirections(t *testing.T) {
	for _, m := range []wire.Message{wire.Init{}, wire.Continue{}, wire.RequestResult{}, wire.Stop{}} {
		require.True(t, wire.ToStakeholder(m), m.Kind())
		require.False(t, wire.ToCoordinator(m), m.Kind())
	}
	for _, m := range []wire.Message{wire.Hello{}, wire.Result{}, wire.Withdraw{}} {
		require.True(t, wire.ToCoordinator(m), m.Kind())
		require.False(t, wire.ToStakeholder(m), m.Kind())
	}
}

func TestConn_SendReceive(t *testing.T) {
	a, b := net.Pipe()
	ca, cb := wire.NewConn(a), wire.NewConn(b)
	defer ca.Close()

	const senders = 8
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(round int) {
			defer wg.Done()
			_ = ca.Send(wire.Result{Round: round, Solution: tsp.Solution{1, 0}})
		}(i)
	}

	seen := map[int]bool{}
	for i := 0; i < senders; i++ {
		msg, err := cb.Receive()
		require.NoError(t, err)
		res, ok := msg.(wire.Result)
		require.True(t, ok)
		require.Equal(t, tsp.Solution{1, 0}, res.Solution)
		seen[res.Round] = true
	}
	wg.Wait()
	require.Len(t, seen, senders)

	require.NoError(t, cb.Close())
	_, err := ca.Receive()
	require.ErrorIs(t, err, wire.ErrChannelClosed)
	require.ErrorIs(t, ca.Send(wire.Stop{}), wire.ErrChannelClosed)
}

func TestConn_LargeFrame(t *testing.T) {
	a, b := net.Pipe()
	ca, cb := wire.NewConn(a), wire.NewConn(b)
	defer ca.Close()
	defer cb.Close()

	const n = 150
	seed := make(tsp.Solution, n)
	for i := range seed {
		seed[i] = n - 1 - i
	}
	seeds := make([]tsp.Solution, 400) // > 64 KiB, spans several buffer fills
	for i := range seeds {
		seeds[i] = seed
	}
	go func() { _ = ca.Send(wire.Continue{Round: 1, Seeds: seeds}) }()

	msg, err := cb.Receive()
	require.NoError(t, err)
	cont, ok := msg.(wire.Continue)
	require.True(t, ok)
	require.Len(t, cont.Seeds, 400)
	require.Equal(t, seed, cont.Seeds[399])
}
