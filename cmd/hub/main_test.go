package main

import (
	"context"
	"errors"
	"testing"

	"lostwatch/internal/notify"
	"lostwatch/pkg/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRoutesByOp(t *testing.T) {
	var got []protocol.Notice
	h := NewHub(notify.Func(func(_ context.Context, n protocol.Notice) error {
		got = append(got, n)
		return nil
	}))

	n := protocol.NewMatchNotice("a@x.com", "A1", "", "b@x.com", "a@x.com")
	require.NoError(t, h.Notify(context.Background(), n))
	require.Len(t, got, 1)
	assert.Equal(t, n.ID, got[0].ID)

	n.Op = "resync"
	assert.Error(t, h.Notify(context.Background(), n))
	assert.Len(t, got, 1)
}

func TestHubPassesDeliveryErrors(t *testing.T) {
	boom := errors.New("smtp down")
	h := NewHub(notify.Func(func(context.Context, protocol.Notice) error { return boom }))
	err := h.Notify(context.Background(), protocol.NewMatchNotice("a@x.com", "A1", "", "b@x.com", "a@x.com"))
	assert.ErrorIs(t, err, boom)
}
