package progress

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/assetgraph/internal/testutil"
)

type recordingSink struct {
	updates  []float64
	closeErr error
}

func (r *recordingSink) Report(_ string, p float64) { r.updates = append(r.updates, p) }
func (r *recordingSink) Close() error               { return r.closeErr }

func TestMulti(t *testing.T) {
	ctx, logs := testutil.Context(t)
	a := &recordingSink{}
	b := &recordingSink{closeErr: errors.New("b failed")}
	m := Multi{NewLog(ctx), a, b}

	m.Report("n1", 0)
	m.Report("n1", 1)

	assert.Equal(t, []float64{0, 1}, a.updates)
	assert.Equal(t, []float64{0, 1}, b.updates)
	assert.Contains(t, logs.String(), "Node finished.")
	assert.ErrorContains(t, m.Close(), "b failed")
}

func TestDial_InvalidURL(t *testing.T) {
	ctx, _ := testutil.Context(t)
	_, err := Dial(ctx, SocketIOOptions{URL: "not a url"})
	require.Error(t, err)
}
