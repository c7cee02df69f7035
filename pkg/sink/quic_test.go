package sink

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevmo314/go-uvcstream/pkg/transfers"
)

func TestQUICLoopback(t *testing.T) {
	cert, err := SelfSigned(time.Hour)
	require.NoError(t, err)

	r, err := ListenQUIC("127.0.0.1:0", ServerTLS(cert), 1024)
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan transfers.Frame, 8)
	served := make(chan error, 1)
	go func() {
		served <- r.Serve(ctx, func(f transfers.Frame) error {
			received <- f
			return nil
		})
	}()

	clientTLS, err := ClientTLS(cert.FingerprintHex())
	require.NoError(t, err)
	s, err := DialQUIC(ctx, r.Addr().String(), clientTLS)
	require.NoError(t, err)

	for seq := uint64(0); seq < 3; seq++ {
		require.NoError(t, s.WriteFrame(transfers.Frame{Seq: seq, Data: []byte{byte(seq), 0xaa}}))
	}

	var got []transfers.Frame
	for len(got) < 3 {
		select {
		case f := <-received:
			got = append(got, f)
		case <-ctx.Done():
			t.Fatalf("received %d of 3 frames", len(got))
		}
	}
	sort.Slice(got, func(i, j int) bool { return got[i].Seq < got[j].Seq })
	for i, f := range got {
		assert.Equal(t, uint64(i), f.Seq)
		assert.Equal(t, []byte{byte(i), 0xaa}, f.Data)
	}

	require.NoError(t, s.Close())
	cancel()
	assert.NoError(t, <-served)
}

func TestQUICRejectsWrongFingerprint(t *testing.T) {
	cert, err := SelfSigned(time.Hour)
	require.NoError(t, err)
	other, err := SelfSigned(time.Hour)
	require.NoError(t, err)

	r, err := ListenQUIC("127.0.0.1:0", ServerTLS(cert), 0)
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go r.Serve(ctx, func(transfers.Frame) error { return nil })

	clientTLS, err := ClientTLS(other.FingerprintHex())
	require.NoError(t, err)
	_, err = DialQUIC(ctx, r.Addr().String(), clientTLS)
	assert.Error(t, err)
}

func TestClientTLSValidatesFingerprint(t *testing.T) {
	_, err := ClientTLS("zz")
	assert.Error(t, err)
	_, err = ClientTLS("abcd")
	assert.Error(t, err)
}
