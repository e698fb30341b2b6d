package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveybuddy/internal/config"
)

// chunkReader delivers the stream in fixed pieces to simulate network framing
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n == len(r.chunks[0]) {
		r.chunks = r.chunks[1:]
	} else {
		r.chunks[0] = r.chunks[0][n:]
	}
	return n, nil
}

func TestConsumeStreamSplitAtEveryByteBoundary(t *testing.T) {
	stream := "data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\ndata: [DONE]\n"

	for split := 1; split < len(stream); split++ {
		r := &chunkReader{chunks: [][]byte{
			[]byte(stream[:split]),
			[]byte(stream[split:]),
		}}

		var got []string
		err := consumeStream(r, func(delta string) { got = append(got, delta) })

		require.NoError(t, err, "split at byte %d", split)
		require.Equal(t, []string{"Hello"}, got, "split at byte %d", split)
	}
}

func TestConsumeStreamSkipsMalformedFrame(t *testing.T) {
	stream := "data: {not json\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n" +
		"data: [DONE]\n"

	var got []string
	err := consumeStream(&chunkReader{chunks: [][]byte{[]byte(stream)}}, func(delta string) {
		got = append(got, delta)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, got)
}

func TestConsumeStreamIgnoresNonDataLines(t *testing.T) {
	stream := ": keepalive\n" +
		"event: message\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n" +
		"data: \n" +
		"data: [DONE]\n"

	var got []string
	err := consumeStream(&chunkReader{chunks: [][]byte{[]byte(stream)}}, func(delta string) {
		got = append(got, delta)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

func TestConsumeStreamStopsAtDoneMarker(t *testing.T) {
	stream := "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n" +
		"data: [DONE]\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"after\"}}]}\n"

	var got []string
	err := consumeStream(&chunkReader{chunks: [][]byte{[]byte(stream)}}, func(delta string) {
		got = append(got, delta)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got)
}

func testClient(baseURL string) *LLMClient {
	return NewLLMClientWithConfig(&config.AIConfig{
		APIKey:    "test-key",
		BaseURL:   baseURL,
		Model:     "openai/gpt-4o-mini",
		TimeoutMS: 5000,
	})
}

func TestStreamChatDeliversDeltasInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, piece := range []string{"Hel", "lo", " there"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", piece)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	deltas, errc := testClient(srv.URL).StreamChat(context.Background(), []ChatRequestMessage{
		{Role: "user", Content: "hi"},
	})

	var got string
	for delta := range deltas {
		got += delta
	}
	require.NoError(t, <-errc)
	assert.Equal(t, "Hello there", got)
}

func TestStreamChatNonSuccessIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusPaymentRequired)
	}))
	defer srv.Close()

	deltas, errc := testClient(srv.URL).StreamChat(context.Background(), nil)

	var got []string
	for delta := range deltas {
		got = append(got, delta)
	}
	err := <-errc
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")
	assert.Empty(t, got)
}
