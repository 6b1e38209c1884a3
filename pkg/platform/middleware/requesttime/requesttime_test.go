package requesttime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"benefits-bff/pkg/requestcontext"
)

func TestWithClockPinsRequestTime(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	var got []time.Time

	h := WithClock(func() time.Time { return fixed })(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = append(got, requestcontext.Now(r.Context()), requestcontext.Now(r.Context()))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, got, 2)
	assert.Equal(t, got[0], got[1])
	assert.True(t, got[0].Equal(fixed))
	assert.Equal(t, time.UTC, got[0].Location())
}
