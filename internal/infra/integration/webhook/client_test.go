package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

func forwarded() entity.ForwardedLead {
	lead := &entity.Lead{
		ID:         "9f1c2d3e-0000-4000-8000-000000000001",
		FirstName:  "Jane",
		LastName:   "Doe",
		Email:      "jane@example.com",
		Phone:      "6045551234",
		BuyerType:  entity.BuyerInvestor,
		LeadSource: entity.SourceGoogle,
		Status:     entity.StatusNew,
		CreatedAt:  time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	return entity.NewForwardedLead(lead, entity.EventLeadCreated, "presale-site")
}

func TestForwardPostsSnakeCasePayload(t *testing.T) {
	var (
		gotKey  string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Forward(context.Background(), forwarded())

	require.NoError(t, err)
	assert.Equal(t, "lead:9f1c2d3e-0000-4000-8000-000000000001", gotKey)
	assert.Equal(t, gotKey, gotBody["idempotency_key"])
	assert.Equal(t, "presale-site", gotBody["source"])
	assert.Equal(t, "jane@example.com", gotBody["email"])
	assert.Equal(t, "investor", gotBody["buyer_type"])
	assert.NotContains(t, gotBody, "utm_source")
}

func TestForwardNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Forward(context.Background(), forwarded())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestForwardHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server watches the connection and cancels r.Context()
		// when the client gives up; otherwise srv.Close() blocks on this handler.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewClient(srv.URL, nil).Forward(ctx, forwarded())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
