// ABOUTME: Tests for the visitor profile gateway
// ABOUTME: Covers gating literals, phone normalization, and tag operations

package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitlink/chat-bridge/internal/chat"
)

func TestSetVisitorInfo_RequiresInitializedAccount(t *testing.T) {
	g, backend, _ := newTestGateway(t)

	_, err := g.SetVisitorInfo(VisitorInfoInput{Name: "A", Email: "a@x.com", PhoneNumber: "1"})
	assert.EqualError(t, err, "Account needs to be initialized first")
	assert.False(t, calledBackend(backend, "setVisitorInfo"))
}

func TestSetVisitorInfo_NormalizesPhoneNumber(t *testing.T) {
	g, backend, _ := initialized(t)

	res, err := g.SetVisitorInfo(VisitorInfoInput{Name: "A", Email: "a@x.com", PhoneNumber: "+1234567890"})
	require.NoError(t, err)
	value, err := res.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Successful", value)

	assert.Equal(t, "1234567890", backend.VisitorInfo().PhoneNumber)
	assert.True(t, g.IsVisitorInfoSet())
}

func TestSetVisitorInfo_BackendErrorLeavesFlagDown(t *testing.T) {
	g, backend, _ := initialized(t)
	backend.FailNext("setVisitorInfo", &chat.ErrorResponse{Code: "422", Message: "bad email"})

	res, err := g.SetVisitorInfo(VisitorInfoInput{Name: "A", Email: "nope", PhoneNumber: "1"})
	require.NoError(t, err)

	_, err = res.Await(context.Background())
	var backendErr *chat.ErrorResponse
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "422", backendErr.Code)
	assert.False(t, g.IsVisitorInfoSet())
}

func TestParseVisitorInfo(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		wantErr string
	}{
		{
			name:    "valid",
			payload: map[string]any{"name": "A", "email": "a@x.com", "phoneNumber": "+1"},
		},
		{
			name:    "missing phone",
			payload: map[string]any{"name": "A", "email": "a@x.com"},
			wantErr: "name, email & phoneNumber required",
		},
		{
			name:    "wrong type",
			payload: map[string]any{"name": 7, "email": "a@x.com", "phoneNumber": "+1"},
			wantErr: "name, email & phoneNumber required",
		},
		{
			name:    "empty name",
			payload: map[string]any{"name": "", "email": "a@x.com", "phoneNumber": "+1"},
			wantErr: "name, email & phoneNumber required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVisitorInfo(tt.payload)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestGetVisitorInfo(t *testing.T) {
	g, _, _ := initialized(t)

	_, err := g.GetVisitorInfo()
	assert.EqualError(t, err, "visitor info is not provided")

	g2, _, _ := withVisitor(t)
	info, err := g2.GetVisitorInfo()
	require.NoError(t, err)
	assert.Equal(t, "A", info["name"])
	assert.Equal(t, "1234567890", info["phoneNumber"])
}

func TestVisitorTags_RequireVisitorInfo(t *testing.T) {
	g, backend, _ := initialized(t)

	_, err := g.AddVisitorTags([]string{"vip"})
	assert.EqualError(t, err, "visitor info is not provided")

	_, err = g.RemoveVisitorTags([]string{"vip"})
	assert.EqualError(t, err, "visitor info is not provided")

	assert.False(t, calledBackend(backend, "addVisitorTags"))
	assert.False(t, calledBackend(backend, "removeVisitorTags"))
}

func TestVisitorTags_AddAndRemove(t *testing.T) {
	g, backend, _ := withVisitor(t)

	res, err := g.AddVisitorTags([]string{"vip", "beta"})
	require.NoError(t, err)
	_, err = res.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"vip", "beta"}, backend.Tags())

	res, err = g.RemoveVisitorTags([]string{"vip"})
	require.NoError(t, err)
	_, err = res.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, backend.Tags())
}

func TestParseTags(t *testing.T) {
	tags, err := ParseTags([]any{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)

	_, err = ParseTags([]any{})
	assert.EqualError(t, err, "tags required")

	_, err = ParseTags([]any{"a", 3})
	assert.EqualError(t, err, "tags required")

	_, err = ParseTags("not a list")
	assert.EqualError(t, err, "tags required")
}
