package registry

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porterbot/porter/pkg/entities"
)

func TestRenderChannelName(t *testing.T) {
	now := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		preset string
		want   string
	}{
		{
			name:   "user and id",
			preset: "ticket-{user}-{userid}",
			want:   "ticket-alice-12345",
		},
		{
			name:   "date parts",
			preset: "{year}-{month}-{day}-{hour}-{minute}",
			want:   "2024-3-5-14-30",
		},
		{
			name:   "names",
			preset: "{day_name}-{month_name}",
			want:   "Tuesday-March",
		},
		{
			name:   "no placeholders",
			preset: "support",
			want:   "support",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderChannelName(tt.preset, "alice", "12345", now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderChannelNameRandom(t *testing.T) {
	got := RenderChannelName("ticket-{random}", "alice", "12345", time.Now())
	assert.Regexp(t, regexp.MustCompile(`^ticket-\d{6}$`), got)
}

func TestRenderChannelNameTruncates(t *testing.T) {
	preset := strings.Repeat("x", 40) + "-{user}"
	got := RenderChannelName(preset, strings.Repeat("y", 200), "1", time.Now())
	assert.Len(t, []rune(got), ChannelNameLimit)
}

func TestRenderOpenMessage(t *testing.T) {
	cfg := &entities.TicketingConfig{
		OpenMessage: "Hello {mention}, aka {username} ({id}).",
	}
	got := RenderOpenMessage(cfg, "<@1>", "alice", "1")
	assert.Equal(t, "Hello <@1>, aka alice (1).", got)
}

func TestRenderOpenMessageDefault(t *testing.T) {
	cfg := &entities.TicketingConfig{
		OpenMessage:    entities.DefaultOpenMessage,
		MemberCanClose: true,
	}
	got := RenderOpenMessage(cfg, "<@1>", "alice", "1")
	assert.Contains(t, got, "alice")
	assert.Contains(t, got, "/ticket close")

	cfg.MemberCanClose = false
	staffOnly := RenderOpenMessage(cfg, "<@1>", "alice", "1")
	assert.Contains(t, staffOnly, "Staff:")
	assert.NotEqual(t, got, staffOnly)
}

func TestPresetLifecycle(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	// The default preset occupies index 0.
	idx, err := r.AddPreset(ctx, "g1", "help-{user}")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = r.AddPreset(ctx, "g1", "issue-{random}")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	// The chosen preset cannot be removed.
	assert.ErrorIs(t, r.RemovePreset(ctx, "g1", 0), ErrPresetChosen)

	require.NoError(t, r.SelectPreset(ctx, "g1", 2))
	assert.ErrorIs(t, r.SelectPreset(ctx, "g1", 2), ErrPresetAlreadyChosen)

	// Removing a preset before the chosen one shifts the index so the same
	// preset stays selected.
	require.NoError(t, r.RemovePreset(ctx, "g1", 0))
	p := store.guilds["g1"].Ticketing.NamePresets
	assert.Equal(t, []string{"help-{user}", "issue-{random}"}, p.Presets)
	assert.Equal(t, 1, p.Chosen)
	assert.Equal(t, "issue-{random}", p.Presets[p.Chosen])

	assert.ErrorIs(t, r.RemovePreset(ctx, "g1", 5), ErrPresetIndex)
	assert.ErrorIs(t, r.SelectPreset(ctx, "g1", -1), ErrPresetIndex)
}
