package store

import (
	"context"
	"testing"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/kvcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsDefaultsAndSave(t *testing.T) {
	ctx := context.Background()
	cache := kvcache.NewMemory()
	s := newTestStore(t, cache)

	site, err := s.SiteSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Yammi Yami Diapers", site.StoreName)
	assert.Equal(t, "Faraja kwa kila hatua", site.Tagline.Sw)

	_, ok, _ := cache.Get(ctx, "settings:site")
	assert.True(t, ok)

	values, err := s.SaveSettings(ctx, domain.SettingsNotification, map[string]interface{}{
		"emailOnRegistration": "true",
		"lowStockThreshold":   "35",
	})
	require.NoError(t, err)
	assert.Equal(t, true, values["emailOnRegistration"])

	n, err := newTestStore(t, cache).NotificationSettings(ctx)
	require.NoError(t, err)
	assert.True(t, n.EmailOnRegistration)
	assert.Equal(t, 35, n.LowStockThreshold)
	assert.Equal(t, "admin@yammiyami.co.tz", n.AdminEmail)
}

func TestSettingsUnknownKind(t *testing.T) {
	_, err := newTestStore(t, kvcache.NewMemory()).Settings(context.Background(), "billing")
	assert.True(t, domain.IsNotFound(err))
}

func TestSettingsMalformedUsesDefaults(t *testing.T) {
	ctx := context.Background()
	cache := kvcache.NewMemory()
	require.NoError(t, cache.Set(ctx, "settings:user", "[oops"))
	values, err := newTestStore(t, cache).Settings(ctx, domain.SettingsUser)
	require.NoError(t, err)
	assert.Equal(t, "en", values["language"])
}
