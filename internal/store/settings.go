package store

import (
	"context"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Settings returns the stored settings object for kind, seeding defaults when absent
func (s *Store) Settings(ctx context.Context, kind domain.SettingsKind) (map[string]interface{}, error) {
	if !kind.Valid() {
		return nil, domain.NewNotFound("settings", kind)
	}
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	return s.settingsLocked(ctx, kind)
}

func (s *Store) settingsLocked(ctx context.Context, kind domain.SettingsKind) (map[string]interface{}, error) {
	raw, found, err := s.cache.Get(ctx, kind.Key())
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err == nil && found {
		var values map[string]interface{}
		if err := json.UnmarshalFromString(raw, &values); err == nil && values != nil {
			return values, nil
		}
		zap.L().Warn("malformed settings, using defaults",
			zap.String("namespace", "store"), zap.String("kind", string(kind)))
	}
	values, err := toMap(domain.DefaultSettings()[kind])
	if err != nil {
		return nil, err
	}
	if err := s.writeSettings(ctx, kind, values); err != nil {
		return nil, err
	}
	return values, nil
}

// SaveSettings merges patch into the stored settings. Values are coerced to the
// typed settings struct, so "true" or "20" from a form are accepted.
func (s *Store) SaveSettings(ctx context.Context, kind domain.SettingsKind, patch map[string]interface{}) (map[string]interface{}, error) {
	if !kind.Valid() {
		return nil, domain.NewNotFound("settings", kind)
	}
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	current, err := s.settingsLocked(ctx, kind)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		current[k] = v
	}
	typed := typedSettings(kind)
	if err := decodeSettings(current, typed); err != nil {
		return nil, errors.Wrapf(err, "decode %s settings", kind)
	}
	values, err := toMap(typed)
	if err != nil {
		return nil, err
	}
	if err := s.writeSettings(ctx, kind, values); err != nil {
		return nil, err
	}
	return values, nil
}

func (s *Store) writeSettings(ctx context.Context, kind domain.SettingsKind, values map[string]interface{}) error {
	raw, err := json.MarshalToString(values)
	if err != nil {
		return errors.Wrapf(err, "encode %s settings", kind)
	}
	if err := s.cache.Set(ctx, kind.Key(), raw); err != nil {
		zap.L().Error("settings write failed", zap.String("namespace", "store"), zap.String("kind", string(kind)), zap.Error(err))
		return errors.Wrapf(err, "write %s settings", kind)
	}
	return nil
}

func (s *Store) SiteSettings(ctx context.Context) (domain.SiteSettings, error) {
	var out domain.SiteSettings
	err := s.decodeKind(ctx, domain.SettingsSite, &out)
	return out, err
}

func (s *Store) NotificationSettings(ctx context.Context) (domain.NotificationSettings, error) {
	var out domain.NotificationSettings
	err := s.decodeKind(ctx, domain.SettingsNotification, &out)
	return out, err
}

func (s *Store) decodeKind(ctx context.Context, kind domain.SettingsKind, out interface{}) error {
	values, err := s.Settings(ctx, kind)
	if err != nil {
		return err
	}
	return errors.Wrapf(decodeSettings(values, out), "decode %s settings", kind)
}

func typedSettings(kind domain.SettingsKind) interface{} {
	switch kind {
	case domain.SettingsSite:
		return &domain.SiteSettings{}
	case domain.SettingsNotification:
		return &domain.NotificationSettings{}
	case domain.SettingsSecurity:
		return &domain.SecuritySettings{}
	default:
		return &domain.UserSettings{}
	}
}

func decodeSettings(in map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// toMap round-trips v through JSON so stored keys follow the json tags
func toMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode settings")
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decode settings")
	}
	return out, nil
}
