package domain

type SettingsKind string

const (
	SettingsSite         SettingsKind = "site"
	SettingsNotification SettingsKind = "notification"
	SettingsSecurity     SettingsKind = "security"
	SettingsUser         SettingsKind = "user"
)

var SettingsKinds = []SettingsKind{SettingsSite, SettingsNotification, SettingsSecurity, SettingsUser}

func (k SettingsKind) Valid() bool {
	for _, v := range SettingsKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Key returns the cache key for the settings object
func (k SettingsKind) Key() string {
	return SettingsPrefix + string(k)
}

type SiteSettings struct {
	StoreName      string `json:"storeName" mapstructure:"storeName"`
	Tagline        Text   `json:"tagline" mapstructure:"tagline"`
	WhatsAppNumber string `json:"whatsappNumber" mapstructure:"whatsappNumber"`
	Email          string `json:"email" mapstructure:"email"`
	Phone          string `json:"phone" mapstructure:"phone"`
	Address        string `json:"address" mapstructure:"address"`
	Currency       string `json:"currency" mapstructure:"currency"`
}

type NotificationSettings struct {
	EmailOnNewOrder     bool   `json:"emailOnNewOrder" mapstructure:"emailOnNewOrder"`
	EmailOnRegistration bool   `json:"emailOnRegistration" mapstructure:"emailOnRegistration"`
	AdminEmail          string `json:"adminEmail" mapstructure:"adminEmail"`
	LowStockThreshold   int    `json:"lowStockThreshold" mapstructure:"lowStockThreshold"`
}

type SecuritySettings struct {
	SessionTimeoutMinutes int  `json:"sessionTimeoutMinutes" mapstructure:"sessionTimeoutMinutes"`
	MaxLoginAttempts      int  `json:"maxLoginAttempts" mapstructure:"maxLoginAttempts"`
	RequireStrongPassword bool `json:"requireStrongPassword" mapstructure:"requireStrongPassword"`
}

type UserSettings struct {
	Language     string `json:"language" mapstructure:"language"`
	Theme        string `json:"theme" mapstructure:"theme"`
	ItemsPerPage int    `json:"itemsPerPage" mapstructure:"itemsPerPage"`
}

// DefaultSettings returns the initial settings objects
func DefaultSettings() map[SettingsKind]interface{} {
	return map[SettingsKind]interface{}{
		SettingsSite: SiteSettings{
			StoreName:      "Yammi Yami Diapers",
			Tagline:        Text{En: "Comfort for every stage", Sw: "Faraja kwa kila hatua"},
			WhatsAppNumber: "255754000000",
			Email:          "info@yammiyami.co.tz",
			Phone:          "+255 754 000 000",
			Address:        "Kariakoo, Dar es Salaam",
			Currency:       "TZS",
		},
		SettingsNotification: NotificationSettings{
			EmailOnNewOrder:     true,
			EmailOnRegistration: false,
			AdminEmail:          "admin@yammiyami.co.tz",
			LowStockThreshold:   20,
		},
		SettingsSecurity: SecuritySettings{
			SessionTimeoutMinutes: 60,
			MaxLoginAttempts:      5,
			RequireStrongPassword: true,
		},
		SettingsUser: UserSettings{
			Language:     "en",
			Theme:        "light",
			ItemsPerPage: 20,
		},
	}
}
