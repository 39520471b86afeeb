package repository

import (
	"strings"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/store"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Backend string

const (
	BackendLocal    Backend = "local"
	BackendDatabase Backend = "database"
	BackendRemote   Backend = "remote"
)

func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "local", "cache":
		return BackendLocal, nil
	case "database", "db":
		return BackendDatabase, nil
	case "remote", "api":
		return BackendRemote, nil
	}
	return "", errors.Errorf("unknown repository backend: %s", s)
}

// Deps carries what each backend needs; only the selected backend's fields are read
type Deps struct {
	Store         *store.Store
	DB            *gorm.DB
	RemoteURL     string
	RemoteToken   string
	RemoteTimeout time.Duration
	Now           func() time.Time
}

// New builds the repository set for one backend
func New(b Backend, d Deps) (*Set, error) {
	switch b {
	case BackendLocal, "":
		if d.Store == nil {
			return nil, errors.New("local backend requires a store")
		}
		return NewLocal(d.Store), nil
	case BackendDatabase:
		if d.DB == nil {
			return nil, errors.New("database backend requires a gorm connection")
		}
		return NewDatabase(d.DB, d.Now), nil
	case BackendRemote:
		if d.RemoteURL == "" {
			return nil, errors.New("remote backend requires remote_url")
		}
		return NewRemoteSet(NewRemote(d.RemoteURL, d.RemoteToken, d.RemoteTimeout)), nil
	}
	return nil, errors.Errorf("unknown repository backend: %s", b)
}
