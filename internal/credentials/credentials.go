// Package credentials resolves publish secrets from a local env-file store,
// falling back to the process environment.
package credentials

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
)

// Source names where a resolved value came from.
type Source string

const (
	SourceEnvFile     Source = "env-file"
	SourceEnvironment Source = "environment"
)

// Store is a read-only key/value lookup.
type Store interface {
	Lookup(key string) (string, bool)
}

// MapStore is a Store backed by a map. It is what an env file parses into.
type MapStore map[string]string

// Lookup implements Store. Empty values count as present.
func (m MapStore) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// EnvironmentStore reads the process environment.
type EnvironmentStore struct{}

// Lookup implements Store.
func (EnvironmentStore) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// LoadEnvFile parses a dotenv file. A missing file yields an empty store.
func LoadEnvFile(path string) (MapStore, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			slog.Debug("Secret store not found, using environment only", logfields.Path(path))
			return MapStore{}, nil
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse env file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	slog.Debug("Loaded secret store", logfields.Path(path), logfields.Count(len(values)))
	return MapStore(values), nil
}

// Resolver performs the two-tier lookup: store first, environment second.
type Resolver struct {
	store Store
	env   Store
}

// NewResolver creates a resolver over store and the process environment.
func NewResolver(store Store) *Resolver {
	return NewResolverWithEnvironment(store, EnvironmentStore{})
}

// NewResolverWithEnvironment allows replacing the environment (for tests).
func NewResolverWithEnvironment(store, env Store) *Resolver {
	if store == nil {
		store = MapStore{}
	}
	if env == nil {
		env = MapStore{}
	}
	return &Resolver{store: store, env: env}
}

// Resolve returns the value for key and where it was found.
func (r *Resolver) Resolve(key string) (string, Source, bool) {
	if v, ok := r.store.Lookup(key); ok {
		return v, SourceEnvFile, true
	}
	if v, ok := r.env.Lookup(key); ok {
		return v, SourceEnvironment, true
	}
	return "", "", false
}

// Get returns the resolved value or the empty string.
func (r *Resolver) Get(key string) string {
	v, _, _ := r.Resolve(key)
	return v
}

// Credentials is a username/password pair.
type Credentials struct {
	Username string
	Password string
}

// Pair resolves a username/password pair. Missing keys yield an auth error
// listing every absent key.
func (r *Resolver) Pair(usernameKey, passwordKey string) (Credentials, error) {
	var missing []string
	user, userSrc, ok := r.Resolve(usernameKey)
	if !ok {
		missing = append(missing, usernameKey)
	}
	pass, passSrc, ok := r.Resolve(passwordKey)
	if !ok {
		missing = append(missing, passwordKey)
	}
	if len(missing) > 0 {
		return Credentials{}, errors.AuthError("publish credentials not found in env file or environment").
			WithContext("missing", strings.Join(missing, ",")).
			Build()
	}
	slog.Debug("Resolved credentials",
		logfields.Key(usernameKey), logfields.Source(string(userSrc)),
		slog.String("password_source", string(passSrc)))
	return Credentials{Username: user, Password: pass}, nil
}
