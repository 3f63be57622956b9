// Package hooks holds the pluggable validate/register callbacks invoked
// by the login-completion flow. Hooks are registered under a name and
// selected by configuration; resolution happens once at startup so an
// unresolvable identifier aborts boot instead of failing per request.
package hooks

import (
	"context"

	"onesocial-server/internal/account"
	"onesocial-server/internal/shared/errors"
	"onesocial-server/internal/user"
)

// ValidateResult is a concrete response artifact returned by a validate
// hook. A non-nil result halts the login flow and redirects the user;
// registration is deferred until an external step completes it.
type ValidateResult struct {
	RedirectURL string
}

// ValidateFunc inspects a freshly resolved, not-yet-registered account.
// Returning (nil, nil) lets registration proceed.
type ValidateFunc func(ctx context.Context, acct *account.Account, prof *account.Profile) (*ValidateResult, error)

// RegisterFunc maps a remote identity to a host user, existing or new.
type RegisterFunc func(ctx context.Context, acct *account.Account, prof *account.Profile) (*user.User, error)

type Registry struct {
	validators map[string]ValidateFunc
	registrars map[string]RegisterFunc
}

// NewRegistry builds the registry with the built-in hooks registered.
func NewRegistry(users *user.Service) *Registry {
	r := &Registry{
		validators: make(map[string]ValidateFunc),
		registrars: make(map[string]RegisterFunc),
	}

	r.AddValidate("noop", NoopValidate)
	r.AddValidate("confirm-username", ConfirmUsernameValidate)
	r.AddRegister("default", DefaultRegister(users))

	return r
}

func (r *Registry) AddValidate(name string, fn ValidateFunc) {
	r.validators[name] = fn
}

func (r *Registry) AddRegister(name string, fn RegisterFunc) {
	r.registrars[name] = fn
}

func (r *Registry) Validate(name string) (ValidateFunc, error) {
	fn, ok := r.validators[name]
	if !ok {
		return nil, errors.Validationf("unknown validate hook: %s", name)
	}
	return fn, nil
}

func (r *Registry) Register(name string) (RegisterFunc, error) {
	fn, ok := r.registrars[name]
	if !ok {
		return nil, errors.Validationf("unknown register hook: %s", name)
	}
	return fn, nil
}
