// Package registrar provisions the named SWML handler this agent answers on
// and keeps the resulting address for the token endpoint.
package registrar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/gift-concierge/pkg/fabric"
)

var (
	// ErrProvisioningConflict means another worker created the handler first.
	ErrProvisioningConflict = errors.New("swml handler provisioning conflict")
	// ErrProvisioningFatal means no handler could be created or adopted.
	ErrProvisioningFatal = errors.New("swml handler provisioning failed")

	errHandlerNotFound = errors.New("swml handler not found")
)

// FabricAPI is the subset of the Fabric client the registrar needs.
// *fabric.Client satisfies it.
type FabricAPI interface {
	ListSWMLHandlers(ctx context.Context) ([]fabric.SWMLHandler, error)
	HandlerAddresses(ctx context.Context, handlerID string) ([]fabric.Address, error)
	CreateSWMLHandler(ctx context.Context, name, callbackURL string) (string, error)
	UpdateSWMLHandler(ctx context.Context, handlerID, callbackURL string) error
}

type Registrar struct {
	api          FabricAPI
	registration *Registration

	name          string
	callbackURL   string
	retryDelay    time.Duration
	retryAttempts uint
}

func New(api FabricAPI, registration *Registration, cfg Config) (*Registrar, error) {
	if api == nil {
		return nil, errors.New("fabric api is required")
	}
	if registration == nil {
		return nil, errors.New("registration is required")
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, errors.New("agent name is required")
	}
	callbackURL, err := cfg.CallbackURL()
	if err != nil {
		return nil, err
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}
	retryAttempts := cfg.RetryAttempts
	if retryAttempts == 0 {
		retryAttempts = 1
	}

	return &Registrar{
		api:           api,
		registration:  registration,
		name:          name,
		callbackURL:   callbackURL,
		retryDelay:    retryDelay,
		retryAttempts: retryAttempts,
	}, nil
}

// Ensure finds or creates the handler named after the agent and publishes it
// to the Registration. A failed create is followed by a delayed re-find so
// that workers racing on the same name converge on one handler. On
// ErrProvisioningFatal the Registration is left empty.
func (r *Registrar) Ensure(ctx context.Context) (Info, error) {
	logger := log.With().Str("handler", r.name).Logger()

	info, err := r.find(ctx)
	switch {
	case err == nil:
		if uerr := r.api.UpdateSWMLHandler(ctx, info.HandlerID, r.callbackURL); uerr != nil {
			logger.Warn().Err(uerr).Str("handler_id", info.HandlerID).Msg("failed to update swml handler url, adopting it anyway")
		} else {
			logger.Info().Str("handler_id", info.HandlerID).Msg("updated swml handler url")
		}
		return r.adopt(info, "existing"), nil
	case !errors.Is(err, errHandlerNotFound):
		logger.Warn().Err(err).Msg("failed to look up swml handlers, trying to create")
	}

	info, err = r.create(ctx)
	if err == nil {
		return r.adopt(info, "created"), nil
	}
	if fabric.IsConflict(err) {
		err = fmt.Errorf("%w: %w", ErrProvisioningConflict, err)
	}
	logger.Warn().Err(err).Dur("retry_delay", r.retryDelay).Msg("failed to create swml handler, looking for one created by another worker")

	info, rerr := r.refind(ctx)
	if rerr != nil {
		fatal := fmt.Errorf("%w: %q: %w", ErrProvisioningFatal, r.name, errors.Join(err, rerr))
		logger.Error().Err(fatal).Msg("swml handler not configured, token issuance will fail")
		return Info{}, fatal
	}
	return r.adopt(info, "found after retry"), nil
}

func (r *Registrar) adopt(info Info, how string) Info {
	r.registration.set(info)
	log.Info().
		Str("handler", info.Name).
		Str("handler_id", info.HandlerID).
		Str("address", info.Address).
		Str("how", how).
		Msg("swml handler ready")
	return info
}

// find returns the first handler whose name matches, with its first address.
// A matching handler without addresses counts as not found.
func (r *Registrar) find(ctx context.Context) (Info, error) {
	handlers, err := r.api.ListSWMLHandlers(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("list swml handlers: %w", err)
	}
	for _, h := range handlers {
		if h.Name() != r.name {
			continue
		}
		addrs, err := r.api.HandlerAddresses(ctx, h.ID)
		if err != nil {
			return Info{}, fmt.Errorf("list addresses of %s: %w", h.ID, err)
		}
		if len(addrs) == 0 {
			continue
		}
		return Info{
			HandlerID: h.ID,
			AddressID: addrs[0].ID,
			Address:   addrs[0].Channels.Audio,
			Name:      h.Name(),
		}, nil
	}
	return Info{}, errHandlerNotFound
}

func (r *Registrar) create(ctx context.Context) (Info, error) {
	id, err := r.api.CreateSWMLHandler(ctx, r.name, r.callbackURL)
	if err != nil {
		return Info{}, fmt.Errorf("create swml handler: %w", err)
	}
	addrs, err := r.api.HandlerAddresses(ctx, id)
	if err != nil {
		return Info{}, fmt.Errorf("list addresses of new handler %s: %w", id, err)
	}
	if len(addrs) == 0 {
		return Info{}, fmt.Errorf("new handler %s has no address", id)
	}
	return Info{
		HandlerID: id,
		AddressID: addrs[0].ID,
		Address:   addrs[0].Channels.Audio,
		Name:      r.name,
	}, nil
}

// refind waits retryDelay, then looks the handler up again up to
// retryAttempts times, retryDelay apart.
func (r *Registrar) refind(ctx context.Context) (Info, error) {
	timer := time.NewTimer(r.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Info{}, ctx.Err()
	case <-timer.C:
	}

	return backoff.Retry(ctx, func() (Info, error) {
		return r.find(ctx)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(r.retryDelay)),
		backoff.WithMaxTries(r.retryAttempts),
	)
}
