/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package context creates a framework Provider context to add optional (non default) framework services and provides
// simple accessor methods to those same services.
package context

import (
	"errors"
	"fmt"

	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/hyperledger/aries-issuer-go/pkg/connection"
	"github.com/hyperledger/aries-issuer-go/pkg/store/exchange"
)

// ErrSvcNotFound is returned when service not found.
var ErrSvcNotFound = errors.New("service not found")

// ProtocolService is a named protocol service.
type ProtocolService interface {
	Name() string
}

// Provider supplies the framework configuration to client objects.
type Provider struct {
	services      []ProtocolService
	storeProvider storage.Provider
	exchangeStore exchange.Store
	connections   *connection.Registry
}

// ProviderOption configures the framework.
type ProviderOption func(opts *Provider) error

// New instantiates a new context provider.
func New(opts ...ProviderOption) (*Provider, error) {
	ctxProvider := Provider{}

	for _, opt := range opts {
		err := opt(&ctxProvider)
		if err != nil {
			return nil, fmt.Errorf("option failed: %w", err)
		}
	}

	if ctxProvider.connections == nil {
		ctxProvider.connections = connection.NewRegistry()
	}

	if ctxProvider.exchangeStore == nil && ctxProvider.storeProvider != nil {
		store, err := exchange.New(ctxProvider.storeProvider)
		if err != nil {
			return nil, fmt.Errorf("initialize context exchange store: %w", err)
		}

		ctxProvider.exchangeStore = store
	}

	return &ctxProvider, nil
}

// Service return protocol service.
func (p *Provider) Service(id string) (interface{}, error) {
	for _, v := range p.services {
		if v.Name() == id {
			return v, nil
		}
	}

	return nil, ErrSvcNotFound
}

// AllServices returns a copy of the Provider's list of ProtocolServices.
func (p *Provider) AllServices() []ProtocolService {
	ret := make([]ProtocolService, len(p.services))
	copy(ret, p.services)

	return ret
}

// StorageProvider return a storage provider.
func (p *Provider) StorageProvider() storage.Provider {
	return p.storeProvider
}

// ExchangeStore returns the exchange record store, nil when the context has no storage.
func (p *Provider) ExchangeStore() exchange.Store {
	return p.exchangeStore
}

// ConnectionRegistry returns the registry of open connections.
func (p *Provider) ConnectionRegistry() *connection.Registry {
	return p.connections
}

// WithProtocolServices injects a protocol services into the context.
func WithProtocolServices(services ...ProtocolService) ProviderOption {
	return func(opts *Provider) error {
		opts.services = services
		return nil
	}
}

// WithStorageProvider injects a storage provider into the context.
func WithStorageProvider(s storage.Provider) ProviderOption {
	return func(opts *Provider) error {
		opts.storeProvider = s
		return nil
	}
}

// WithExchangeStore injects an exchange record store into the context. It takes precedence over the
// store opened on the storage provider.
func WithExchangeStore(s exchange.Store) ProviderOption {
	return func(opts *Provider) error {
		opts.exchangeStore = s
		return nil
	}
}

// WithConnectionRegistry injects a connection registry into the context.
func WithConnectionRegistry(r *connection.Registry) ProviderOption {
	return func(opts *Provider) error {
		if r == nil {
			return errors.New("connection registry is nil")
		}

		opts.connections = r

		return nil
	}
}
