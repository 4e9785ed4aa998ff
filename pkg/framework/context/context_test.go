/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package context

import (
	"errors"
	"testing"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-issuer-go/pkg/connection"
	"github.com/hyperledger/aries-issuer-go/pkg/store/exchange"
)

type mockService struct {
	name string
}

func (m *mockService) Name() string {
	return m.name
}

type failingProvider struct {
	storage.Provider
}

func (p *failingProvider) OpenStore(string) (storage.Store, error) {
	return nil, errors.New("open failed")
}

func TestNewProvider(t *testing.T) {
	t.Run("test new with default", func(t *testing.T) {
		prov, err := New()
		require.NoError(t, err)
		require.NotNil(t, prov.ConnectionRegistry())
		require.Nil(t, prov.ExchangeStore())
		require.Nil(t, prov.StorageProvider())
		require.Empty(t, prov.AllServices())
	})

	t.Run("test error return from options", func(t *testing.T) {
		_, err := New(func(opts *Provider) error {
			return errors.New("error creating the framework option")
		})
		require.Error(t, err)

		_, err = New(WithConnectionRegistry(nil))
		require.Contains(t, err.Error(), "connection registry is nil")
	})

	t.Run("test new with protocol service", func(t *testing.T) {
		prov, err := New(WithProtocolServices(&mockService{name: "mockProtocolSvc"}))
		require.NoError(t, err)

		_, err = prov.Service("mockProtocolSvc")
		require.NoError(t, err)

		_, err = prov.Service("mockProtocolSvc1")
		require.True(t, errors.Is(err, ErrSvcNotFound))
		require.Len(t, prov.AllServices(), 1)
	})

	t.Run("test new with storage provider", func(t *testing.T) {
		prov, err := New(WithStorageProvider(mem.NewProvider()))
		require.NoError(t, err)
		require.NotNil(t, prov.StorageProvider())
		require.IsType(t, &exchange.StorageStore{}, prov.ExchangeStore())
	})

	t.Run("test new with failing storage provider", func(t *testing.T) {
		_, err := New(WithStorageProvider(&failingProvider{}))
		require.Contains(t, err.Error(), "initialize context exchange store")
	})

	t.Run("test new with exchange store and connection registry", func(t *testing.T) {
		store, err := exchange.New(mem.NewProvider())
		require.NoError(t, err)

		registry := connection.NewRegistry()

		prov, err := New(WithExchangeStore(store), WithConnectionRegistry(registry),
			WithStorageProvider(&failingProvider{}))
		require.NoError(t, err)
		require.Equal(t, store, prov.ExchangeStore())
		require.Equal(t, registry, prov.ConnectionRegistry())
	})
}
