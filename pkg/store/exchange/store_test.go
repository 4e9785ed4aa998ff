/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package exchange_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-issuer-go/pkg/store/exchange"
	"github.com/hyperledger/aries-issuer-go/pkg/store/exchange/exchangetest"
)

func TestStorageStore(t *testing.T) {
	s, err := exchange.New(mem.NewProvider())
	require.NoError(t, err)

	exchangetest.RunStoreContract(t, s)
}

type failingProvider struct {
	storage.Provider
	openErr   error
	configErr error
}

func (p *failingProvider) OpenStore(name string) (storage.Store, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}

	return p.Provider.OpenStore(name)
}

func (p *failingProvider) SetStoreConfig(name string, config storage.StoreConfiguration) error {
	if p.configErr != nil {
		return p.configErr
	}

	return p.Provider.SetStoreConfig(name, config)
}

func TestNew(t *testing.T) {
	t.Run("open store error", func(t *testing.T) {
		_, err := exchange.New(&failingProvider{Provider: mem.NewProvider(), openErr: errors.New("open")})
		require.EqualError(t, err, "failed to open exchange store: open")
	})

	t.Run("store config error", func(t *testing.T) {
		_, err := exchange.New(&failingProvider{Provider: mem.NewProvider(), configErr: errors.New("config")})
		require.EqualError(t, err, "failed to set store config: config")
	})
}

func TestStorageStore_Load(t *testing.T) {
	p := mem.NewProvider()

	s, err := exchange.New(p)
	require.NoError(t, err)

	raw, err := p.OpenStore(exchange.NameSpace)
	require.NoError(t, err)
	require.NoError(t, raw.Put("broken", []byte("{")))

	_, err = s.Load(context.Background(), "broken")
	require.Contains(t, err.Error(), "failed to unmarshal exchange record")
}
