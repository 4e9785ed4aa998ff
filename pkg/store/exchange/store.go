/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package exchange persists serialized credential exchanges keyed by their source ID.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"
)

const (
	// NameSpace is the name of the underlying store.
	NameSpace = "issuecredential_exchange"
	recordTag = "exchange"
)

var logger = log.New("aries-issuer/store/exchange")

// ErrNotFound is returned when no record is stored under a source ID.
var ErrNotFound = errors.New("exchange record not found")

// Record is a persisted exchange.
type Record struct {
	SourceID string `json:"source_id"`
	// State is the state name at the time the record was saved.
	State string `json:"state"`
	// Exchange is the serialized exchange.
	Exchange  string    `json:"exchange"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store saves and restores exchange records.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Load(ctx context.Context, sourceID string) (*Record, error)
	Delete(ctx context.Context, sourceID string) error
	// List returns the stored source IDs in ascending order.
	List(ctx context.Context) ([]string, error)
}

// Validate checks the fields every store requires.
func (r *Record) Validate() error {
	if r == nil {
		return errors.New("record is nil")
	}

	if r.SourceID == "" {
		return errors.New("source ID is mandatory")
	}

	if r.Exchange == "" {
		return errors.New("exchange is mandatory")
	}

	return nil
}

// StorageStore is a Store on top of an aries storage provider.
type StorageStore struct {
	store storage.Store
}

// New returns a StorageStore opened on p.
func New(p storage.Provider) (*StorageStore, error) {
	store, err := p.OpenStore(NameSpace)
	if err != nil {
		return nil, fmt.Errorf("failed to open exchange store: %w", err)
	}

	err = p.SetStoreConfig(NameSpace, storage.StoreConfiguration{TagNames: []string{recordTag}})
	if err != nil {
		return nil, fmt.Errorf("failed to set store config: %w", err)
	}

	return &StorageStore{store: store}, nil
}

// Save stores rec under its source ID, replacing any previous record.
func (s *StorageStore) Save(_ context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}

	recBytes, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange record: %w", err)
	}

	if err := s.store.Put(rec.SourceID, recBytes, storage.Tag{Name: recordTag}); err != nil {
		return fmt.Errorf("failed to put exchange record: %w", err)
	}

	return nil
}

// Load returns the record stored under sourceID.
func (s *StorageStore) Load(_ context.Context, sourceID string) (*Record, error) {
	recBytes, err := s.store.Get(sourceID)
	if errors.Is(err, storage.ErrDataNotFound) {
		return nil, fmt.Errorf("%s: %w", sourceID, ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get exchange record: %w", err)
	}

	rec := &Record{}
	if err := json.Unmarshal(recBytes, rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal exchange record: %w", err)
	}

	return rec, nil
}

// Delete removes the record stored under sourceID. Deleting a missing record is not an error.
func (s *StorageStore) Delete(_ context.Context, sourceID string) error {
	if err := s.store.Delete(sourceID); err != nil && !errors.Is(err, storage.ErrDataNotFound) {
		return fmt.Errorf("failed to delete exchange record: %w", err)
	}

	return nil
}

// List returns the stored source IDs.
func (s *StorageStore) List(_ context.Context) ([]string, error) {
	itr, err := s.store.Query(recordTag)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange records: %w", err)
	}

	defer func() {
		if errClose := itr.Close(); errClose != nil {
			logger.Errorf("failed to close exchange records iterator: %s", errClose.Error())
		}
	}()

	var ids []string

	for {
		ok, err := itr.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to get next exchange record: %w", err)
		}

		if !ok {
			break
		}

		key, err := itr.Key()
		if err != nil {
			return nil, fmt.Errorf("failed to get exchange record key: %w", err)
		}

		ids = append(ids, key)
	}

	sort.Strings(ids)

	return ids, nil
}
