package database

import (
	"fmt"

	"printfleet/config"

	"github.com/valkey-io/valkey-go"
)

// Valkey database index organization. Each index gives logical separation
// between cache categories.
const (
	// GENERAL_CACHE_INDEX (DB 0) - lookup caching, e.g. printer-by-serial
	// rows served to the QR scan flow
	GENERAL_CACHE_INDEX = iota

	// EVENTS_CACHE_INDEX (DB 1) - pubsub backing for schedule-progress
	// broadcasts
	EVENTS_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.Errorf("failed to initialize cache database", "address or port is empty")
	}

	var cacheDB Cache

	var err error
	cacheDB.General, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    GENERAL_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create general valkey client", err)
	}

	cacheDB.Events, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    EVENTS_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create events valkey client", err)
	}

	s.Cache = cacheDB

	return nil
}
