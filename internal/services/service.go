package services

import (
	"context"

	"printfleet/config"
	"printfleet/internal/database"
)

type Service struct {
	Identity    *IdentityService
	Transaction *TransactionService
	Scheduler   *SchedulerService
	ObjectStore *ObjectStoreService
}

func New(ctx context.Context, db database.DB, config config.Config) (Service, error) {
	identityService, err := NewIdentityService(config)
	if err != nil {
		return Service{}, err
	}

	objectStoreService, err := NewObjectStoreService(ctx, config)
	if err != nil {
		return Service{}, err
	}

	return Service{
		Identity:    identityService,
		Transaction: NewTransactionService(db),
		Scheduler:   NewSchedulerService(),
		ObjectStore: objectStoreService,
	}, nil
}
