package root

import (
	"context"

	"lifelevel/internal/catalog"
	"lifelevel/internal/engine"
	"lifelevel/internal/storage"
)

func (a *app) openRepo(ctx context.Context) (engine.Repository, func(), error) {
	if a.cfg.DB.Ephemeral {
		return storage.NewMemoryStore(), func() {}, nil
	}
	path := a.cfg.DB.Path
	if path == "" {
		p, err := storage.DefaultDBPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("opened database", "path", path)
	cleanup := func() {
		_ = db.Close()
	}
	return storage.NewSQLiteStore(db), cleanup, nil
}

func (a *app) openService(ctx context.Context) (*engine.Service, func(), error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, nil, err
	}
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	repo, cleanup, err := a.openRepo(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc, err := engine.NewService(ctx, cat, repo, engine.Options{
		Logger:   a.logger,
		Location: loc,
		User:     engine.NewUserInput{Name: a.cfg.User.Name, Email: a.cfg.User.Email},
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
