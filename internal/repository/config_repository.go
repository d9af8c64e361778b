package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	CollectionAppConfig = "appConfig"
	uiConfigDoc         = "ui"
)

// AppConfigRepository reads the singleton UI config document. A missing
// document is not an error: the service falls back to compiled-in defaults.
type AppConfigRepository interface {
	GetUIConfig(ctx context.Context) (map[string]interface{}, error)
}

type appConfigRepo struct {
	client *firestore.Client
}

func NewAppConfigRepository(client *firestore.Client) AppConfigRepository {
	return &appConfigRepo{client: client}
}

func (r *appConfigRepo) GetUIConfig(ctx context.Context) (map[string]interface{}, error) {
	doc, err := r.client.Collection(CollectionAppConfig).Doc(uiConfigDoc).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Data(), nil
}
