package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	firestore "google.golang.org/api/firestore/v1"
	"google.golang.org/api/option"

	"github.com/nikbrunner/imgpick/internal/model"
)

// FirestoreStorage implements DocumentStore over the Firestore REST API.
type FirestoreStorage struct {
	svc    *firestore.Service
	parent string // projects/<id>/databases/(default)/documents
}

// NewFirestoreStorage connects with application default credentials.
// Extra options (endpoint, credentials file) are passed through.
func NewFirestoreStorage(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreStorage, error) {
	svc, err := firestore.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}

	return &FirestoreStorage{
		svc:    svc,
		parent: fmt.Sprintf("projects/%s/databases/(default)/documents", projectID),
	}, nil
}

// AddDocument creates a document with a generated id in the collection.
func (f *FirestoreStorage) AddDocument(ctx context.Context, collection string, doc Document) (string, error) {
	if doc.ID == "" {
		doc.ID = model.GenerateUUID()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	_, err := f.svc.Projects.Databases.Documents.
		CreateDocument(f.parent, collection, &firestore.Document{Fields: toFields(doc)}).
		DocumentId(doc.ID).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}

	return doc.ID, nil
}

// ListDocuments pages through the whole collection.
func (f *FirestoreStorage) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	docs := []Document{}
	err := f.svc.Projects.Databases.Documents.
		List(f.parent, collection).
		Pages(ctx, func(resp *firestore.ListDocumentsResponse) error {
			for _, d := range resp.Documents {
				docs = append(docs, fromFields(path.Base(d.Name), d.Fields))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}

// Close implements DocumentStore. The REST client holds no connection.
func (f *FirestoreStorage) Close() error {
	return nil
}

// stringValue builds a string field that is sent even when empty.
func stringValue(s string) firestore.Value {
	return firestore.Value{StringValue: s, ForceSendFields: []string{"StringValue"}}
}

func toFields(doc Document) map[string]firestore.Value {
	return map[string]firestore.Value{
		"url":         stringValue(doc.URL),
		"name":        stringValue(doc.Name),
		"description": stringValue(doc.Description),
		"filter":      stringValue(doc.Filter),
		"createdAt":   stringValue(doc.CreatedAt.UTC().Format(time.RFC3339)),
	}
}

func fromFields(id string, fields map[string]firestore.Value) Document {
	createdAt, _ := time.Parse(time.RFC3339, fields["createdAt"].StringValue)
	return Document{
		ID:          id,
		URL:         fields["url"].StringValue,
		Name:        fields["name"].StringValue,
		Description: fields["description"].StringValue,
		Filter:      fields["filter"].StringValue,
		CreatedAt:   createdAt,
	}
}
