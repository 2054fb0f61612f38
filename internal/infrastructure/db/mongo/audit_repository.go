package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
)

// AuditRepository appends audit events to the logs collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

// Append persists a single audit event.
func (r *AuditRepository) Append(ctx context.Context, event *domain.AuditEvent) error {
	if _, err := r.coll.InsertOne(ctx, auditDocument(event)); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func auditDocument(ev *domain.AuditEvent) bson.M {
	doc := bson.M{
		"_id":            ev.ID,
		"timestamp":      ev.Timestamp.UTC(),
		"actor":          ev.Actor,
		"action":         ev.Action,
		"operation":      ev.Operation,
		"component":      ev.Component,
		"source_address": ev.SourceAddress,
		"user_agent":     ev.UserAgent,
		"detail":         ev.Detail,
	}
	if ev.ActorID != "" {
		doc["actor_id"] = ev.ActorID
	}
	if ev.UserID != "" {
		doc["user_id"] = ev.UserID
	}
	if ev.Username != "" {
		doc["username"] = ev.Username
	}
	if len(ev.Fields) > 0 {
		doc["fields"] = ev.Fields
	}
	return doc
}
