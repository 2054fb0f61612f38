package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inventory-platform/inventory-api/internal/core/ports"
)

// RoleRepository persists registry edits in the roles collection, keyed by
// role name.
type RoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{coll: db.Collection(rolesCollection)}
}

type mongoRole struct {
	Name        string   `bson:"_id"`
	Permissions []string `bson:"permissions"`
}

func (r *RoleRepository) List(ctx context.Context) ([]ports.StoredRole, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	var docs []mongoRole
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	out := make([]ports.StoredRole, 0, len(docs))
	for _, d := range docs {
		out = append(out, ports.StoredRole{Name: d.Name, Permissions: d.Permissions})
	}
	return out, nil
}

// Save upserts the role's full permission set.
func (r *RoleRepository) Save(ctx context.Context, role ports.StoredRole) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": role.Name},
		mongoRole{Name: role.Name, Permissions: role.Permissions},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save role: %w", err)
	}
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}
