package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/randoapp/rando-service/internal/apperr"
	"github.com/randoapp/rando-service/internal/model"
)

// RandoRepo writes randos to the primary collection and to the
// denormalized out list embedded in the owner's user document. The two
// writes are not transactional; the pipeline runs them concurrently and
// flags the record for reconciliation when exactly one fails.
type RandoRepo struct {
	randos *mongo.Collection
	users  *mongo.Collection
}

func NewRandoRepo(randos, users *mongo.Collection) *RandoRepo {
	return &RandoRepo{randos: randos, users: users}
}

func (r *RandoRepo) Insert(ctx context.Context, rando *model.Rando) error {
	_, err := r.randos.InsertOne(ctx, rando)
	return err
}

// PushToUserOut appends the rando onto the owner's out array.
func (r *RandoRepo) PushToUserOut(ctx context.Context, email string, rando *model.Rando) error {
	res, err := r.users.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$push": bson.M{"out": rando}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.New("owner " + email + " not found")
	}
	return nil
}

// IncReport bumps the report counter on both projections of the rando.
// Not called by the upload pipeline; this backs the report flow.
func (r *RandoRepo) IncReport(ctx context.Context, randoID string) error {
	return r.incCounter(ctx, randoID, "report")
}

// IncBonAppetit bumps the approval counter on both projections.
func (r *RandoRepo) IncBonAppetit(ctx context.Context, randoID string) error {
	return r.incCounter(ctx, randoID, "bonAppetit")
}

func (r *RandoRepo) incCounter(ctx context.Context, randoID, field string) error {
	res, err := r.randos.UpdateOne(ctx,
		bson.M{"randoId": randoID},
		bson.M{"$inc": bson.M{field: 1}},
	)
	if err != nil {
		return apperr.System(err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	_, err = r.users.UpdateOne(ctx,
		bson.M{"out.randoId": randoID},
		bson.M{"$inc": bson.M{"out.$." + field: 1}},
	)
	if err != nil {
		return apperr.System(err)
	}
	return nil
}
