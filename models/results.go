package models

import "go.mongodb.org/mongo-driver/mongo"

// Driver acknowledgements, shaped the way existing web clients read them.

type InsertResult struct {
	Acknowledged bool `json:"acknowledged"`
	InsertedID   any  `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
	UpsertedID    any   `json:"upsertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

func FromInsert(r *mongo.InsertOneResult) InsertResult {
	if r == nil {
		return InsertResult{}
	}
	return InsertResult{Acknowledged: true, InsertedID: r.InsertedID}
}

func FromUpdate(r *mongo.UpdateResult) UpdateResult {
	if r == nil {
		return UpdateResult{}
	}
	return UpdateResult{
		Acknowledged:  true,
		MatchedCount:  r.MatchedCount,
		ModifiedCount: r.ModifiedCount,
		UpsertedCount: r.UpsertedCount,
		UpsertedID:    r.UpsertedID,
	}
}

func FromDelete(r *mongo.DeleteResult) DeleteResult {
	if r == nil {
		return DeleteResult{}
	}
	return DeleteResult{Acknowledged: true, DeletedCount: r.DeletedCount}
}
