package analytics

import (
	"smartclass/globals"
	"smartclass/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const topN = 6

// PopularInstructorsPipeline ranks instructors by the enrollments summed
// over all their classes. Runs against the classes collection.
func PopularInstructorsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$instructorEmail"},
			{Key: "totalEnrolled", Value: bson.D{{Key: "$sum", Value: "$totalEnrolled"}}},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: globals.UsersCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "email"},
			{Key: "as", Value: "instructor"},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "instructor.role", Value: models.RoleInstructor}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "instructor", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$instructor", 0}}}},
			{Key: "totalEnrolled", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalEnrolled", Value: -1}}}},
		{{Key: "$limit", Value: topN}},
	}
}

// EnrolledClassesPipeline expands a user's enrollments into one row per
// class with its instructor. Runs against the enrolled collection.
func EnrolledClassesPipeline(email string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userEmail", Value: email}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: globals.ClassesCollection},
			{Key: "localField", Value: "classesId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "classes"},
		}}},
		{{Key: "$unwind", Value: "$classes"}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: globals.UsersCollection},
			{Key: "localField", Value: "classes.instructorEmail"},
			{Key: "foreignField", Value: "email"},
			{Key: "as", Value: "instructor"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "classes", Value: 1},
			{Key: "instructor", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$instructor", 0}}}},
		}}},
	}
}
