package models

// PopularInstructor is one row of the popular-instructors view.
type PopularInstructor struct {
	Instructor    *User `json:"instructor" bson:"instructor"`
	TotalEnrolled int   `json:"totalEnrolled" bson:"totalEnrolled"`
}

// EnrolledClass pairs an enrolled class with its instructor.
type EnrolledClass struct {
	Classes    Class `json:"classes" bson:"classes"`
	Instructor *User `json:"instructor" bson:"instructor"`
}

type AdminStats struct {
	ApprovedClasses int64 `json:"approvedClasses"`
	PendingClasses  int64 `json:"pendingClasses"`
	Instructors     int64 `json:"instructors"`
	TotalClasses    int64 `json:"totalClasses"`
	TotalEnrolled   int64 `json:"totalEnrolled"`
}
