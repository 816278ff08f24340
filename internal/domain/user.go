package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles recognized by the platform.
const (
	RoleAdmin    = "admin"
	RoleExaminer = "examiner"
	RoleExaminee = "examinee"
)

func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleExaminer || r == RoleExaminee
}

// ExaminerProfile holds the optional examiner-only attributes. Carried
// opaquely by the auth core; persisted only when the user's role is examiner.
type ExaminerProfile struct {
	ExaminerType string `bson:"examiner_type,omitempty" json:"examinerType,omitempty"`
	Credentials  string `bson:"credentials,omitempty"   json:"credentials,omitempty"`
}

// ExamineeProfile holds the optional examinee-only attributes
// (academic or professional context).
type ExamineeProfile struct {
	ExamineeType   string   `bson:"examinee_type,omitempty"   json:"examineeType,omitempty"`
	EducationLevel string   `bson:"education_level,omitempty" json:"educationLevel,omitempty"`
	InstituteName  string   `bson:"institute_name,omitempty"  json:"instituteName,omitempty"`
	RollNumber     string   `bson:"roll_number,omitempty"     json:"rollNumber,omitempty"`
	Major          string   `bson:"major,omitempty"           json:"major,omitempty"`
	YearSemester   string   `bson:"year_semester,omitempty"   json:"yearSemester,omitempty"`
	Qualification  string   `bson:"qualification,omitempty"   json:"qualification,omitempty"`
	Experience     string   `bson:"experience,omitempty"      json:"experience,omitempty"`
	Company        string   `bson:"company,omitempty"         json:"company,omitempty"`
	Industry       string   `bson:"industry,omitempty"        json:"industry,omitempty"`
	Skills         []string `bson:"skills,omitempty"          json:"skills,omitempty"`
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name"          json:"name"`
	Email        string             `bson:"email"         json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role"          json:"userType"`
	Contact      string             `bson:"contact"       json:"contact"`

	Examiner *ExaminerProfile `bson:"examiner,omitempty" json:"examiner,omitempty"`
	Examinee *ExamineeProfile `bson:"examinee,omitempty" json:"examinee,omitempty"`

	// Social linkage, at most one id per provider.
	GoogleID   string `bson:"google_id,omitempty"   json:"googleId,omitempty"`
	FacebookID string `bson:"facebook_id,omitempty" json:"facebookId,omitempty"`

	// Password-reset state. Attempts is never decremented on a successful
	// reset; it only goes stale once LastResetAttempt is a day old.
	ResetToken       string     `bson:"reset_token,omitempty"        json:"-"`
	ResetExpires     *time.Time `bson:"reset_expires,omitempty"      json:"-"`
	ResetAttempts    int        `bson:"reset_attempts"               json:"-"`
	LastResetAttempt *time.Time `bson:"last_reset_attempt,omitempty" json:"-"`

	// Verified doubles as the admin activation switch: admins toggle it to
	// deactivate/reactivate accounts.
	Verified bool `bson:"verified" json:"verified"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Summary is the public shape returned by the auth endpoints.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"userType"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: u.Role}
}
