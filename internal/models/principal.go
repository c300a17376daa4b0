package models

import "time"

// AdminView is what readers of the admins table get back.
type AdminView struct {
	ID        string    `json:"admin_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewStudent carries the input of a student registration. DOB is DD-MM-YYYY.
type NewStudent struct {
	Name          string
	Email         string
	Secret        string
	RollNo        string
	DOB           string
	UniversityID  string
	PassedOutYear int
}

// StudentView is what readers of the students table get back.
type StudentView struct {
	ID            string    `json:"student_id"`
	RollNo        string    `json:"roll_no"`
	Name          string    `json:"name"`
	DOB           time.Time `json:"dob"`
	Email         string    `json:"email"`
	UniversityID  string    `json:"univ_id"`
	PassedOutYear int       `json:"passed_out_year"`
	CreatedAt     time.Time `json:"created_at"`
}
