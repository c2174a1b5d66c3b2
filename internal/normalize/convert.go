package normalize

import (
	"strings"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/model"
)

// Student normalizes raw and converts it to a model.Student.
func Student(raw Record) model.Student {
	return ToStudent(StudentSchema.Normalize(raw))
}

// ToStudent converts a canonical student record.
func ToStudent(rec Record) model.Student {
	return model.Student{
		StudentID:       strings.ToUpper(rec.String(KeyStudentID)),
		GivenName:       rec.String(KeyGivenName),
		PaternalSurname: rec.String(KeyPaternalSurname),
		MaternalSurname: rec.String(KeyMaternalSurname),
		JobTitle:        rec.String(KeyJobTitle),
		BirthDate:       rec.Date(KeyBirthDate),
	}
}

// Course normalizes raw and converts it to a model.Course.
// The instructor is attached when the record names one.
func Course(raw Record) model.Course {
	return ToCourse(CourseSchema.Normalize(raw))
}

// ToCourse converts a canonical course record. A missing date leaves Date zero.
func ToCourse(rec Record) model.Course {
	c := model.Course{
		CourseID:              rec.Int(KeyCourseID),
		Name:                  rec.String(KeyCourseName),
		STPSCode:              rec.String(KeySTPSCode),
		Place:                 rec.String(KeyPlace),
		Company:               rec.String(KeyCompany),
		Hours:                 rec.Number(KeyHours),
		RequiresPracticalExam: rec.Bool(KeyRequiresPracticalExam),
		Price:                 rec.Number(KeyPrice),
		InstructorPayout:      rec.Number(KeyInstructorPayout),
	}
	if d := rec.Date(KeyCourseDate); d != nil {
		c.Date = *d
	}
	if id := rec.Int(KeyInstructorID); id > 0 {
		c.InstructorID = &id
		c.Instructor = &model.Instructor{InstructorID: id, Name: rec.String(KeyInstructorName)}
	}
	return c
}

// Grade normalizes raw and converts it to a model.Grade.
func Grade(raw Record) model.Grade {
	return ToGrade(GradeSchema.Normalize(raw))
}

// ToGrade converts a canonical grade record.
func ToGrade(rec Record) model.Grade {
	return model.Grade{
		StudentID:     strings.ToUpper(rec.String(KeyStudentID)),
		CourseID:      rec.Int(KeyCourseID),
		InitialExam:   rec.Number(KeyInitialExam),
		FinalExam:     rec.Number(KeyFinalExam),
		PracticalExam: rec.Number(KeyPracticalExam),
		Average:       rec.Number(KeyAverage),
		Result:        strings.ToUpper(rec.String(KeyResult)),
		Notes:         rec.String(KeyNotes),
	}
}
